package gesture

import (
	"math"
	"time"

	"github.com/example/commit-swipe/internal/models"
)

const (
	// Threshold is the horizontal travel, in px, that recognizes a swipe.
	Threshold = 100.0
	// VelocityThreshold recognizes a throw, in px/ms, regardless of travel.
	VelocityThreshold = 0.5
	RotationFactor    = 0.1
	MaxRotation       = 15.0
	DismissRotation   = 30.0
)

type Kind int

const (
	Start Kind = iota
	Move
	End
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case Move:
		return "move"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

type Source int

const (
	Mouse Source = iota
	Touch
)

// Event is one pointer sample on the foreground card.
type Event struct {
	Kind   Kind
	Source Source
	X      float64
	At     time.Time
}

type Direction string

const (
	None  Direction = ""
	Left  Direction = "left"
	Right Direction = "right"
)

// Action maps a dismissal direction to the decision sent to the server.
func (d Direction) Action() models.ActionType {
	if d == Right {
		return models.ActionLike
	}
	return models.ActionPass
}

// Sign is +1 for right and -1 otherwise.
func (d Direction) Sign() float64 {
	if d == Right {
		return 1
	}
	return -1
}

// Transition names the animation a surface should use to reach a transform.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionSnapBack
	TransitionDismiss
	TransitionButtonDismiss
)

func (t Transition) Duration() time.Duration {
	switch t {
	case TransitionSnapBack:
		return 400 * time.Millisecond
	case TransitionDismiss:
		return 300 * time.Millisecond
	case TransitionButtonDismiss:
		return 500 * time.Millisecond
	default:
		return 0
	}
}

// Transform is the card's visual offset: translation in px, rotation in degrees.
type Transform struct {
	TranslateX float64
	Rotation   float64
	Transition Transition
}

// Rotation is delta*0.1 clamped to +-15 degrees.
func Rotation(delta float64) float64 {
	return math.Max(math.Min(delta*RotationFactor, MaxRotation), -MaxRotation)
}

// IndicatorOpacity ramps to 1 at half the swipe threshold.
func IndicatorOpacity(delta float64) float64 {
	return math.Min(math.Abs(delta)/(Threshold*0.5), 1)
}

// Feedback returns the drag transform and the positive/negative indicator
// opacities for a horizontal delta. The inactive indicator is always 0.
func Feedback(delta float64) (Transform, float64, float64) {
	tr := Transform{TranslateX: delta, Rotation: Rotation(delta), Transition: TransitionNone}
	op := IndicatorOpacity(delta)
	if delta > 0 {
		return tr, op, 0
	}
	return tr, 0, op
}

// Classification is the verdict at the end of a drag.
type Classification struct {
	Swipe     bool
	Direction Direction
	Delta     float64
	Velocity  float64
}

// Classify decides whether a drag was a swipe. Velocity (travel/elapsed, in
// px/ms) can make a short drag count, but the direction always follows the
// sign of delta, even when delta is close to zero.
func Classify(delta, travel float64, elapsed time.Duration) Classification {
	c := Classification{Delta: delta}
	if elapsed > 0 {
		c.Velocity = travel / (float64(elapsed) / float64(time.Millisecond))
	}
	c.Swipe = math.Abs(delta) > Threshold || math.Abs(c.Velocity) > VelocityThreshold
	if c.Swipe {
		c.Direction = Left
		if delta > 0 {
			c.Direction = Right
		}
	}
	return c
}
