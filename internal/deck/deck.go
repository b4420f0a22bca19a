package deck

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/example/commit-swipe/internal/card"
	"github.com/example/commit-swipe/internal/clock"
	"github.com/example/commit-swipe/internal/eventloop"
	"github.com/example/commit-swipe/internal/gesture"
	"github.com/example/commit-swipe/internal/models"
	"github.com/example/commit-swipe/internal/observability"
)

const (
	DefaultSettleDelay   = 300 * time.Millisecond
	DefaultViewportWidth = 1280.0
)

// ErrInvalidIdentity is returned when a chat is started for a profile whose
// id is not a positive integer.
var ErrInvalidIdentity = errors.New("could not start chat, please refresh")

// View is what the renderer draws. Terminal means the end-of-stack
// indicator is shown and no cards are.
type View struct {
	Foreground *card.Card
	Peek       *card.Card
	Terminal   bool
}

type Renderer interface {
	Render(v View)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(v View)

func (f RendererFunc) Render(v View) { f(v) }

type Submitter interface {
	SubmitAction(ctx context.Context, targetID int64, action models.ActionType) (models.ActionResult, error)
}

// Journal receives every completed decision. Implementations are called off
// the control thread.
type Journal interface {
	Record(ctx context.Context, d models.Decision) error
}

// Match is surfaced when a like comes back as mutual.
type Match struct {
	Profile   models.Profile
	FirstName string
}

type Deps struct {
	Renderer  Renderer
	Submitter Submitter
	Scheduler clock.Scheduler
	Runner    eventloop.Runner
	Journal   Journal
	Logger    *slog.Logger

	// OnMatch runs on the control thread.
	OnMatch func(Match)
	// UserID returns the stored identity for journaled decisions. It is
	// called from the runner, never from the control thread.
	UserID func() string

	SettleDelay   time.Duration
	ViewportWidth float64
}

// State is a point-in-time copy of the stack.
type State struct {
	Index        int    `json:"index" yaml:"index"`
	Length       int    `json:"length" yaml:"length"`
	Terminal     bool   `json:"terminal" yaml:"terminal"`
	Dismissing   bool   `json:"dismissing" yaml:"dismissing"`
	ForegroundID *int64 `json:"foreground_id,omitempty" yaml:"foreground_id,omitempty"`
	PeekID       *int64 `json:"peek_id,omitempty" yaml:"peek_id,omitempty"`
}

// Controller owns the profile sequence and the index into it. Every method
// except Snapshot must be called from the control thread.
type Controller struct {
	deps Deps
	log  *slog.Logger

	profiles []models.Profile
	index    int
	terminal bool
	viewer   *models.Coordinate

	fg      *card.Card
	peek    *card.Card
	gesture *gesture.Controller

	dismissing bool
	settle     clock.Handle
	pending    *pendingDecision
	dismissGen uint64

	snapshot atomic.Pointer[State]
}

func New(deps Deps) *Controller {
	if deps.SettleDelay <= 0 {
		deps.SettleDelay = DefaultSettleDelay
	}
	if deps.ViewportWidth <= 0 {
		deps.ViewportWidth = DefaultViewportWidth
	}
	if deps.Runner == nil {
		deps.Runner = eventloop.Inline{}
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	d := &Controller{deps: deps, log: log}
	d.publish()
	return d
}

// Load replaces the profile sequence and renders from the start.
func (d *Controller) Load(profiles []models.Profile) {
	d.cancelSettle()
	d.profiles = append([]models.Profile(nil), profiles...)
	d.index = 0
	d.RenderCurrent()
}

// SetViewer stores the viewer coordinate and re-renders so distance labels
// appear on the cards already on screen.
func (d *Controller) SetViewer(c models.Coordinate) {
	d.viewer = &c
	if d.dismissing {
		// the outgoing card keeps its animation; the next render picks it up
		return
	}
	d.RenderCurrent()
}

// RenderCurrent draws the foreground card and the peek card beneath it, or
// the end-of-stack indicator once the index has run past the sequence.
func (d *Controller) RenderCurrent() {
	d.fg, d.peek, d.gesture = nil, nil, nil

	if d.index >= len(d.profiles) {
		d.terminal = true
		d.deps.Renderer.Render(View{Terminal: true})
		d.publish()
		return
	}
	d.terminal = false

	if d.index+1 < len(d.profiles) {
		d.peek = card.Build(d.profiles[d.index+1], d.viewer)
		d.peek.Peek = true
	}
	d.fg = card.Build(d.profiles[d.index], d.viewer)
	d.fg.Interactive = true
	d.gesture = gesture.NewController(d.fg, func(dir gesture.Direction) {
		d.dismiss(dir, sourceGesture)
	})

	d.deps.Renderer.Render(d.view())
	d.publish()
}

// Advance moves to the next profile. It is driven by the settle delay and
// never moves past the end of the sequence.
func (d *Controller) Advance() {
	if d.index >= len(d.profiles) {
		d.RenderCurrent()
		return
	}
	d.index++
	d.RenderCurrent()
}

// Reset rewinds to the first profile and clears the terminal state.
func (d *Controller) Reset() {
	d.cancelSettle()
	d.index = 0
	d.terminal = false
	d.RenderCurrent()
}

// LikeCurrent dismisses the foreground card to the right. It reports false
// when there is no interactive card.
func (d *Controller) LikeCurrent() bool { return d.button(gesture.Right) }

// PassCurrent dismisses the foreground card to the left.
func (d *Controller) PassCurrent() bool { return d.button(gesture.Left) }

func (d *Controller) button(dir gesture.Direction) bool {
	if d.fg == nil || d.index >= len(d.profiles) || d.dismissing {
		return false
	}
	d.dismiss(dir, sourceButton)
	return true
}

// HandlePointer routes an input event to the foreground card.
func (d *Controller) HandlePointer(ev gesture.Event) bool {
	if d.gesture == nil || d.dismissing {
		return false
	}
	changed := d.gesture.Handle(ev)
	if changed {
		d.deps.Renderer.Render(d.view())
		if ev.Kind == gesture.End && !d.dismissing {
			observability.SnapBacksTotal.Inc()
		}
	}
	return changed
}

// Gesture exposes the foreground controller, nil when no card is interactive.
func (d *Controller) Gesture() *gesture.Controller { return d.gesture }

func (d *Controller) Current() (models.Profile, bool) {
	if d.index >= len(d.profiles) {
		return models.Profile{}, false
	}
	return d.profiles[d.index], true
}

func (d *Controller) Index() int       { return d.index }
func (d *Controller) Terminal() bool   { return d.terminal }
func (d *Controller) Dismissing() bool { return d.dismissing }
func (d *Controller) Len() int         { return len(d.profiles) }

// Snapshot is safe to call from any goroutine.
func (d *Controller) Snapshot() State { return *d.snapshot.Load() }

func (d *Controller) view() View {
	return View{Foreground: d.fg, Peek: d.peek, Terminal: d.terminal}
}

func (d *Controller) publish() {
	s := State{
		Index:      d.index,
		Length:     len(d.profiles),
		Terminal:   d.terminal,
		Dismissing: d.dismissing,
	}
	if d.fg != nil {
		id := d.fg.ProfileID
		s.ForegroundID = &id
	}
	if d.peek != nil {
		id := d.peek.ProfileID
		s.PeekID = &id
	}
	d.snapshot.Store(&s)
}

// cancelSettle drops the pending advance but still submits the decision for
// a card that was already thrown off screen. The generation bump covers a
// settle callback the scheduler queued before Stop could catch it.
func (d *Controller) cancelSettle() {
	if d.settle != nil {
		d.settle.Stop()
		d.settle = nil
	}
	d.dismissGen++
	d.dismissing = false
	if pd := d.pending; pd != nil {
		d.pending = nil
		d.submit(pd.profile, pd.dir, pd.source)
	}
}

// ChatTarget validates the profile id before a chat is opened from a match.
func ChatTarget(p models.Profile) (int64, error) {
	if p.ID <= 0 {
		return 0, ErrInvalidIdentity
	}
	return p.ID, nil
}

func newDecisionID() string { return uuid.NewString() }
