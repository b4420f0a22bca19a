package deck

import (
	"context"
	"time"

	"github.com/example/commit-swipe/internal/card"
	"github.com/example/commit-swipe/internal/gesture"
	"github.com/example/commit-swipe/internal/models"
	"github.com/example/commit-swipe/internal/observability"
)

const (
	sourceGesture = "gesture"
	sourceButton  = "button"
)

// dismiss throws the foreground card off screen and schedules the settle.
// The card stops being interactive immediately.
func (d *Controller) dismiss(dir gesture.Direction, source string) {
	profile := d.profiles[d.index]
	d.dismissing = true
	if d.gesture != nil {
		d.gesture.Disable()
	}

	transition := gesture.TransitionDismiss
	if source == sourceButton {
		transition = gesture.TransitionButtonDismiss
	}
	d.fg.Transform(gesture.Transform{
		TranslateX: dir.Sign() * d.deps.ViewportWidth,
		Rotation:   dir.Sign() * gesture.DismissRotation,
		Transition: transition,
	})
	d.fg.Interactive = false
	d.deps.Renderer.Render(d.view())
	d.publish()

	observability.SwipesTotal.WithLabelValues(string(dir), source).Inc()
	d.log.Debug("deck.dismiss", "profile_id", profile.ID, "direction", string(dir), "source", source)

	d.dismissGen++
	gen := d.dismissGen
	d.pending = &pendingDecision{profile: profile, dir: dir, source: source}
	d.settle = d.deps.Scheduler.AfterFunc(d.deps.SettleDelay, func() {
		// a reset or reload already flushed this dismissal
		if gen != d.dismissGen {
			return
		}
		pd := d.pending
		d.settle, d.pending = nil, nil
		d.dismissing = false
		d.Advance()
		d.submit(pd.profile, pd.dir, pd.source)
	})
}

// pendingDecision is a dismissed card whose settle delay has not elapsed.
type pendingDecision struct {
	profile models.Profile
	dir     gesture.Direction
	source  string
}

// submit posts the decision. The request is not cancelled if the user moves
// on; a mutual match still surfaces when the response arrives. Journaling
// runs as its own task so a slow sink never holds back the match.
func (d *Controller) submit(p models.Profile, dir gesture.Direction, source string) {
	if d.deps.Submitter == nil {
		return
	}
	action := dir.Action()

	d.deps.Runner.Go(func(ctx context.Context) func() {
		start := time.Now()
		res, err := d.deps.Submitter.SubmitAction(ctx, p.ID, action)
		observability.ActionLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			observability.ActionErrors.Inc()
			d.log.Warn("action.submit.failed", "target_id", p.ID, "action", string(action), "err", err)
		}

		if d.deps.Journal != nil {
			dec := models.Decision{
				ID:        newDecisionID(),
				TargetID:  p.ID,
				Action:    action,
				Source:    source,
				Match:     res.Match,
				Submitted: err == nil,
				CreatedAt: time.Now().UTC(),
			}
			d.deps.Runner.Go(func(ctx context.Context) func() {
				d.record(ctx, dec)
				return nil
			})
		}

		return func() {
			if dir != gesture.Right || !res.Match {
				return
			}
			observability.MatchesTotal.Inc()
			d.log.Info("deck.match", "profile_id", p.ID)
			if d.deps.OnMatch != nil {
				d.deps.OnMatch(Match{Profile: p, FirstName: card.FirstName(p.Name)})
			}
		}
	})
}

// record runs off the control thread, which is also where the user id is
// read since the identity store may be remote.
func (d *Controller) record(ctx context.Context, dec models.Decision) {
	if d.deps.UserID != nil {
		dec.UserID = d.deps.UserID()
	}
	if err := d.deps.Journal.Record(ctx, dec); err != nil {
		d.log.Warn("journal.record.failed", "target_id", dec.TargetID, "err", err)
	}
}
