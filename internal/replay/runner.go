package replay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/commit-swipe/internal/clock"
	"github.com/example/commit-swipe/internal/deck"
	"github.com/example/commit-swipe/internal/eventloop"
	"github.com/example/commit-swipe/internal/gesture"
	"github.com/example/commit-swipe/internal/journal"
	"github.com/example/commit-swipe/internal/models"
	"github.com/example/commit-swipe/internal/storage"
)

// Source supplies the profiles to swipe through.
type Source interface {
	Profiles(ctx context.Context) ([]models.Profile, error)
}

type Deps struct {
	Source    Source
	Submitter deck.Submitter
	// Journal also receives every decision, in addition to the run's own log.
	Journal deck.Journal
	Viewer  *models.Coordinate
	UserID  func() string
	Logger  *slog.Logger

	Start         time.Time
	SettleDelay   time.Duration
	ViewportWidth float64
}

// Result is the outcome of a replay.
type Result struct {
	Steps     int               `yaml:"steps"`
	State     deck.State        `yaml:"state"`
	Decisions []models.Decision `yaml:"decisions"`
	Matches   []string          `yaml:"matches"`
}

type Runner struct {
	deps    Deps
	log     *slog.Logger
	clk     *clock.Manual
	loop    *eventloop.Loop
	deck    *deck.Controller
	decided *storage.MemoryStore
	matches []string
}

func NewRunner(deps Deps) *Runner {
	if deps.Start.IsZero() {
		deps.Start = time.Now()
	}
	if deps.SettleDelay <= 0 {
		deps.SettleDelay = deck.DefaultSettleDelay
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		deps:    deps,
		log:     log,
		clk:     clock.NewManual(deps.Start),
		loop:    eventloop.New(256),
		decided: storage.NewMemoryStore(),
	}
}

// Run executes the script. Network work runs off the control thread; the
// runner waits for it and drains the results after every step so each step
// observes the previous one's outcome.
func (r *Runner) Run(ctx context.Context, s Script) (Result, error) {
	async := eventloop.NewAsync(ctx, r.loop)
	sink := journal.NewMulti(r.log).Add("replay", r.decided)
	if r.deps.Journal != nil {
		sink.Add("journal", r.deps.Journal)
	}
	r.deck = deck.New(deck.Deps{
		Renderer:      deck.RendererFunc(func(deck.View) {}),
		Submitter:     r.deps.Submitter,
		Scheduler:     r.clk,
		Runner:        async,
		Journal:       sink,
		Logger:        r.log,
		OnMatch:       func(m deck.Match) { r.matches = append(r.matches, m.FirstName) },
		UserID:        r.deps.UserID,
		SettleDelay:   r.deps.SettleDelay,
		ViewportWidth: r.deps.ViewportWidth,
	})

	var profiles []models.Profile
	var loadErr error
	async.Go(func(ctx context.Context) func() {
		profiles, loadErr = r.deps.Source.Profiles(ctx)
		return nil
	})
	r.sync(async)
	if loadErr != nil {
		return Result{}, fmt.Errorf("replay: load profiles: %w", loadErr)
	}
	r.deck.Load(profiles)
	if r.deps.Viewer != nil {
		r.deck.SetViewer(*r.deps.Viewer)
	}

	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		dismissed := r.step(st)
		r.sync(async)
		if dismissed && s.autoSettle() {
			r.clk.Advance(r.deps.SettleDelay)
			r.sync(async)
		}
		r.log.Debug("replay.step", "n", i+1, "kind", st.kind(), "index", r.deck.Index())
	}
	// let a trailing dismissal land
	if r.deck.Dismissing() {
		r.clk.Advance(r.deps.SettleDelay)
		r.sync(async)
	}

	decisions, err := r.decided.Recent(ctx, 0)
	if err != nil {
		return Result{}, err
	}
	reverse(decisions)
	return Result{Steps: len(s.Steps), State: r.deck.Snapshot(), Decisions: decisions, Matches: r.matches}, nil
}

// step applies one action and reports whether a card started leaving.
func (r *Runner) step(st Step) bool {
	switch {
	case st.Drag != nil:
		r.drag(*st.Drag)
		return r.deck.Dismissing()
	case st.Like != nil:
		return r.deck.LikeCurrent()
	case st.Pass != nil:
		return r.deck.PassCurrent()
	case st.Refresh != nil:
		r.deck.Reset()
	case st.Wait > 0:
		r.clk.Advance(st.Wait)
	}
	return false
}

// drag feeds start, evenly spaced moves and end through an event channel.
func (r *Runner) drag(d Drag) {
	ch := make(chan gesture.Event, d.samples()+2)
	for _, ev := range d.events(r.clk.Now()) {
		ch <- ev
	}
	close(ch)
	for ev := range ch {
		if wait := ev.At.Sub(r.clk.Now()); wait > 0 {
			r.clk.Advance(wait)
		}
		r.deck.HandlePointer(ev)
	}
}

func (d Drag) samples() int {
	if d.Samples > 0 {
		return d.Samples
	}
	return defaultDragSamples
}

func (d Drag) events(start time.Time) []gesture.Event {
	src := gesture.Mouse
	if d.Touch {
		src = gesture.Touch
	}
	n := d.samples()
	out := make([]gesture.Event, 0, n+2)
	out = append(out, gesture.Event{Kind: gesture.Start, Source: src, X: d.From, At: start})
	for i := 1; i <= n; i++ {
		frac := float64(i) / float64(n)
		out = append(out, gesture.Event{
			Kind:   gesture.Move,
			Source: src,
			X:      d.From + (d.To-d.From)*frac,
			At:     start.Add(time.Duration(frac * float64(d.Duration))),
		})
	}
	out = append(out, gesture.Event{Kind: gesture.End, Source: src, X: d.To, At: start.Add(d.Duration)})
	return out
}

func (r *Runner) sync(async *eventloop.Async) {
	for {
		async.Wait()
		if r.loop.Drain() == 0 {
			return
		}
	}
}

func reverse(ds []models.Decision) {
	for i, j := 0, len(ds)-1; i < j; i, j = i+1, j-1 {
		ds[i], ds[j] = ds[j], ds[i]
	}
}
