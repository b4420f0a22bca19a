package deck

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/commit-swipe/internal/clock"
	"github.com/example/commit-swipe/internal/eventloop"
	"github.com/example/commit-swipe/internal/gesture"
	"github.com/example/commit-swipe/internal/models"
)

type recordingRenderer struct{ views []View }

func (r *recordingRenderer) Render(v View) { r.views = append(r.views, v) }
func (r *recordingRenderer) last() View    { return r.views[len(r.views)-1] }

type submission struct {
	target int64
	action models.ActionType
}

type fakeSubmitter struct {
	calls   []submission
	matches map[int64]bool
	err     error
}

func (f *fakeSubmitter) SubmitAction(_ context.Context, target int64, action models.ActionType) (models.ActionResult, error) {
	f.calls = append(f.calls, submission{target, action})
	if f.err != nil {
		return models.ActionResult{}, f.err
	}
	return models.ActionResult{Success: true, Match: f.matches[target]}, nil
}

type memJournal struct{ decisions []models.Decision }

func (m *memJournal) Record(_ context.Context, d models.Decision) error {
	m.decisions = append(m.decisions, d)
	return nil
}

type harness struct {
	deck     *Controller
	render   *recordingRenderer
	submit   *fakeSubmitter
	journal  *memJournal
	clk      *clock.Manual
	surfaced []Match
}

func newHarness(n int) *harness {
	h := &harness{
		render:  &recordingRenderer{},
		submit:  &fakeSubmitter{matches: map[int64]bool{}},
		journal: &memJournal{},
		clk:     clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	h.deck = New(Deps{
		Renderer:  h.render,
		Submitter: h.submit,
		Scheduler: h.clk,
		Journal:   h.journal,
		OnMatch:   func(m Match) { h.surfaced = append(h.surfaced, m) },
		UserID:    func() string { return "42" },
	})
	profiles := make([]models.Profile, 0, n)
	for i := 1; i <= n; i++ {
		profiles = append(profiles, models.Profile{ID: int64(i), Name: "Person Number", MatchScore: 50})
	}
	h.deck.Load(profiles)
	return h
}

func (h *harness) swipe(delta float64) {
	at := h.clk.Now()
	h.deck.HandlePointer(gesture.Event{Kind: gesture.Start, X: 0, At: at})
	h.deck.HandlePointer(gesture.Event{Kind: gesture.Move, X: delta, At: at.Add(time.Second)})
	h.deck.HandlePointer(gesture.Event{Kind: gesture.End, X: delta, At: at.Add(2 * time.Second)})
}

func (h *harness) settle() { h.clk.Advance(DefaultSettleDelay) }

func TestRenderShowsForegroundAndPeek(t *testing.T) {
	h := newHarness(2)
	v := h.render.last()
	require.NotNil(t, v.Foreground)
	require.NotNil(t, v.Peek)
	assert.Equal(t, int64(1), v.Foreground.ProfileID)
	assert.True(t, v.Foreground.Interactive)
	assert.Equal(t, int64(2), v.Peek.ProfileID)
	assert.False(t, v.Peek.Interactive)
	assert.True(t, v.Peek.Peek)
}

func TestLastCardHasNoPeek(t *testing.T) {
	h := newHarness(1)
	v := h.render.last()
	require.NotNil(t, v.Foreground)
	assert.Nil(t, v.Peek)
}

func TestEmptyStackIsTerminal(t *testing.T) {
	h := newHarness(0)
	assert.True(t, h.render.last().Terminal)
	assert.True(t, h.deck.Terminal())
	assert.False(t, h.deck.LikeCurrent(), "like on empty stack must no-op")
	assert.False(t, h.deck.PassCurrent(), "pass on empty stack must no-op")
}

func TestSwipeSequenceReachesTerminal(t *testing.T) {
	h := newHarness(3)

	for i, delta := range []float64{150, 150, -150} {
		require.Equal(t, i, h.deck.Index())
		h.swipe(delta)
		assert.True(t, h.deck.Dismissing())
		assert.Equal(t, i, h.deck.Index(), "index must not move before the settle delay")
		h.settle()
		assert.Equal(t, i+1, h.deck.Index())
	}

	assert.True(t, h.deck.Terminal())
	assert.True(t, h.render.last().Terminal)
	assert.Equal(t, []submission{
		{1, models.ActionLike},
		{2, models.ActionLike},
		{3, models.ActionPass},
	}, h.submit.calls)

	require.Len(t, h.journal.decisions, 3)
	assert.Equal(t, "gesture", h.journal.decisions[0].Source)
	assert.Equal(t, "42", h.journal.decisions[0].UserID)
	assert.True(t, h.journal.decisions[2].Submitted)
}

func TestAdvanceAtLastCardIsTerminal(t *testing.T) {
	h := newHarness(2)
	h.deck.Advance()
	assert.False(t, h.deck.Terminal())
	h.deck.Advance()
	assert.True(t, h.deck.Terminal())
	h.deck.Advance()
	assert.Equal(t, 2, h.deck.Index(), "advance must not move past the end")
}

func TestResetAlwaysReturnsToStart(t *testing.T) {
	for _, advances := range []int{0, 1, 3, 5} {
		h := newHarness(3)
		for i := 0; i < advances; i++ {
			h.deck.Advance()
		}
		h.deck.Reset()
		assert.Equal(t, 0, h.deck.Index())
		assert.False(t, h.deck.Terminal())
		assert.Equal(t, int64(1), h.render.last().Foreground.ProfileID)
	}
}

func TestResetStillSubmitsDismissedCard(t *testing.T) {
	h := newHarness(3)
	h.swipe(150)
	h.deck.Reset()
	assert.Equal(t, []submission{{1, models.ActionLike}}, h.submit.calls)

	h.settle()
	assert.Equal(t, 0, h.deck.Index())
	assert.False(t, h.deck.Dismissing())
	assert.Len(t, h.submit.calls, 1, "the settle must not submit twice")
	require.Len(t, h.journal.decisions, 1)
}

func TestReloadStillSubmitsDismissedCard(t *testing.T) {
	h := newHarness(3)
	h.deck.PassCurrent()
	h.deck.Load([]models.Profile{{ID: 7}})
	assert.Equal(t, []submission{{1, models.ActionPass}}, h.submit.calls)
	assert.Equal(t, 0, h.deck.Index())
}

// queuedScheduler hands callbacks back to the test instead of running them,
// like a wall-clock timer that already fired and posted to the control
// thread. Stop is too late to help.
type queuedScheduler struct {
	*clock.Manual
	queued []func()
}

type firedHandle struct{}

func (firedHandle) Stop() bool { return false }

func (q *queuedScheduler) AfterFunc(_ time.Duration, fn func()) clock.Handle {
	q.queued = append(q.queued, fn)
	return firedHandle{}
}

func TestQueuedSettleIgnoredAfterReset(t *testing.T) {
	sched := &queuedScheduler{Manual: clock.NewManual(time.Unix(0, 0))}
	sub := &fakeSubmitter{matches: map[int64]bool{}}
	d := New(Deps{Renderer: &recordingRenderer{}, Submitter: sub, Scheduler: sched})
	d.Load([]models.Profile{{ID: 1}, {ID: 2}, {ID: 3}})

	require.True(t, d.LikeCurrent())
	d.Reset()
	require.Len(t, sched.queued, 1)
	sched.queued[0]()

	assert.Equal(t, 0, d.Index())
	assert.Equal(t, []submission{{1, models.ActionLike}}, sub.calls)

	require.True(t, d.LikeCurrent(), "the first card is interactive again")
}

type blockingJournal struct {
	release chan struct{}
	mu      sync.Mutex
	n       int
}

func (b *blockingJournal) Record(ctx context.Context, _ models.Decision) error {
	<-b.release
	b.mu.Lock()
	b.n++
	b.mu.Unlock()
	return nil
}

func TestSlowJournalDoesNotDelayMatch(t *testing.T) {
	loop := eventloop.New(16)
	async := eventloop.NewAsync(context.Background(), loop)
	journal := &blockingJournal{release: make(chan struct{})}
	clk := clock.NewManual(time.Unix(0, 0))
	var surfaced []Match
	d := New(Deps{
		Renderer:  &recordingRenderer{},
		Submitter: &fakeSubmitter{matches: map[int64]bool{1: true}},
		Scheduler: clk,
		Runner:    async,
		Journal:   journal,
		OnMatch:   func(m Match) { surfaced = append(surfaced, m) },
	})
	d.Load([]models.Profile{{ID: 1, Name: "Grace Hopper"}})
	require.True(t, d.LikeCurrent())
	clk.Advance(DefaultSettleDelay)

	deadline := time.Now().Add(2 * time.Second)
	for len(surfaced) == 0 && time.Now().Before(deadline) {
		loop.Drain()
		time.Sleep(time.Millisecond)
	}
	require.Len(t, surfaced, 1, "match must surface while the journal is still blocked")
	assert.Equal(t, "Grace", surfaced[0].FirstName)

	close(journal.release)
	async.Wait()
	journal.mu.Lock()
	defer journal.mu.Unlock()
	assert.Equal(t, 1, journal.n)
}

// taskRunner runs tasks inline but remembers whether a task is executing.
type taskRunner struct{ inTask bool }

func (r *taskRunner) Go(task func(ctx context.Context) func()) {
	prev := r.inTask
	r.inTask = true
	next := task(context.Background())
	r.inTask = prev
	if next != nil {
		next()
	}
}

func TestUserIDReadInsideRunnerTask(t *testing.T) {
	runner := &taskRunner{}
	var calledInTask []bool
	journal := &memJournal{}
	clk := clock.NewManual(time.Unix(0, 0))
	d := New(Deps{
		Renderer:  &recordingRenderer{},
		Submitter: &fakeSubmitter{},
		Scheduler: clk,
		Runner:    runner,
		Journal:   journal,
		UserID: func() string {
			calledInTask = append(calledInTask, runner.inTask)
			return "42"
		},
	})
	d.Load([]models.Profile{{ID: 1}})
	d.PassCurrent()
	clk.Advance(DefaultSettleDelay)

	assert.Equal(t, []bool{true}, calledInTask)
	require.Len(t, journal.decisions, 1)
	assert.Equal(t, "42", journal.decisions[0].UserID)
}

func TestButtonsDismissWithSlowerTransition(t *testing.T) {
	h := newHarness(2)
	require.True(t, h.deck.LikeCurrent())
	fg := h.render.last().Foreground
	assert.Equal(t, gesture.TransitionButtonDismiss, fg.Offset.Transition)
	assert.Equal(t, DefaultViewportWidth, fg.Offset.TranslateX)
	assert.Equal(t, gesture.DismissRotation, fg.Offset.Rotation)

	assert.False(t, h.deck.PassCurrent(), "second press during settle must no-op")
	h.settle()
	require.True(t, h.deck.PassCurrent())
	assert.Equal(t, -DefaultViewportWidth, h.render.last().Foreground.Offset.TranslateX)
	h.settle()

	assert.Equal(t, []submission{{1, models.ActionLike}, {2, models.ActionPass}}, h.submit.calls)
	assert.Equal(t, "button", h.journal.decisions[0].Source)
}

func TestGestureIgnoredWhileDismissing(t *testing.T) {
	h := newHarness(2)
	h.deck.PassCurrent()
	assert.False(t, h.deck.HandlePointer(gesture.Event{Kind: gesture.Start, At: h.clk.Now()}))
}

func TestMatchSurfacedOnlyForMutualLike(t *testing.T) {
	h := newHarness(3)
	h.submit.matches[1] = true
	h.submit.matches[2] = true // a pass never surfaces, even if the server says match

	h.swipe(150)
	h.settle()
	h.swipe(-150)
	h.settle()
	h.swipe(150)
	h.settle()

	require.Len(t, h.surfaced, 1)
	assert.Equal(t, int64(1), h.surfaced[0].Profile.ID)
	assert.Equal(t, "Person", h.surfaced[0].FirstName)
}

func TestSubmitFailureIsNotFatal(t *testing.T) {
	h := newHarness(2)
	h.submit.err = errors.New("connection refused")
	h.swipe(150)
	h.settle()
	assert.Equal(t, 1, h.deck.Index())
	assert.Empty(t, h.surfaced)
	require.Len(t, h.journal.decisions, 1)
	assert.False(t, h.journal.decisions[0].Submitted)
}

func TestSnapBackKeepsIndex(t *testing.T) {
	h := newHarness(2)
	at := h.clk.Now()
	h.deck.HandlePointer(gesture.Event{Kind: gesture.Start, X: 0, At: at})
	h.deck.HandlePointer(gesture.Event{Kind: gesture.Move, X: 20, At: at.Add(100 * time.Millisecond)})
	h.deck.HandlePointer(gesture.Event{Kind: gesture.End, X: 20, At: at.Add(200 * time.Millisecond)})

	assert.False(t, h.deck.Dismissing())
	assert.Equal(t, 0, h.clk.Pending())
	fg := h.render.last().Foreground
	assert.Equal(t, gesture.TransitionSnapBack, fg.Offset.Transition)
	assert.Zero(t, fg.Positive.Opacity)
	assert.Zero(t, fg.Negative.Opacity)
}

func TestViewerResolutionRerendersWithDistance(t *testing.T) {
	h := newHarness(0)
	h.deck.Load([]models.Profile{{ID: 9, Location: &models.Coordinate{Lat: 0.01, Lng: 0.01}}})
	assert.Empty(t, h.render.last().Foreground.DistanceLabel())

	h.deck.SetViewer(models.Coordinate{Lat: 40.7128, Lng: -74.0060})
	assert.Equal(t, "1 km away", h.render.last().Foreground.DistanceLabel())
}

func TestSnapshot(t *testing.T) {
	h := newHarness(2)
	s := h.deck.Snapshot()
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, 2, s.Length)
	require.NotNil(t, s.ForegroundID)
	assert.Equal(t, int64(1), *s.ForegroundID)
	require.NotNil(t, s.PeekID)
	assert.Equal(t, int64(2), *s.PeekID)
}

func TestChatTarget(t *testing.T) {
	id, err := ChatTarget(models.Profile{ID: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	_, err = ChatTarget(models.Profile{ID: 0})
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}
