package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/commit-swipe/internal/clock"
	"github.com/example/commit-swipe/internal/eventloop"
	"github.com/example/commit-swipe/internal/live"
	"github.com/example/commit-swipe/internal/models"
	"github.com/example/commit-swipe/internal/storage"
)

type fakeRemote struct {
	mu        sync.Mutex
	profiles  []models.Profile
	mutual    map[int64]bool
	unread    int
	actions   []models.ActionType
	targets   []int64
	messages  map[int64][]models.Message
	msgLoads  int
	sent      []string
	failSends bool
}

func (f *fakeRemote) UserID(context.Context) string { return "7" }
func (f *fakeRemote) Profiles(context.Context) ([]models.Profile, error) {
	return f.profiles, nil
}
func (f *fakeRemote) Profile(_ context.Context, id int64) (*models.Profile, error) {
	for _, p := range f.profiles {
		if p.ID == id {
			p.Bio = "full bio"
			return &p, nil
		}
	}
	return nil, errors.New("not found")
}
func (f *fakeRemote) MyProfile(context.Context) (*models.Profile, error) {
	return &models.Profile{ID: 7, Name: "Ada Lovelace"}, nil
}
func (f *fakeRemote) SubmitAction(_ context.Context, id int64, a models.ActionType) (models.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, a)
	f.targets = append(f.targets, id)
	return models.ActionResult{Success: true, Match: a == models.ActionLike && f.mutual[id]}, nil
}
func (f *fakeRemote) Matches(context.Context) ([]models.Profile, error) {
	return []models.Profile{f.profiles[0]}, nil
}
func (f *fakeRemote) Messages(_ context.Context, id int64) ([]models.Message, error) {
	f.msgLoads++
	return f.messages[id], nil
}
func (f *fakeRemote) SendMessage(_ context.Context, id int64, text string) error {
	if f.failSends {
		return errors.New("offline")
	}
	f.sent = append(f.sent, text)
	f.messages[id] = append(f.messages[id], models.Message{Text: text, Sender: "me"})
	return nil
}
func (f *fakeRemote) UnreadCount(context.Context) (int, error) { return f.unread, nil }
func (f *fakeRemote) Nearby(context.Context, float64, float64) ([]models.Profile, error) {
	d := 3
	p := f.profiles[1]
	p.Distance = &d
	return []models.Profile{p}, nil
}
func (f *fakeRemote) LikesReceived(context.Context) ([]models.Profile, error) { return nil, nil }
func (f *fakeRemote) LikesSent(context.Context) ([]models.Profile, error)     { return nil, nil }

type harness struct {
	t       *testing.T
	m       model
	clk     *clock.Manual
	remote  *fakeRemote
	journal *storage.MemoryStore
}

func newHarness(t *testing.T, profiles ...models.Profile) *harness {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	remote := &fakeRemote{profiles: profiles, mutual: map[int64]bool{}, messages: map[int64][]models.Message{}}
	journal := storage.NewMemoryStore()
	s := newSession(Deps{
		Remote:        remote,
		Fallback:      models.Coordinate{Lat: 40.7128, Lng: -74.0060},
		Journal:       journal,
		PollInterval:  5 * time.Second,
		SettleDelay:   300 * time.Millisecond,
		ViewportWidth: 1280,
		PixelsPerCell: 8,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, eventloop.Inline{}, clk)
	m := model{theme: DefaultTheme(), s: s, ppc: 8, now: clk.Now, width: 120, height: 40}
	h := &harness{t: t, m: m, clk: clk, remote: remote, journal: journal}
	h.send(m.Init()())
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(model)
	return cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mouse(action tea.MouseAction, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

// cardOrigin is a cell just inside the foreground card's top-left corner.
func (h *harness) cardOrigin() (int, int) {
	h.t.Helper()
	r, ok := h.m.foregroundRect()
	require.True(h.t, ok, "no foreground card on screen")
	return r.x + 2, r.y + 1
}

func sampleProfiles() []models.Profile {
	return []models.Profile{
		{ID: 1, Name: "Grace Hopper", Role: "Compiler Engineer", Stack: []string{"COBOL"}, MatchScore: 91, Location: &models.Coordinate{Lat: 0.01, Lng: 0.01}},
		{ID: 2, Name: "Linus Torvalds", Role: "Kernel Hacker", MatchScore: 60},
		{ID: 3, Name: "Ken Thompson", Role: "Systems", MatchScore: 20},
	}
}

func TestStartRendersFirstCardWithDistance(t *testing.T) {
	h := newHarness(t, sampleProfiles()...)
	s := h.m.s

	require.NotNil(t, s.view.Foreground)
	assert.Equal(t, int64(1), s.view.Foreground.ProfileID)
	require.NotNil(t, s.view.Peek)
	assert.Equal(t, int64(2), s.view.Peek.ProfileID)
	assert.NotEmpty(t, s.view.Foreground.DistanceLabel(), "fallback location should yield a distance")
	require.NotNil(t, s.me)

	out := h.m.View()
	assert.Contains(t, out, "Grace Hopper")
	assert.Contains(t, out, "91% Match")
	assert.Contains(t, out, "Next: Linus Torvalds")
	assert.Contains(t, out, "Ada Lovelace")
}

func TestKeyboardLikeSettlesAndSubmits(t *testing.T) {
	h := newHarness(t, sampleProfiles()...)

	h.send(key("right"))
	assert.True(t, h.m.s.deck.Dismissing())
	assert.Empty(t, h.remote.actions, "submission waits for the settle delay")

	// ignored while the card is leaving
	h.send(key("left"))

	h.clk.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, h.m.s.deck.Index())
	assert.Equal(t, []models.ActionType{models.ActionLike}, h.remote.actions)

	recent, _ := h.journal.Recent(context.Background(), 10)
	require.Len(t, recent, 1)
	assert.Equal(t, int64(1), recent[0].TargetID)
	assert.Equal(t, "button", recent[0].Source)
}

func TestMouseDragDismisses(t *testing.T) {
	h := newHarness(t, sampleProfiles()...)
	x, y := h.cardOrigin()

	h.send(mouse(tea.MouseActionPress, x, y))
	h.send(mouse(tea.MouseActionMotion, x+10, y))
	fg := h.m.s.view.Foreground
	require.NotNil(t, fg)
	assert.Equal(t, 80.0, fg.Offset.TranslateX)
	assert.Greater(t, fg.Positive.Opacity, 0.0)

	h.clk.Advance(time.Second)
	h.send(mouse(tea.MouseActionMotion, x+15, y))
	h.send(mouse(tea.MouseActionRelease, x+15, y))
	require.True(t, h.m.s.deck.Dismissing(), "a 120px drag is a swipe")

	h.clk.Advance(300 * time.Millisecond)
	assert.Equal(t, []models.ActionType{models.ActionLike}, h.remote.actions)
	assert.Equal(t, []int64{1}, h.remote.targets)
}

func TestPressOutsideCardDoesNotDrag(t *testing.T) {
	h := newHarness(t, sampleProfiles()...)
	r, ok := h.m.foregroundRect()
	require.True(t, ok)

	for _, at := range [][2]int{{r.x - 1, r.y + 1}, {r.x + r.w, r.y + 1}, {r.x + 2, r.y - 1}, {r.x + 2, r.y + r.h}} {
		h.send(mouse(tea.MouseActionPress, at[0], at[1]))
		h.send(mouse(tea.MouseActionMotion, at[0]+20, at[1]))
		h.clk.Advance(time.Second)
		h.send(mouse(tea.MouseActionRelease, at[0]+20, at[1]))
		assert.False(t, h.m.s.deck.Dismissing(), "press at %v must not start a drag", at)
		assert.Equal(t, 0.0, h.m.s.view.Foreground.Offset.TranslateX)
	}
	assert.Empty(t, h.remote.actions)
}

func TestShortSlowDragSnapsBack(t *testing.T) {
	h := newHarness(t, sampleProfiles()...)
	x, y := h.cardOrigin()

	h.send(mouse(tea.MouseActionPress, x, y))
	h.send(mouse(tea.MouseActionMotion, x+2, y))
	h.clk.Advance(2 * time.Second)
	h.send(mouse(tea.MouseActionRelease, x+2, y))

	assert.False(t, h.m.s.deck.Dismissing())
	fg := h.m.s.view.Foreground
	assert.Equal(t, 0.0, fg.Offset.TranslateX)
	assert.Equal(t, 0.0, fg.Positive.Opacity)
	assert.Equal(t, 0.0, fg.Negative.Opacity)
}

func TestMatchModalOpensChat(t *testing.T) {
	h := newHarness(t, sampleProfiles()...)
	h.remote.mutual[1] = true
	h.remote.messages[1] = []models.Message{{Text: "hey", Sender: "them"}}

	h.send(key("l"))
	h.clk.Advance(300 * time.Millisecond)
	require.NotNil(t, h.m.s.match)
	assert.Equal(t, "Grace", h.m.s.match.FirstName)
	assert.Contains(t, h.m.View(), "You and Grace liked each other.")

	h.send(key("enter"))
	assert.Nil(t, h.m.s.match)
	assert.Equal(t, screenChat, h.m.s.scr)
	require.Len(t, h.m.s.chat, 1)

	h.m.s.input.SetValue("hello there")
	h.send(key("enter"))
	assert.Equal(t, []string{"hello there"}, h.remote.sent)
	assert.Len(t, h.m.s.chat, 2)
	assert.Contains(t, h.m.View(), "you: hello there")

	h.send(key("esc"))
	assert.Equal(t, screenDeck, h.m.s.scr)
}

func TestMatchWithInvalidIDCannotChat(t *testing.T) {
	h := newHarness(t, models.Profile{ID: 0, Name: "Ghost"})
	h.remote.mutual[0] = true

	h.send(key("right"))
	h.clk.Advance(300 * time.Millisecond)
	require.NotNil(t, h.m.s.match)

	h.send(key("c"))
	assert.Equal(t, screenDeck, h.m.s.scr)
	assert.Equal(t, msgChatUnavailable, h.m.s.toast)
}

func TestTerminalAndRefresh(t *testing.T) {
	h := newHarness(t, sampleProfiles()[:1]...)

	h.send(key("h"))
	h.clk.Advance(300 * time.Millisecond)
	assert.True(t, h.m.s.view.Terminal)
	assert.Contains(t, h.m.View(), "No more profiles")

	h.send(key("r"))
	assert.False(t, h.m.s.view.Terminal)
	assert.Equal(t, 0, h.m.s.deck.Index())
}

func TestBadgeAndLivePush(t *testing.T) {
	h := newHarness(t, sampleProfiles()...)
	assert.Equal(t, "", h.m.s.badge)

	h.remote.unread = 12
	h.clk.Advance(5 * time.Second)
	assert.Equal(t, "9+", h.m.s.badge)
	assert.Contains(t, h.m.View(), "9+")

	h.remote.unread = 0
	h.send(key("m"))
	require.Equal(t, screenList, h.m.s.scr)
	h.send(key("enter"))
	require.Equal(t, screenChat, h.m.s.scr)
	loads := h.remote.msgLoads

	h.remote.unread = 1
	h.send(callbackMsg(func() {
		h.m.s.onLive(models.LiveEvent{Type: live.EventNewMessage, SenderID: 1, Text: "ping"})
	}))
	assert.Equal(t, loads+1, h.remote.msgLoads, "open chat reloads on push")
	assert.Equal(t, "1", h.m.s.badge)
}

func TestInfoAndNearby(t *testing.T) {
	h := newHarness(t, sampleProfiles()...)

	h.send(key("i"))
	require.Equal(t, screenInfo, h.m.s.scr)
	require.NotNil(t, h.m.s.info)
	assert.Equal(t, "full bio", h.m.s.info.Bio)
	h.send(key("esc"))
	assert.Equal(t, screenDeck, h.m.s.scr)

	h.send(key("n"))
	require.Equal(t, screenList, h.m.s.scr)
	items := h.m.s.list.Items()
	require.Len(t, items, 1)
	assert.True(t, strings.Contains(items[0].(profileItem).Description(), "3 km away"))
}

func TestSafeModelRecoversFromPanic(t *testing.T) {
	h := newHarness(t, sampleProfiles()...)
	sm := wrapSafe(h.m, nil)

	next, cmd := sm.Update(callbackMsg(func() { panic("boom") }))
	assert.Nil(t, cmd)
	out := next.(safeModel)
	assert.Equal(t, "Unexpected error (see logs)", out.m.s.toast)
	assert.Equal(t, screenDeck, out.m.s.scr)
}

func TestProgramPoster(t *testing.T) {
	var got []tea.Msg
	pp := programPoster{p: senderFunc(func(msg tea.Msg) { got = append(got, msg) })}
	assert.False(t, pp.Post(nil))
	ran := false
	assert.True(t, pp.Post(func() { ran = true }))
	require.Len(t, got, 1)
	got[0].(callbackMsg)()
	assert.True(t, ran)
}

type senderFunc func(tea.Msg)

func (f senderFunc) Send(msg tea.Msg) { f(msg) }
