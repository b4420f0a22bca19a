package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/example/commit-swipe/internal/clock"
	"github.com/example/commit-swipe/internal/deck"
	"github.com/example/commit-swipe/internal/eventloop"
	"github.com/example/commit-swipe/internal/geo"
	"github.com/example/commit-swipe/internal/live"
	"github.com/example/commit-swipe/internal/models"
	"github.com/example/commit-swipe/internal/notify"
)

type screen int

const (
	screenDeck screen = iota
	screenList
	screenInfo
	screenChat
)

type listKind int

const (
	listMatches listKind = iota
	listLikesReceived
	listLikesSent
	listNearby
)

func (k listKind) title() string {
	switch k {
	case listMatches:
		return "Matches"
	case listLikesReceived:
		return "Liked you"
	case listLikesSent:
		return "You liked"
	case listNearby:
		return "Nearby"
	default:
		return ""
	}
}

const msgChatUnavailable = "Could not start chat. Please refresh."

// session is the controller object for one run of the client. It is created
// once, lives for the whole program and is only touched from the control
// thread.
type session struct {
	deps   Deps
	log    *slog.Logger
	runner eventloop.Runner
	clock  clock.Scheduler

	deck    *deck.Controller
	poller  *notify.Poller
	locator *geo.Locator

	view   deck.View
	badge  string
	me     *models.Profile
	toast  string
	match  *deck.Match
	loaded bool

	scr      screen
	listKind listKind
	list     list.Model
	info     *models.Profile
	chatWith *models.Profile
	chat     []models.Message
	input    textinput.Model
}

func newSession(deps Deps, runner eventloop.Runner, scheduler clock.Scheduler) *session {
	s := &session{}
	s.init(deps, runner, scheduler)
	return s
}

// init wires the session. It is separate from newSession because the
// program that owns the control thread must exist before the runner does.
func (s *session) init(deps Deps, runner eventloop.Runner, scheduler clock.Scheduler) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	s.deps, s.log, s.runner, s.clock = deps, log, runner, scheduler

	s.deck = deck.New(deck.Deps{
		Renderer:      s,
		Submitter:     deps.Remote,
		Scheduler:     scheduler,
		Runner:        runner,
		Journal:       deps.Journal,
		Logger:        log,
		OnMatch:       s.showMatch,
		UserID:        func() string { return deps.Remote.UserID(context.Background()) },
		SettleDelay:   deps.SettleDelay,
		ViewportWidth: deps.ViewportWidth,
	})
	s.poller = notify.NewPoller(deps.Remote, s, scheduler, runner, deps.PollInterval, log)
	s.locator = geo.NewLocator(deps.Locate, deps.Fallback, runner, log)

	s.list = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	s.list.SetShowStatusBar(false)
	s.list.SetShowHelp(false)
	s.list.SetFilteringEnabled(true)

	s.input = textinput.New()
	s.input.Placeholder = "Say hi"
	s.input.CharLimit = 500
}

// Render implements deck.Renderer.
func (s *session) Render(v deck.View) { s.view = v }

// SetBadge and ClearBadge implement notify.Badge.
func (s *session) SetBadge(text string) { s.badge = text }
func (s *session) ClearBadge()          { s.badge = "" }

// start kicks off the initial fetches. Profiles render as soon as they
// arrive; distance labels appear once the location resolves.
func (s *session) start() {
	s.loadMe()
	s.loadProfiles()
	s.locator.Request(func(c models.Coordinate) { s.deck.SetViewer(c) })
	s.poller.Start()
}

func (s *session) stop() { s.poller.Stop() }

func (s *session) loadMe() {
	s.runner.Go(func(ctx context.Context) func() {
		me, _ := s.deps.Remote.MyProfile(ctx)
		return func() { s.me = me }
	})
}

func (s *session) loadProfiles() {
	s.runner.Go(func(ctx context.Context) func() {
		ps, err := s.deps.Remote.Profiles(ctx)
		return func() {
			s.loaded = true
			s.deck.Load(ps)
			if err != nil {
				s.toast = "Could not load profiles"
			}
		}
	})
}

// refresh is the explicit reset control: rewind to the first card.
func (s *session) refresh() {
	s.toast = ""
	s.deck.Reset()
}

func (s *session) showMatch(m deck.Match) {
	s.match = &m
}

// startChat opens the chat for the surfaced match after validating its id.
func (s *session) startChat() {
	if s.match == nil {
		return
	}
	p := s.match.Profile
	s.match = nil
	if _, err := deck.ChatTarget(p); err != nil {
		s.log.Warn("chat.invalid_identity", "profile_id", p.ID)
		s.toast = msgChatUnavailable
		return
	}
	s.openChat(p)
}

func (s *session) openChat(p models.Profile) {
	if _, err := deck.ChatTarget(p); err != nil {
		s.toast = msgChatUnavailable
		return
	}
	s.chatWith = &p
	s.chat = nil
	s.scr = screenChat
	s.input.SetValue("")
	s.input.Focus()
	s.loadMessages()
}

func (s *session) loadMessages() {
	if s.chatWith == nil {
		return
	}
	id := s.chatWith.ID
	s.runner.Go(func(ctx context.Context) func() {
		msgs, _ := s.deps.Remote.Messages(ctx, id)
		return func() {
			if s.chatWith != nil && s.chatWith.ID == id {
				s.chat = msgs
			}
		}
	})
}

func (s *session) sendMessage(text string) {
	if s.chatWith == nil || text == "" {
		return
	}
	id := s.chatWith.ID
	s.runner.Go(func(ctx context.Context) func() {
		err := s.deps.Remote.SendMessage(ctx, id, text)
		return func() {
			if err != nil {
				s.toast = "Message not sent"
				return
			}
			s.loadMessages()
		}
	})
}

func (s *session) closeChat() {
	s.chatWith = nil
	s.chat = nil
	s.input.Blur()
	s.scr = screenDeck
	s.poller.PollNow()
}

// onLive handles events pushed over the websocket.
func (s *session) onLive(ev models.LiveEvent) {
	if ev.Type != live.EventNewMessage {
		return
	}
	s.poller.PollNow()
	if s.scr == screenChat && s.chatWith != nil && s.chatWith.ID == ev.SenderID {
		s.loadMessages()
	}
}

// showInfo fetches the full profile behind the foreground card.
func (s *session) showInfo() {
	p, ok := s.deck.Current()
	if !ok || s.view.Foreground == nil {
		return
	}
	s.info = &p
	s.scr = screenInfo
	s.runner.Go(func(ctx context.Context) func() {
		full, err := s.deps.Remote.Profile(ctx, p.ID)
		return func() {
			if err == nil && full != nil && s.info != nil && s.info.ID == full.ID {
				s.info = full
			}
		}
	})
}

func (s *session) openList(kind listKind) {
	s.listKind = kind
	s.list.Title = kind.title()
	s.list.SetItems(nil)
	s.list.ResetFilter()
	s.scr = screenList

	var at *models.Coordinate
	if kind == listNearby {
		at = s.locator.Current()
		if at == nil {
			c := s.deps.Fallback
			at = &c
		}
	}
	s.runner.Go(func(ctx context.Context) func() {
		var (
			ps  []models.Profile
			err error
		)
		switch kind {
		case listMatches:
			ps, err = s.deps.Remote.Matches(ctx)
		case listLikesReceived:
			ps, err = s.deps.Remote.LikesReceived(ctx)
		case listLikesSent:
			ps, err = s.deps.Remote.LikesSent(ctx)
		case listNearby:
			ps, err = s.deps.Remote.Nearby(ctx, at.Lat, at.Lng)
		default:
			err = errors.New("unknown list")
		}
		return func() {
			if s.scr != screenList || s.listKind != kind {
				return
			}
			if err != nil {
				s.toast = fmt.Sprintf("Could not load %s", kind.title())
			}
			items := make([]list.Item, 0, len(ps))
			for _, p := range ps {
				items = append(items, profileItem{p: p, nearby: kind == listNearby})
			}
			s.list.SetItems(items)
		}
	})
}

// selectListItem opens a chat for a match and the info view otherwise.
func (s *session) selectListItem() {
	it, ok := s.list.SelectedItem().(profileItem)
	if !ok {
		return
	}
	if s.listKind == listMatches {
		s.openChat(it.p)
		return
	}
	p := it.p
	s.info = &p
	s.scr = screenInfo
}

type profileItem struct {
	p      models.Profile
	nearby bool
}

func (i profileItem) Title() string { return i.p.Name }

func (i profileItem) Description() string {
	desc := i.p.Role
	if i.nearby && i.p.Distance != nil {
		desc = fmt.Sprintf("%s · %d km away", desc, *i.p.Distance)
	}
	return desc
}

func (i profileItem) FilterValue() string { return i.p.Name }
