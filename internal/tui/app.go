package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/example/commit-swipe/internal/clock"
	"github.com/example/commit-swipe/internal/eventloop"
	"github.com/example/commit-swipe/internal/gesture"
	httpapi "github.com/example/commit-swipe/internal/http"
	"github.com/example/commit-swipe/internal/live"
)

const defaultPixelsPerCell = 8

type model struct {
	theme Theme
	s     *session
	now   func() time.Time
	ppc   float64

	width  int
	height int
}

// Run starts the interactive client and blocks until the user quits. The
// bubbletea update loop is the control thread: timers, network results and
// websocket events are all delivered to it as messages.
func Run(ctx context.Context, deps Deps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := &session{}
	m := model{theme: DefaultTheme(), s: s, ppc: deps.PixelsPerCell, now: time.Now}
	if m.ppc <= 0 {
		m.ppc = defaultPixelsPerCell
	}
	p := tea.NewProgram(wrapSafe(m, deps.Logger), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	poster := programPoster{p: p}
	runner := eventloop.NewAsync(ctx, poster)
	s.init(deps, runner, clock.NewSystem(poster))

	g, gctx := errgroup.WithContext(ctx)
	if deps.LiveBaseURL != "" {
		l, err := live.NewListener(deps.LiveBaseURL, func() string { return deps.Remote.UserID(gctx) }, poster, s.onLive, s.log)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := l.Run(gctx); err != nil {
				s.log.Warn("live.stopped", "err", err)
			}
			return nil
		})
	}
	if deps.StatusAddr != "" {
		srv := httpapi.NewServer(s.deck, deps.Decisions, s.log)
		g.Go(func() error {
			if err := srv.Serve(gctx, deps.StatusAddr); err != nil {
				s.log.Error("status.server.failed", "addr", deps.StatusAddr, "err", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	err := g.Wait()
	runner.Wait()
	return err
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg { return callbackMsg(m.s.start) }
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case callbackMsg:
		msg()
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.s.list.SetSize(msg.Width-4, msg.Height-8)
		m.s.input.Width = msg.Width - 8
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleMouse maps terminal mouse reports to pointer events on the
// foreground card. Cells are scaled to pixels so the gesture thresholds keep
// their meaning.
func (m model) handleMouse(msg tea.MouseMsg) {
	if m.s.scr != screenDeck || m.s.match != nil {
		return
	}
	ev := gesture.Event{Source: gesture.Mouse, X: float64(msg.X) * m.ppc, At: m.now()}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		// drags only start on the card itself
		if r, ok := m.foregroundRect(); !ok || !r.contains(msg.X, msg.Y) {
			return
		}
		ev.Kind = gesture.Start
	case tea.MouseActionMotion:
		ev.Kind = gesture.Move
	case tea.MouseActionRelease:
		ev.Kind = gesture.End
	default:
		return
	}
	m.s.deck.HandlePointer(ev)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.s
	key := msg.String()
	if key == "ctrl+c" {
		s.stop()
		return m, tea.Quit
	}

	if s.match != nil {
		switch key {
		case "enter", "c":
			s.startChat()
		case "esc", "k":
			s.match = nil
		}
		return m, nil
	}

	switch s.scr {
	case screenChat:
		switch key {
		case "esc":
			s.closeChat()
			return m, nil
		case "enter":
			text := strings.TrimSpace(s.input.Value())
			s.input.SetValue("")
			s.sendMessage(text)
			return m, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return m, cmd

	case screenList:
		if s.list.FilterState() == list.Unfiltered {
			switch key {
			case "esc", "b", "q":
				s.scr = screenDeck
				return m, nil
			case "enter":
				s.selectListItem()
				return m, nil
			}
		}
		var cmd tea.Cmd
		s.list, cmd = s.list.Update(msg)
		return m, cmd

	case screenInfo:
		switch key {
		case "esc", "b", "i", "q":
			s.info = nil
			s.scr = screenDeck
		}
		return m, nil
	}

	switch key {
	case "q":
		s.stop()
		return m, tea.Quit
	case "left", "h", "x":
		s.deck.PassCurrent()
	case "right", "l", "enter":
		s.deck.LikeCurrent()
	case "r":
		s.refresh()
	case "i":
		s.showInfo()
	case "m":
		s.openList(listMatches)
	case "w":
		s.openList(listLikesReceived)
	case "s":
		s.openList(listLikesSent)
	case "n":
		s.openList(listNearby)
	}
	return m, nil
}
