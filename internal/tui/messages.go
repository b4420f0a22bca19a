package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/commit-swipe/internal/eventloop"
)

// callbackMsg carries work posted to the control thread. Update runs it.
type callbackMsg func()

// sender is the part of *tea.Program the poster needs.
type sender interface {
	Send(msg tea.Msg)
}

// programPoster makes the bubbletea update loop the control thread.
type programPoster struct{ p sender }

func (pp programPoster) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	pp.p.Send(callbackMsg(fn))
	return true
}

var _ eventloop.Poster = programPoster{}
