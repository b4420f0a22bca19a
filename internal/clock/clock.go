package clock

import (
	"time"

	"github.com/example/commit-swipe/internal/eventloop"
)

// Clock provides time to the application.
// Using an interface enables deterministic tests via a controllable implementation.
type Clock interface {
	Now() time.Time
}

// Handle cancels a scheduled callback. Stop reports whether the callback
// was prevented from running.
type Handle interface {
	Stop() bool
}

// Scheduler defers callbacks. Callbacks always run on the control thread.
type Scheduler interface {
	Clock
	AfterFunc(d time.Duration, fn func()) Handle
}

// System schedules on wall-clock timers and delivers through a Poster.
type System struct {
	poster eventloop.Poster
}

func NewSystem(poster eventloop.Poster) *System { return &System{poster: poster} }

func (System) Now() time.Time { return time.Now() }

func (s *System) AfterFunc(d time.Duration, fn func()) Handle {
	return time.AfterFunc(d, func() {
		if s.poster == nil {
			fn()
			return
		}
		s.poster.Post(fn)
	})
}
