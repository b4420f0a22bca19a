package gesture

import (
	"context"
	"time"
)

// Surface receives the visual feedback for the foreground card.
type Surface interface {
	Transform(t Transform)
	Indicators(positive, negative float64)
}

type State int

const (
	Idle State = iota
	Dragging
)

// Session is the transient state of one drag.
type Session struct {
	StartX   float64
	Delta    float64
	Start    time.Time
	Dragging bool
	Velocity float64
}

// Controller is the swipe state machine of a single foreground card.
// It is not safe for concurrent use; feed it from the control thread.
type Controller struct {
	surface Surface
	dismiss func(Direction)

	session  *Session
	disabled bool
	last     *Classification
}

// NewController binds a controller to the card surface. dismiss is invoked
// when a drag ends as a recognized swipe.
func NewController(surface Surface, dismiss func(Direction)) *Controller {
	return &Controller{surface: surface, dismiss: dismiss}
}

func (c *Controller) State() State {
	if c.session != nil && c.session.Dragging {
		return Dragging
	}
	return Idle
}

// Session returns a copy of the active drag, if any.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Last returns the classification of the most recent completed drag.
func (c *Controller) Last() (Classification, bool) {
	if c.last == nil {
		return Classification{}, false
	}
	return *c.last, true
}

// Disable stops the controller from reacting to further input; the card is
// leaving the stack.
func (c *Controller) Disable() {
	c.disabled = true
	c.session = nil
}

func (c *Controller) Disabled() bool { return c.disabled }

// Handle applies one event. It reports whether the event changed anything.
func (c *Controller) Handle(ev Event) bool {
	if c.disabled {
		return false
	}
	switch ev.Kind {
	case Start:
		return c.start(ev)
	case Move:
		return c.move(ev)
	case End:
		return c.end(ev)
	}
	return false
}

// Run feeds events from ch until it closes or ctx is cancelled.
func (c *Controller) Run(ctx context.Context, ch <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			c.Handle(ev)
		}
	}
}

func (c *Controller) start(ev Event) bool {
	if c.State() == Dragging {
		return false
	}
	c.session = &Session{StartX: ev.X, Start: ev.At, Dragging: true}
	c.surface.Transform(Transform{Transition: TransitionNone})
	return true
}

func (c *Controller) move(ev Event) bool {
	if c.State() != Dragging {
		return false
	}
	c.session.Delta = ev.X - c.session.StartX
	tr, pos, neg := Feedback(c.session.Delta)
	c.surface.Transform(tr)
	c.surface.Indicators(pos, neg)
	return true
}

func (c *Controller) end(ev Event) bool {
	if c.State() != Dragging {
		return false
	}
	s := c.session
	s.Dragging = false
	cl := Classify(s.Delta, ev.X-s.StartX, ev.At.Sub(s.Start))
	s.Velocity = cl.Velocity
	c.last = &cl
	c.session = nil

	if cl.Swipe {
		if c.dismiss != nil {
			c.dismiss(cl.Direction)
		}
		return true
	}
	c.surface.Transform(Transform{Transition: TransitionSnapBack})
	c.surface.Indicators(0, 0)
	return true
}
