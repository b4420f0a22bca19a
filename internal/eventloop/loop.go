package eventloop

import (
	"context"
	"sync"
)

// Poster hands a callback to the control thread. It reports false when the
// thread is gone and the callback was dropped.
type Poster interface {
	Post(fn func()) bool
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(fn func()) bool

func (f PosterFunc) Post(fn func()) bool { return f(fn) }

// Runner executes blocking work off the control thread. The continuation
// returned by task, if any, runs back on the control thread. Go may be
// called from inside a running task.
type Runner interface {
	Go(task func(ctx context.Context) func())
}

// Loop is a single control thread. All deck, gesture and poller state is
// mutated from callbacks executed by Run, one at a time.
type Loop struct {
	inbox chan func()
	done  chan struct{}
	once  sync.Once
}

func New(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 64
	}
	return &Loop{inbox: make(chan func(), buffer), done: make(chan struct{})}
}

// Post enqueues fn. It blocks while the inbox is full and returns false once
// the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.inbox <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run executes posted callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.inbox:
			fn()
		}
	}
}

// Drain runs every callback currently queued without blocking. Useful for
// single-threaded callers that own the loop, like the replay runner.
func (l *Loop) Drain() int {
	n := 0
	for {
		select {
		case fn := <-l.inbox:
			fn()
			n++
		default:
			return n
		}
	}
}

// Async is a Runner that posts continuations through a Poster.
type Async struct {
	ctx    context.Context
	poster Poster
	wg     sync.WaitGroup
}

func NewAsync(ctx context.Context, poster Poster) *Async {
	return &Async{ctx: ctx, poster: poster}
}

func (a *Async) Go(task func(ctx context.Context) func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		next := task(a.ctx)
		if next != nil && a.ctx.Err() == nil {
			a.poster.Post(next)
		}
	}()
}

// Wait blocks until every task started with Go has returned.
func (a *Async) Wait() { a.wg.Wait() }

// Inline runs the task and its continuation synchronously on the caller.
type Inline struct{}

func (Inline) Go(task func(ctx context.Context) func()) {
	if next := task(context.Background()); next != nil {
		next()
	}
}
