package notify

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/example/commit-swipe/internal/clock"
	"github.com/example/commit-swipe/internal/eventloop"
	"github.com/example/commit-swipe/internal/observability"
)

const DefaultInterval = 5 * time.Second

// Source reports the number of unread messages.
type Source interface {
	UnreadCount(ctx context.Context) (int, error)
}

// Badge is the small counter on the matches navigation entry.
type Badge interface {
	SetBadge(text string)
	ClearBadge()
}

// BadgeText caps the display at "9+". Zero or less means no badge.
func BadgeText(unread int) (string, bool) {
	switch {
	case unread <= 0:
		return "", false
	case unread > 9:
		return "9+", true
	default:
		return strconv.Itoa(unread), true
	}
}

// Poller checks the unread count immediately and then every interval.
// Failures are logged and polling carries on.
type Poller struct {
	source    Source
	badge     Badge
	scheduler clock.Scheduler
	runner    eventloop.Runner
	interval  time.Duration
	logger    *slog.Logger

	next     clock.Handle
	running  bool
	inflight bool
	last     int
}

func NewPoller(source Source, badge Badge, scheduler clock.Scheduler, runner eventloop.Runner, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{source: source, badge: badge, scheduler: scheduler, runner: runner, interval: interval, logger: logger}
}

// Start polls once right away and arms the interval.
func (p *Poller) Start() {
	if p.running {
		return
	}
	p.running = true
	p.tick()
}

// Stop cancels the next scheduled poll.
func (p *Poller) Stop() {
	p.running = false
	if p.next != nil {
		p.next.Stop()
		p.next = nil
	}
}

// PollNow checks immediately without disturbing the interval, e.g. after a
// pushed message.
func (p *Poller) PollNow() { p.poll() }

// Last is the most recently observed unread count.
func (p *Poller) Last() int { return p.last }

func (p *Poller) tick() {
	if !p.running {
		return
	}
	p.next = p.scheduler.AfterFunc(p.interval, p.tick)
	p.poll()
}

func (p *Poller) poll() {
	if p.inflight {
		return
	}
	p.inflight = true
	p.runner.Go(func(ctx context.Context) func() {
		n, err := p.source.UnreadCount(ctx)
		return func() {
			p.inflight = false
			if err != nil {
				observability.PollErrors.Inc()
				p.logger.Warn("poll.failed", "err", err)
				return
			}
			p.apply(n)
		}
	})
}

func (p *Poller) apply(n int) {
	p.last = n
	observability.UnreadCount.Set(float64(n))
	if text, ok := BadgeText(n); ok {
		p.badge.SetBadge(text)
		return
	}
	p.badge.ClearBadge()
}
