package geo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/commit-swipe/internal/eventloop"
	"github.com/example/commit-swipe/internal/models"
)

var (
	ErrDenied      = errors.New("location permission denied")
	ErrUnavailable = errors.New("location capability unavailable")
)

// DefaultFallback is used whenever the device location cannot be obtained.
var DefaultFallback = models.Coordinate{Lat: 40.7128, Lng: -74.0060}

// Provider obtains the device coordinate.
type Provider interface {
	Locate(ctx context.Context) (models.Coordinate, error)
}

// Locator performs a single best-effort lookup per session. Failure is never
// reported to the caller, it degrades to the fallback coordinate.
type Locator struct {
	provider Provider
	fallback models.Coordinate
	runner   eventloop.Runner
	logger   *slog.Logger

	requested bool
	current   *models.Coordinate
}

func NewLocator(p Provider, fallback models.Coordinate, runner eventloop.Runner, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{provider: p, fallback: fallback, runner: runner, logger: logger}
}

// Request starts the lookup. onResolved runs on the control thread with
// either the device coordinate or the fallback. Only the first call per
// Locator does anything; later calls return false.
func (l *Locator) Request(onResolved func(models.Coordinate)) bool {
	if l.requested {
		return false
	}
	l.requested = true

	if l.provider == nil {
		l.logger.Info("geo.fallback", "reason", ErrUnavailable.Error())
		l.resolve(l.fallback, onResolved)
		return true
	}

	l.runner.Go(func(ctx context.Context) func() {
		c, err := l.provider.Locate(ctx)
		return func() {
			if err != nil {
				l.logger.Info("geo.fallback", "reason", err.Error())
				c = l.fallback
			} else {
				l.logger.Info("geo.located", "lat", c.Lat, "lng", c.Lng)
			}
			l.resolve(c, onResolved)
		}
	})
	return true
}

func (l *Locator) resolve(c models.Coordinate, onResolved func(models.Coordinate)) {
	l.current = &c
	if onResolved != nil {
		onResolved(c)
	}
}

// Current returns the resolved coordinate, or nil before resolution.
func (l *Locator) Current() *models.Coordinate {
	if l.current == nil {
		return nil
	}
	c := *l.current
	return &c
}

// StaticProvider returns a fixed coordinate, e.g. one configured by the user.
type StaticProvider struct{ Coord models.Coordinate }

func (s StaticProvider) Locate(context.Context) (models.Coordinate, error) { return s.Coord, nil }

// DeniedProvider models a user who refused location access.
type DeniedProvider struct{}

func (DeniedProvider) Locate(context.Context) (models.Coordinate, error) {
	return models.Coordinate{}, ErrDenied
}
