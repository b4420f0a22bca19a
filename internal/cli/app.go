package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/example/commit-swipe/internal/config"
	"github.com/example/commit-swipe/internal/geo"
	"github.com/example/commit-swipe/internal/identity"
	"github.com/example/commit-swipe/internal/journal"
	"github.com/example/commit-swipe/internal/logging"
	"github.com/example/commit-swipe/internal/models"
	"github.com/example/commit-swipe/internal/remote"
	"github.com/example/commit-swipe/internal/storage"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg       config.ClientConfig
	log       *slog.Logger
	identity  identity.Store
	client    *remote.Client
	decisions storage.DecisionStore
	journal   *journal.Multi

	closers []io.Closer
}

type setupOptions struct {
	configPath string
	logLevel   string
	// logToFile keeps stdout free for the TUI.
	logToFile bool
	stderr    io.Writer
}

func setup(ctx context.Context, opts setupOptions) (*app, error) {
	cfg, err := config.LoadClientConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	a := &app{cfg: cfg}
	var logOut io.Writer = opts.stderr
	if logOut == nil {
		logOut = os.Stderr
	}
	if opts.logToFile {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, f)
		logOut = f
	}
	a.log = logging.NewLogger(cfg.LogLevel, logOut)

	// identity: redis if configured, else a local file
	if cfg.RedisAddr != "" {
		rs := identity.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisIdentityKey)
		a.identity = rs
		a.closers = append(a.closers, rs)
	} else {
		a.identity = identity.NewFileStore(cfg.IdentityFile)
	}

	tc := remote.DefaultTransportConfig()
	tc.Timeout = cfg.APITimeout
	a.client = remote.New(cfg.APIBaseURL, a.identity,
		remote.WithHTTPClient(remote.NewHTTPClient(tc)),
		remote.WithLogger(a.log),
	)

	// decision log: postgres if configured and reachable, else in-memory
	if cfg.PGDSN != "" {
		ps, err := storage.NewPostgresStore(ctx, cfg.PGDSN)
		if err != nil {
			a.log.Warn("decisions.postgres.unavailable", "err", err)
		} else {
			a.decisions = ps
		}
	}
	if a.decisions == nil {
		a.decisions = storage.NewMemoryStore()
	}
	a.closers = append(a.closers, a.decisions)

	a.journal = journal.NewMulti(a.log).Add("decisions", a.decisions)
	if len(cfg.KafkaBrokers) > 0 {
		kp := journal.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		a.journal.Add("kafka", kp)
		a.closers = append(a.closers, kp)
	}
	return a, nil
}

// locateProvider maps the location settings to a provider. A disabled
// location behaves like a denied permission prompt.
func (a *app) locateProvider() geo.Provider {
	switch {
	case !a.cfg.LocationEnabled:
		return geo.DeniedProvider{}
	case a.cfg.LocationLat != nil && a.cfg.LocationLng != nil:
		return geo.StaticProvider{Coord: models.Coordinate{Lat: *a.cfg.LocationLat, Lng: *a.cfg.LocationLng}}
	case a.cfg.LocateURL != "":
		return geo.NewIPProvider(a.cfg.LocateURL)
	default:
		return nil
	}
}

func (a *app) fallback() models.Coordinate {
	return models.Coordinate{Lat: a.cfg.FallbackLat, Lng: a.cfg.FallbackLng}
}

func (a *app) userID() string { return a.client.UserID(context.Background()) }

func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
