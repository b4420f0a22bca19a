// Package live keeps a websocket open to the matching service and forwards
// pushed events to the control thread.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/commit-swipe/internal/eventloop"
	"github.com/example/commit-swipe/internal/models"
	"github.com/example/commit-swipe/internal/observability"
)

const (
	EventNewMessage = "new_message"

	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

var ErrNoIdentity = errors.New("live: no user id")

// Handler runs on the control thread for every decoded event.
type Handler func(models.LiveEvent)

type Listener struct {
	endpoint string
	userID   func() string
	poster   eventloop.Poster
	handler  Handler
	dialer   *websocket.Dialer
	logger   *slog.Logger

	backoff    time.Duration
	maxBackoff time.Duration
}

// NewListener derives the socket URL from the service base URL:
// http://host -> ws://host/ws/{id}, https -> wss.
func NewListener(baseURL string, userID func() string, poster eventloop.Poster, handler Handler, logger *slog.Logger) (*Listener, error) {
	endpoint, err := socketBase(baseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		endpoint:   endpoint,
		userID:     userID,
		poster:     poster,
		handler:    handler,
		dialer:     websocket.DefaultDialer,
		logger:     logger,
		backoff:    initialBackoff,
		maxBackoff: maxBackoff,
	}, nil
}

func socketBase(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("live: parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("live: unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/"
	u.RawQuery = ""
	return u.String(), nil
}

// URL returns the socket address for the current identity.
func (l *Listener) URL() (string, error) {
	id := ""
	if l.userID != nil {
		id = l.userID()
	}
	if id == "" {
		return "", ErrNoIdentity
	}
	return l.endpoint + url.PathEscape(id), nil
}

// Run connects and reconnects with doubling backoff until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.backoff
	for {
		err := l.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrNoIdentity) {
			return err
		}
		if err == nil {
			backoff = l.backoff
		}
		l.logger.Warn("live.disconnected", "err", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > l.maxBackoff {
			backoff = l.maxBackoff
		}
	}
}

// session handles one connection. A clean server close returns nil.
func (l *Listener) session(ctx context.Context) error {
	addr, err := l.URL()
	if err != nil {
		return err
	}
	conn, _, err := l.dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("live: dial: %w", err)
	}
	defer conn.Close()
	l.logger.Info("live.connected", "url", addr)

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		var ev models.LiveEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("live: read: %w", err)
		}
		observability.LiveEventsTotal.WithLabelValues(ev.Type).Inc()
		if l.handler == nil {
			continue
		}
		if !l.poster.Post(func() { l.handler(ev) }) {
			return nil
		}
	}
}
