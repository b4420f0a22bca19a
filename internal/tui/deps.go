package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/commit-swipe/internal/deck"
	"github.com/example/commit-swipe/internal/geo"
	"github.com/example/commit-swipe/internal/models"
	"github.com/example/commit-swipe/internal/storage"
)

// Remote is the slice of the matching service the interactive client uses.
// *remote.Client satisfies it.
type Remote interface {
	UserID(ctx context.Context) string
	Profiles(ctx context.Context) ([]models.Profile, error)
	Profile(ctx context.Context, id int64) (*models.Profile, error)
	MyProfile(ctx context.Context) (*models.Profile, error)
	SubmitAction(ctx context.Context, targetID int64, action models.ActionType) (models.ActionResult, error)
	Matches(ctx context.Context) ([]models.Profile, error)
	Messages(ctx context.Context, matchID int64) ([]models.Message, error)
	SendMessage(ctx context.Context, matchID int64, text string) error
	UnreadCount(ctx context.Context) (int, error)
	Nearby(ctx context.Context, lat, lng float64) ([]models.Profile, error)
	LikesReceived(ctx context.Context) ([]models.Profile, error)
	LikesSent(ctx context.Context) ([]models.Profile, error)
}

type Deps struct {
	Remote   Remote
	Locate   geo.Provider // nil means location is unavailable
	Fallback models.Coordinate
	Journal  deck.Journal

	// LiveBaseURL enables the websocket listener when set.
	LiveBaseURL string
	// StatusAddr enables the local status server when set.
	StatusAddr string
	Decisions  storage.DecisionStore

	PollInterval  time.Duration
	SettleDelay   time.Duration
	ViewportWidth float64
	PixelsPerCell float64

	Logger *slog.Logger
}
