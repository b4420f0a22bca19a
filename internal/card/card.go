package card

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/example/commit-swipe/internal/geo"
	"github.com/example/commit-swipe/internal/gesture"
	"github.com/example/commit-swipe/internal/models"
)

// Tier is the color band of the match-score badge.
type Tier string

const (
	TierHigh    Tier = "high"
	TierMedium  Tier = "medium"
	TierNeutral Tier = "neutral"
)

// ScoreTier buckets a server-assigned match score. 80 and 50 are the
// inclusive lower bounds of the high and medium tiers.
func ScoreTier(score int) Tier {
	switch {
	case score >= 80:
		return TierHigh
	case score >= 50:
		return TierMedium
	default:
		return TierNeutral
	}
}

// Indicator is an overlay stamp. It is never interactive.
type Indicator struct {
	Label   string
	Opacity float64
}

// Card is the visual node built for one profile.
type Card struct {
	ProfileID  int64
	Name       string
	Role       string
	Bio        string
	Tags       []string
	Image      string
	Score      int
	Tier       Tier
	DistanceKm *int

	Positive Indicator
	Negative Indicator

	Offset      gesture.Transform
	Interactive bool
	Peek        bool
}

// Build renders a profile. The distance label is present only when both the
// viewer coordinate and the profile offset are known; the profile sits at
// viewer+offset.
func Build(p models.Profile, viewer *models.Coordinate) *Card {
	c := &Card{
		ProfileID: p.ID,
		Name:      p.Name,
		Role:      p.Role,
		Bio:       p.Bio,
		Tags:      append([]string(nil), p.Stack...),
		Image:     p.Image,
		Score:     p.MatchScore,
		Tier:      ScoreTier(p.MatchScore),
		Positive:  Indicator{Label: "MERGE"},
		Negative:  Indicator{Label: "CLOSE"},
	}
	if viewer != nil && p.Location != nil {
		at := viewer.Add(*p.Location)
		if d, ok := geo.DistanceKm(viewer, &at); ok {
			c.DistanceKm = &d
		}
	}
	return c
}

// DistanceLabel is "N km away", or empty when unknown.
func (c *Card) DistanceLabel() string {
	if c.DistanceKm == nil {
		return ""
	}
	return fmt.Sprintf("%d km away", *c.DistanceKm)
}

func (c *Card) ScoreLabel() string { return fmt.Sprintf("%d%% Match", c.Score) }

// FirstName is used by the match notification.
func (c *Card) FirstName() string { return FirstName(c.Name) }

func FirstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return name
}

// Transform and Indicators make a Card a gesture.Surface.
func (c *Card) Transform(t gesture.Transform) { c.Offset = t }

func (c *Card) Indicators(positive, negative float64) {
	c.Positive.Opacity = positive
	c.Negative.Opacity = negative
}

// AvatarURL returns image, or a generated avatar for name when image is empty.
func AvatarURL(name, image string) string {
	if image != "" {
		return image
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name)
}
