package models

import "time"

// Coordinate is a pair of degrees. Profiles carry an offset from the
// viewer's coordinate rather than an absolute position.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Add returns c shifted by offset.
func (c Coordinate) Add(offset Coordinate) Coordinate {
	return Coordinate{Lat: c.Lat + offset.Lat, Lng: c.Lng + offset.Lng}
}

// Profile is immutable once fetched.
type Profile struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Role       string      `json:"role"`
	Bio        string      `json:"bio"`
	Stack      []string    `json:"stack"`
	Image      string      `json:"image"`
	MatchScore int         `json:"match_score"`
	Location   *Coordinate `json:"location,omitempty"`
	// Distance is only populated by the nearby endpoint (km, server computed).
	Distance *int `json:"distance,omitempty"`
}

// ActionType is the decision sent for a dismissed card.
type ActionType string

const (
	ActionLike ActionType = "like"
	ActionPass ActionType = "pass"
)

// ActionResult is the server's answer to a submitted action.
type ActionResult struct {
	Success bool `json:"success"`
	Match   bool `json:"match"`
}

// User is returned by register and login.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Message is one chat line as the server formats it.
type Message struct {
	Text      string `json:"text"`
	Sender    string `json:"sender"` // me | them
	Timestamp string `json:"timestamp"`
}

// FromMe reports whether the current user sent the message.
func (m Message) FromMe() bool { return m.Sender == "me" }

// ProfileUpdate carries the partial fields accepted by PUT /api/profile/me.
type ProfileUpdate struct {
	Name  *string  `json:"name,omitempty"`
	Role  *string  `json:"role,omitempty"`
	Bio   *string  `json:"bio,omitempty"`
	Stack []string `json:"stack,omitempty"`
	Image *string  `json:"image,omitempty"`
}

// LiveEvent is pushed by the server over the websocket.
type LiveEvent struct {
	Type      string `json:"type"`
	SenderID  int64  `json:"sender_id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Decision is the journaled outcome of one dismissal.
type Decision struct {
	ID        string     `json:"id" yaml:"id"`
	UserID    string     `json:"user_id" yaml:"user_id"`
	TargetID  int64      `json:"target_id" yaml:"target_id"`
	Action    ActionType `json:"action" yaml:"action"`
	Source    string     `json:"source" yaml:"source"` // gesture | button
	Match     bool       `json:"match" yaml:"match"`
	Submitted bool       `json:"submitted" yaml:"submitted"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
}
