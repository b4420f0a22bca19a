package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/example/commit-swipe/internal/models"
)

// Register creates an account and stores its id as the current identity.
func (c *Client) Register(ctx context.Context, name, email, password, role string) (*models.User, error) {
	body, err := jsonBody(map[string]string{"name": name, "email": email, "password": password, "role": role})
	if err != nil {
		return nil, c.fail("register", err)
	}
	var u models.User
	if err := c.do(ctx, request{op: "register", method: http.MethodPost, path: "/api/register", body: body, contentType: "application/json"}, &u); err != nil {
		return nil, c.fail("register", err)
	}
	return &u, c.remember(ctx, u)
}

// Login stores the returned id as the current identity.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	body, err := jsonBody(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, c.fail("login", err)
	}
	var u models.User
	if err := c.do(ctx, request{op: "login", method: http.MethodPost, path: "/api/login", body: body, contentType: "application/json"}, &u); err != nil {
		return nil, c.fail("login", err)
	}
	return &u, c.remember(ctx, u)
}

// Logout forgets the stored identity.
func (c *Client) Logout(ctx context.Context) error {
	if c.identity == nil {
		return nil
	}
	if err := c.identity.Clear(ctx); err != nil {
		return c.fail("logout", err)
	}
	return nil
}

func (c *Client) remember(ctx context.Context, u models.User) error {
	if c.identity == nil {
		return nil
	}
	if err := c.identity.Set(ctx, strconv.FormatInt(u.ID, 10)); err != nil {
		return c.fail("identity.store", err)
	}
	return nil
}

// Profiles lists candidate profiles for the deck.
func (c *Client) Profiles(ctx context.Context) ([]models.Profile, error) {
	return c.profileList(ctx, "profiles", "/api/profiles")
}

// Profile fetches one profile, nil when it does not exist.
func (c *Client) Profile(ctx context.Context, id int64) (*models.Profile, error) {
	return c.profile(ctx, "profile", fmt.Sprintf("/api/profiles/%d", id))
}

func (c *Client) MyProfile(ctx context.Context) (*models.Profile, error) {
	return c.profile(ctx, "profile.me", "/api/profile/me")
}

func (c *Client) UpdateProfile(ctx context.Context, u models.ProfileUpdate) (*models.Profile, error) {
	body, err := jsonBody(u)
	if err != nil {
		return nil, c.fail("profile.update", err)
	}
	var p models.APIProfile
	if err := c.do(ctx, request{op: "profile.update", method: http.MethodPut, path: "/api/profile/me", body: body, contentType: "application/json"}, &p); err != nil {
		return nil, c.fail("profile.update", err)
	}
	out := p.Normalize()
	return &out, nil
}

// SubmitAction records a like or pass. The zero ActionResult is returned on failure.
func (c *Client) SubmitAction(ctx context.Context, targetID int64, action models.ActionType) (models.ActionResult, error) {
	body, err := jsonBody(map[string]any{"target_id": targetID, "action_type": action})
	if err != nil {
		return models.ActionResult{}, c.fail("action", err)
	}
	var res models.ActionResult
	if err := c.do(ctx, request{op: "action", method: http.MethodPost, path: "/api/action", body: body, contentType: "application/json"}, &res); err != nil {
		return models.ActionResult{}, c.fail("action", err)
	}
	return res, nil
}

// Matches lists the profiles of mutual matches.
func (c *Client) Matches(ctx context.Context) ([]models.Profile, error) {
	return c.profileList(ctx, "matches", "/api/matches")
}

// SendMessage posts text to the chat with the matched user. matchID is the
// partner's profile id.
func (c *Client) SendMessage(ctx context.Context, matchID int64, text string) error {
	body, err := jsonBody(map[string]any{"match_id": matchID, "text": text})
	if err != nil {
		return c.fail("messages.send", err)
	}
	if err := c.do(ctx, request{op: "messages.send", method: http.MethodPost, path: "/api/messages", body: body, contentType: "application/json"}, nil); err != nil {
		return c.fail("messages.send", err)
	}
	return nil
}

// Messages returns the chat with the matched user, oldest first.
func (c *Client) Messages(ctx context.Context, matchID int64) ([]models.Message, error) {
	out := []models.Message{}
	if err := c.do(ctx, request{op: "messages", method: http.MethodGet, path: fmt.Sprintf("/api/messages/%d", matchID)}, &out); err != nil {
		return []models.Message{}, c.fail("messages", err)
	}
	if out == nil {
		out = []models.Message{}
	}
	return out, nil
}

// UploadImage sends a multipart file and returns its public URL, "" on failure.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", c.fail("upload", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", c.fail("upload", err)
	}
	if err := mw.Close(); err != nil {
		return "", c.fail("upload", err)
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, request{op: "upload", method: http.MethodPost, path: "/api/upload", body: &buf, contentType: mw.FormDataContentType()}, &out); err != nil {
		return "", c.fail("upload", err)
	}
	return out.URL, nil
}

// UnreadCount returns 0 on any failure.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		UnreadCount int `json:"unread_count"`
	}
	if err := c.do(ctx, request{op: "notifications", method: http.MethodGet, path: "/api/notifications"}, &out); err != nil {
		return 0, c.fail("notifications", err)
	}
	return out.UnreadCount, nil
}

// Nearby lists profiles sorted by server-computed distance from (lat, lng).
func (c *Client) Nearby(ctx context.Context, lat, lng float64) ([]models.Profile, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	return c.profileList(ctx, "nearby", "/api/nearby?"+q.Encode())
}

// LikesReceived lists the users who liked the current user.
func (c *Client) LikesReceived(ctx context.Context) ([]models.Profile, error) {
	return c.profileList(ctx, "likes.received", "/api/likes/received")
}

// LikesSent lists the users the current user liked.
func (c *Client) LikesSent(ctx context.Context) ([]models.Profile, error) {
	return c.profileList(ctx, "likes.sent", "/api/likes/sent")
}

func (c *Client) profileList(ctx context.Context, op, path string) ([]models.Profile, error) {
	var raw []models.APIProfile
	if err := c.do(ctx, request{op: op, method: http.MethodGet, path: path}, &raw); err != nil {
		return []models.Profile{}, c.fail(op, err)
	}
	return models.NormalizeAll(raw), nil
}

func (c *Client) profile(ctx context.Context, op, path string) (*models.Profile, error) {
	var raw models.APIProfile
	if err := c.do(ctx, request{op: op, method: http.MethodGet, path: path}, &raw); err != nil {
		return nil, c.fail(op, err)
	}
	p := raw.Normalize()
	return &p, nil
}
