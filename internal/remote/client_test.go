package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/commit-swipe/internal/identity"
	"github.com/example/commit-swipe/internal/models"
)

type fakeServer struct {
	*httptest.Server
	lastUserID string
	lastAction map[string]any
	unread     int
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			fs.lastUserID = req.Header.Get(HeaderUserID)
			next.ServeHTTP(w, req)
		})
	})
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	r.HandleFunc("/api/login", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body["password"] != "secret" {
			writeJSON(w, 400, map[string]string{"detail": "Invalid credentials"})
			return
		}
		writeJSON(w, 200, map[string]any{"id": 7, "name": "Ada"})
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/profiles", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, 200, []map[string]any{
			{"id": 1, "name": "Grace Hopper", "stack": []string{"COBOL"}, "location_lat": 0.01, "location_lng": -0.02, "match_score": 91},
			{"id": 2, "name": "Linus"},
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/profiles/{id}", func(w http.ResponseWriter, req *http.Request) {
		if mux.Vars(req)["id"] != "1" {
			writeJSON(w, 404, map[string]string{"detail": "User not found"})
			return
		}
		writeJSON(w, 200, map[string]any{"id": 1, "name": "Grace Hopper"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/action", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewDecoder(req.Body).Decode(&fs.lastAction)
		writeJSON(w, 200, map[string]any{"success": true, "match": fs.lastAction["action_type"] == "like"})
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/notifications", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, 200, map[string]int{"unread_count": fs.unread})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/messages/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, 200, []map[string]string{{"text": "hi", "sender": "them", "timestamp": "2024-01-01T00:00:00"}})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/nearby", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if q.Get("lat") == "" || q.Get("lng") == "" {
			writeJSON(w, 422, map[string]string{"detail": "missing coordinates"})
			return
		}
		writeJSON(w, 200, []map[string]any{{"id": 3, "name": "Ken", "distance": 4}})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/upload", func(w http.ResponseWriter, req *http.Request) {
		f, hdr, err := req.FormFile("file")
		if err != nil {
			writeJSON(w, 400, map[string]string{"detail": err.Error()})
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		if string(b) != "png-bytes" {
			writeJSON(w, 400, map[string]string{"detail": "bad content"})
			return
		}
		writeJSON(w, 200, map[string]string{"url": "/static/uploads/" + hdr.Filename})
	}).Methods(http.MethodPost)
	fs.Server = httptest.NewServer(r)
	t.Cleanup(fs.Close)
	return fs
}

func newTestClient(fs *fakeServer, store identity.Store) *Client {
	return New(fs.URL, store, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestLoginStoresIdentityAndSendsHeader(t *testing.T) {
	fs := newFakeServer(t)
	store := identity.NewMemoryStore("")
	c := newTestClient(fs, store)
	ctx := context.Background()

	u, err := c.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "7", c.UserID(ctx))

	_, err = c.Profiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, "7", fs.lastUserID)

	require.NoError(t, c.Logout(ctx))
	assert.Equal(t, "", c.UserID(ctx))
	_, _ = c.Profiles(ctx)
	assert.Equal(t, "", fs.lastUserID)
}

func TestLoginFailureReturnsNilUser(t *testing.T) {
	fs := newFakeServer(t)
	store := identity.NewMemoryStore("")
	c := newTestClient(fs, store)

	u, err := c.Login(context.Background(), "ada@example.com", "wrong")
	assert.Nil(t, u)
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 400, rerr.Status)
	assert.Equal(t, "Invalid credentials", rerr.Detail)
	assert.Equal(t, "", c.UserID(context.Background()))
}

func TestProfilesNormalizesLocation(t *testing.T) {
	fs := newFakeServer(t)
	c := newTestClient(fs, identity.NewMemoryStore("7"))

	ps, err := c.Profiles(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)
	require.NotNil(t, ps[0].Location)
	assert.InDelta(t, 0.01, ps[0].Location.Lat, 1e-9)
	assert.InDelta(t, -0.02, ps[0].Location.Lng, 1e-9)
	assert.Nil(t, ps[1].Location)
	assert.Equal(t, []string{}, ps[1].Stack)
}

func TestProfileNotFound(t *testing.T) {
	fs := newFakeServer(t)
	c := newTestClient(fs, identity.NewMemoryStore("7"))

	p, err := c.Profile(context.Background(), 99)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrNotFound)

	p, err = c.Profile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", p.Name)
}

func TestSubmitAction(t *testing.T) {
	fs := newFakeServer(t)
	c := newTestClient(fs, identity.NewMemoryStore("7"))

	res, err := c.SubmitAction(context.Background(), 12, models.ActionLike)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Match)
	assert.Equal(t, float64(12), fs.lastAction["target_id"])
	assert.Equal(t, "like", fs.lastAction["action_type"])

	res, err = c.SubmitAction(context.Background(), 13, models.ActionPass)
	require.NoError(t, err)
	assert.False(t, res.Match)
}

func TestUnreachableServiceReturnsSafeDefaults(t *testing.T) {
	fs := newFakeServer(t)
	url := fs.URL
	fs.Close()
	c := New(url, identity.NewMemoryStore("7"), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := context.Background()

	n, err := c.UnreadCount(ctx)
	assert.Error(t, err)
	assert.Equal(t, 0, n)

	ps, err := c.Profiles(ctx)
	assert.Error(t, err)
	assert.NotNil(t, ps)
	assert.Empty(t, ps)

	msgs, err := c.Messages(ctx, 1)
	assert.Error(t, err)
	assert.NotNil(t, msgs)

	res, err := c.SubmitAction(ctx, 1, models.ActionLike)
	assert.Error(t, err)
	assert.Equal(t, models.ActionResult{}, res)
}

func TestUnreadMessagesAndNearby(t *testing.T) {
	fs := newFakeServer(t)
	fs.unread = 12
	c := newTestClient(fs, identity.NewMemoryStore("7"))
	ctx := context.Background()

	n, err := c.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	msgs, err := c.Messages(ctx, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].FromMe())

	near, err := c.Nearby(ctx, 40.7128, -74.006)
	require.NoError(t, err)
	require.Len(t, near, 1)
	require.NotNil(t, near[0].Distance)
	assert.Equal(t, 4, *near[0].Distance)
}

func TestUploadImage(t *testing.T) {
	fs := newFakeServer(t)
	c := newTestClient(fs, identity.NewMemoryStore("7"))

	url, err := c.UploadImage(context.Background(), "me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/static/uploads/me.png", url)
}

func TestErrorString(t *testing.T) {
	err := &Error{Op: "profiles", Status: 500, Detail: "boom", Err: ErrStatus}
	assert.Equal(t, "remote.profiles (status=500): boom: unexpected status", err.Error())
	assert.ErrorIs(t, err, ErrStatus)
}
