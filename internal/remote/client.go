package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/commit-swipe/internal/identity"
	"github.com/example/commit-swipe/internal/observability"
)

// HeaderUserID carries the stored user id on every request.
const HeaderUserID = "X-User-Id"

// Client talks to the matching service. Every method logs its own failures
// and returns a safe default alongside the error, so callers may ignore the
// error when degraded behavior is acceptable.
type Client struct {
	base     string
	http     *http.Client
	identity identity.Store
	logger   *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

func New(baseURL string, store identity.Store, opts ...Option) *Client {
	c := &Client{
		base:     strings.TrimRight(baseURL, "/"),
		http:     NewHTTPClient(DefaultTransportConfig()),
		identity: store,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserID returns the stored identity, "" when signed out.
func (c *Client) UserID(ctx context.Context) string {
	if c.identity == nil {
		return ""
	}
	id, err := c.identity.Get(ctx)
	if err != nil {
		c.logger.Warn("identity.read.failed", "err", err)
		return ""
	}
	return id
}

type request struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// do executes r and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	body := r.body
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.base+r.path, body)
	if err != nil {
		return &Error{Op: r.op, Err: err}
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if id := c.UserID(ctx); id != "" {
		req.Header.Set(HeaderUserID, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	status := "error"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	observability.OutboundRequestsTotal.WithLabelValues(r.method, r.op, status).Inc()
	observability.OutboundRequestDuration.WithLabelValues(r.method, r.op, status).Observe(time.Since(start).Seconds())
	if err != nil {
		return &Error{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: r.op, Status: resp.StatusCode, Detail: readDetail(resp.Body), Err: statusErr(resp.StatusCode)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: r.op, Status: resp.StatusCode, Err: err}
	}
	return nil
}

// readDetail extracts {"detail": "..."} from an error body.
func readDetail(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(b) == 0 {
		return ""
	}
	var doc struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(b, &doc) == nil && doc.Detail != nil {
		if s, ok := doc.Detail.(string); ok {
			return s
		}
		d, _ := json.Marshal(doc.Detail)
		return string(d)
	}
	return strings.TrimSpace(string(b))
}

// fail logs a failed call. It returns err so call sites stay one line.
func (c *Client) fail(op string, err error) error {
	c.logger.Warn("remote.failed", "op", op, "err", err)
	return err
}
