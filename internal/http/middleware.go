package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/commit-swipe/internal/observability"
)

// instrument is the only middleware on the status server. It echoes or
// assigns X-Request-ID, turns a handler panic into a 500 and records the
// route metrics. The debug line carries the deck position at request time
// so a status poll can be lined up with the TUI log.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = newID()
		}
		w.Header().Set("X-Request-ID", reqID)
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			route := routeTemplate(r)
			if p := recover(); p != nil {
				s.logger.Error("status.panic", "route", route, "request_id", reqID, "panic", p)
				if !sw.wrote {
					http.Error(sw, "internal error", http.StatusInternalServerError)
				}
			}
			code := strconv.Itoa(sw.status)
			observability.HTTPRequestsTotal.WithLabelValues(r.Method, route, code).Inc()
			observability.HTTPRequestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())

			attrs := []any{"method", r.Method, "route", route, "status", sw.status, "request_id", reqID}
			if s.Deck != nil {
				st := s.Deck.Snapshot()
				attrs = append(attrs, "deck_index", st.Index, "deck_terminal", st.Terminal)
			}
			s.logger.Debug("status.request", attrs...)
		}()
		next.ServeHTTP(sw, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wrote {
		return
	}
	w.status, w.wrote = code, true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

// routeTemplate keeps metric labels bounded to registered routes.
func routeTemplate(r *http.Request) string {
	if current := mux.CurrentRoute(r); current != nil {
		if tmpl, err := current.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
