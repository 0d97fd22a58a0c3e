package httpserver

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"award_cpp/internal/adapters/observability"
	"award_cpp/internal/domain"
)

const timeoutBody = `{"type":"about:blank","title":"Timeout","status":503,"detail":"search took too long"}`

// Timeout answers 503 with a problem body once d elapses.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, d, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			th.ServeHTTP(&problemOn503{ResponseWriter: w}, r)
		})
	}
}

// problemOn503 labels the TimeoutHandler body, which is written without a content type.
type problemOn503 struct{ http.ResponseWriter }

func (w *problemOn503) WriteHeader(code int) {
	if code == http.StatusServiceUnavailable && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/problem+json")
	}
	w.ResponseWriter.WriteHeader(code)
}

// searchTags carries what a search handler learned back out to the access log.
// Handlers may still be running after a timeout, hence the lock.
type searchTags struct {
	mu          sync.Mutex
	set         bool
	id          int64
	origin      string
	destination string
	date        string
	flights     int
}

type tagsKey struct{}

func tagSearch(ctx context.Context, id int64, rep domain.Report) {
	t, ok := ctx.Value(tagsKey{}).(*searchTags)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.set = true
	t.id = id
	t.origin = rep.SearchMetadata.Origin
	t.destination = rep.SearchMetadata.Destination
	t.date = rep.SearchMetadata.Date
	t.flights = rep.TotalResults
}

func (t *searchTags) apply(ev *zerolog.Event) *zerolog.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.set {
		return ev
	}
	if t.id > 0 {
		ev = ev.Int64("search_id", t.id)
	}
	return ev.
		Str("origin", t.origin).
		Str("destination", t.destination).
		Str("date", t.date).
		Int("flights", t.flights)
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Observe records request metrics and writes one access log line per request. Search
// handlers add the route, date and result count through tagSearch.
func Observe(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			tags := &searchTags{}
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), tagsKey{}, tags)))
			dur := time.Since(start)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := sw.Status()
			observability.ObserveHTTP(route, r.Method, status, dur)

			ev := l.Info()
			if status >= http.StatusInternalServerError {
				ev = l.Warn()
			}
			tags.apply(ev).
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("route", route).
				Str("method", r.Method).
				Int("status", status).
				Int("bytes", sw.bytes).
				Dur("duration", dur).
				Str("remote", clientHost(r)).
				Msg("http_request")
		})
	}
}

// clientHost strips the port; RealIP has already folded in X-Forwarded-For.
func clientHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
