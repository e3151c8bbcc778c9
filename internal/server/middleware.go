package server

import (
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	applog "github.com/phyten/sigloc/internal/log"
)

const HeaderRequestID = "X-Request-ID"

var requestIDRe = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush は SSE のために下位の Flusher を呼びます。
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// withRequestID は X-Request-ID を引き継ぐか新しい UUID を割り当て、
// リクエスト ID 付きのロガーを context に載せます。
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if !requestIDRe.MatchString(id) {
			id = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, id)
		logger := applog.WithRequestID(s.log, id)
		r = r.WithContext(applog.NewContext(r.Context(), logger))

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, applog.DurationKey, time.Since(start).Milliseconds())
	})
}
