package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKey string

const ctxRequestID ctxKey = "request_id"

// RequestID tags every request with a uuid, exposed via context and the
// X-Request-ID response header (an inbound header wins so ids survive proxies).
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), ctxRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the request id from context, empty if absent.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxRequestID).(string); ok {
		return v
	}
	return ""
}

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Logging writes one structured access-log line per request.
func Logging(log *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		log.WithFields(logrus.Fields{
			"request_id": RequestIDFrom(r),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sr.status,
			"duration":   time.Since(start).String(),
			"remote":     r.RemoteAddr,
		}).Info("request")
	})
}

// Recover turns handler panics into 500s instead of dropped connections.
func Recover(log *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithField("request_id", RequestIDFrom(r)).Errorf("panic: %v", rec)
				w.WriteHeader(http.StatusInternalServerError)
				if _, werr := w.Write([]byte("server error")); werr != nil {
					_ = werr
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}
