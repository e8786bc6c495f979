package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"feedback_reminder_service/internal/domain/identity"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type contextKey int

const participantKey contextKey = iota

// ParticipantFromContext returns the participant id resolved by RequireParticipant.
func ParticipantFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(participantKey).(int64)
	return id, ok
}

// RequireParticipant resolves the bearer credential and stores the participant id
// on the request context.
func RequireParticipant(verifier identity.Verifier, logger *logrus.Entry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
				return
			}

			participantID, err := verifier.Verify(r.Context(), strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
			if err != nil {
				logger.WithError(err).WithField("path", r.URL.Path).Warn("Rejected bearer credential")
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), participantKey, participantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request.
func RequestLogger(logger *logrus.Entry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.WithFields(logrus.Fields{
				"method":  r.Method,
				"path":    r.URL.Path,
				"status":  rec.status,
				"latency": time.Since(start),
			}).Info("http_request")
		})
	}
}
