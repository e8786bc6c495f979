package httpapi

import (
	"context"
	"net/http"
	"time"

	"feedback_reminder_service/internal/domain/identity"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter mounts the feedback routes under /api and the health check at /health.
func NewRouter(h *FeedbackHandler, verifier identity.Verifier, db Pinger, logger *logrus.Entry) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestLogger(logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.WithError(err).Warn("Health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/feedback").Subrouter()
	api.Use(RequireParticipant(verifier, logger))
	api.HandleFunc("/submit", h.Submit).Methods(http.MethodPost)
	api.HandleFunc("/reminder", h.Reminders).Methods(http.MethodGet)

	return router
}

// WithCORS wraps handler with the allowed origins.
func WithCORS(handler http.Handler, origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false, // bearer tokens, no cookies
		MaxAge:           int((12 * time.Hour).Seconds()),
	})
	return c.Handler(handler)
}
