// Package httpapi exposes profile operations over a JSON HTTP API.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/service"
	"github.com/sells-group/company-profiler/internal/store"
)

// ProfileService is the surface the handlers need from the orchestrator.
type ProfileService interface {
	Analyze(ctx context.Context, url string) (*service.AnalyzeResult, error)
	Get(ctx context.Context, id string) (*store.Record, error)
	List(ctx context.Context, limit int) ([]store.Record, error)
	Update(ctx context.Context, id, url string, rawProfile any) (*store.Record, error)
}

// listLimit caps the history endpoint.
const listLimit = 50

// NewRouter builds the API router.
func NewRouter(svc ProfileService) http.Handler {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(requestLogger)

	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", h.analyze)
		r.Get("/profiles", h.listProfiles)
		r.Get("/profiles/{id}", h.getProfile)
		r.Put("/profiles/{id}", h.updateProfile)
	})

	return r
}

// requestLogger logs method, path, and latency for every request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
