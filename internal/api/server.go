package api

import (
	"net/http"
	"time"

	"github.com/futig/blueprint-backend/internal/api/analyze"
	"github.com/futig/blueprint-backend/internal/api/docs"
	"github.com/futig/blueprint-backend/internal/api/export"
	"github.com/futig/blueprint-backend/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// requestTimeout leaves room for a full non-streamed completion
const requestTimeout = 4 * time.Minute

// SetupRouter creates and configures the HTTP router
func SetupRouter(analyzeHandler *analyze.Handler, exportHandler *export.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	docs.RegisterRoutes(r)

	analyze.RegisterRoutes(r, analyzeHandler)
	export.RegisterRoutes(r, exportHandler)

	return r
}
