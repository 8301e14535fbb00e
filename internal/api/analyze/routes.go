package analyze

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers the completion proxy route
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/api/analyze-house", h.AnalyzeHouse)
}
