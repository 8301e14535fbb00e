package export

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers the download route
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/api/export", h.Export)
}
