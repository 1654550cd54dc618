package documents

import (
	"github.com/go-chi/chi/v5"

	"github.com/lexora-legal/lexora/internal/shared"
)

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermDocumentsRead))
		r.Get("/", h.list)
		r.Get("/{id}/content", h.download)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermDocumentsWrite))
		r.Post("/", h.upload)
		r.Delete("/{id}", h.remove)
	})
}
