package matters

import (
	"github.com/go-chi/chi/v5"

	"github.com/lexora-legal/lexora/internal/shared"
)

// MountRoutes registers matter and case routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermMattersRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermMattersWrite))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermCasesRead))
		r.Get("/{id}/cases", h.listCases)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermCasesWrite))
		r.Post("/{id}/cases", h.fileCase)
	})
}
