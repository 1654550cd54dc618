package approvals

import (
	"github.com/go-chi/chi/v5"

	"github.com/lexora-legal/lexora/internal/shared"
)

// MountRoutes registers approval routes. Submitting a request only needs
// view rights; deciding one is a separate permission.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermApprovalsView))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
		r.Post("/", h.submit)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermApprovalsDecide))
		r.Post("/{id}/decide", h.decide)
	})
}
