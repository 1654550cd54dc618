package billing

import (
	"github.com/go-chi/chi/v5"

	"github.com/lexora-legal/lexora/internal/shared"
)

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermBillingView))
		r.Get("/matters/{matterId}/entries", h.listEntries)
		r.Get("/matters/{matterId}/invoice-draft", h.invoiceDraft)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermBillingEdit))
		r.Post("/matters/{matterId}/entries", h.recordTime)
		r.Delete("/entries/{id}", h.removeEntry)
	})
}
