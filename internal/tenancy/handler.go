package tenancy

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/rbac"
	"github.com/lexora-legal/lexora/internal/shared"
)

// Handler exposes firm settings endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers firm routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermFirmsView))
		r.Get("/current", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermFirmsEdit))
		r.Put("/current", h.rename)
	})
}

type firmResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	firmID, ok := shared.FirmFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, h.logger, httpx.ErrForbidden)
		return
	}
	firm, err := h.service.GetFirm(r.Context(), firmID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toFirmResponse(firm))
}

type renameRequest struct {
	Name string `json:"name" validate:"required,min=2,max=160"`
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	firmID, ok := shared.FirmFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, h.logger, httpx.ErrForbidden)
		return
	}
	var req renameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	firm, err := h.service.Rename(r.Context(), firmID, req.Name)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toFirmResponse(firm))
}

func toFirmResponse(firm *Firm) firmResponse {
	return firmResponse{
		ID:        firm.ID.String(),
		Name:      firm.Name,
		CreatedAt: firm.CreatedAt.UTC().Format(time.RFC3339),
	}
}
