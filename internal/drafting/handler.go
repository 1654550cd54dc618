package drafting

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/rbac"
	"github.com/lexora-legal/lexora/internal/shared"
)

// Handler wires drafting endpoints.
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

type requestDraftRequest struct {
	Prompt   string  `json:"prompt" validate:"required,max=8000"`
	MatterID *string `json:"matterId" validate:"omitempty,uuid"`
}

type draftResponse struct {
	ID          string  `json:"id"`
	MatterID    *string `json:"matterId,omitempty"`
	RequestedBy int64   `json:"requestedBy"`
	Prompt      string  `json:"prompt"`
	Result      string  `json:"result,omitempty"`
	Status      string  `json:"status"`
	FailReason  string  `json:"failReason,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	CompletedAt *string `json:"completedAt,omitempty"`
}

func toDraftResponse(d *DraftRequest) draftResponse {
	resp := draftResponse{
		ID:          d.ID.String(),
		RequestedBy: d.RequestedBy,
		Prompt:      d.Prompt,
		Result:      d.Result,
		Status:      string(d.Status),
		FailReason:  d.FailReason,
		CreatedAt:   d.CreatedAt.UTC().Format(time.RFC3339),
	}
	if d.MatterID != nil {
		id := d.MatterID.String()
		resp.MatterID = &id
	}
	if d.CompletedAt != nil {
		done := d.CompletedAt.UTC().Format(time.RFC3339)
		resp.CompletedAt = &done
	}
	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	firmID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	drafts, err := h.service.List(r.Context(), firmID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	out := make([]draftResponse, 0, len(drafts))
	for i := range drafts {
		out = append(out, toDraftResponse(&drafts[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"drafts": out})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	firmID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "id", Message: "must be a uuid"}}})
		return
	}
	draft, err := h.service.Get(r.Context(), firmID, id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDraftResponse(draft))
}

func (h *Handler) request(w http.ResponseWriter, r *http.Request) {
	firmID, principal, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req requestDraftRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var matterID *uuid.UUID
	if req.MatterID != nil {
		parsed, _ := uuid.Parse(*req.MatterID)
		matterID = &parsed
	}
	draft, err := h.service.Request(r.Context(), firmID, matterID, principal.ID, req.Prompt)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, toDraftResponse(draft))
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (uuid.UUID, *shared.Principal, bool) {
	firmID, ok := shared.FirmFromContext(r.Context())
	principal := shared.PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		httpx.RespondError(w, h.logger, httpx.ErrForbidden)
		return uuid.Nil, nil, false
	}
	return firmID, principal, true
}

// MountRoutes registers drafting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermDraftsUse))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
		r.Post("/", h.request)
	})
}
