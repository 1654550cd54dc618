package approvals

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

// Handler wires approval endpoints.
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

type submitRequest struct {
	Module   string  `json:"module" validate:"required"`
	RefID    string  `json:"refId" validate:"required,uuid"`
	MatterID *string `json:"matterId" validate:"omitempty,uuid"`
	Note     string  `json:"note" validate:"max=2000"`
}

type decideRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note" validate:"max=2000"`
}

type approvalResponse struct {
	ID          string  `json:"id"`
	Module      string  `json:"module"`
	RefID       string  `json:"refId"`
	MatterID    *string `json:"matterId,omitempty"`
	RequestedBy int64   `json:"requestedBy"`
	DecidedBy   *int64  `json:"decidedBy,omitempty"`
	Status      string  `json:"status"`
	Note        string  `json:"note,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	DecidedAt   *string `json:"decidedAt,omitempty"`
}

func toApprovalResponse(a *Approval) approvalResponse {
	resp := approvalResponse{
		ID:          a.ID.String(),
		Module:      a.Module,
		RefID:       a.RefID.String(),
		RequestedBy: a.RequestedBy,
		DecidedBy:   a.DecidedBy,
		Status:      string(a.Status),
		Note:        a.Note,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.MatterID != nil {
		id := a.MatterID.String()
		resp.MatterID = &id
	}
	if a.DecidedAt != nil {
		decided := a.DecidedAt.UTC().Format(time.RFC3339)
		resp.DecidedAt = &decided
	}
	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	firmID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	var status *ApprovalStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := ApprovalStatus(raw)
		status = &parsed
	}
	approvals, err := h.service.List(r.Context(), firmID, status)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	out := make([]approvalResponse, 0, len(approvals))
	for i := range approvals {
		out = append(out, toApprovalResponse(&approvals[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"approvals": out})
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
	approval, err := h.service.Get(r.Context(), firmID, id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toApprovalResponse(approval))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	firmID, principal, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	refID, _ := uuid.Parse(req.RefID)
	var matterID *uuid.UUID
	if req.MatterID != nil {
		parsed, _ := uuid.Parse(*req.MatterID)
		matterID = &parsed
	}
	approval, err := h.service.Submit(r.Context(), firmID, req.Module, refID, matterID, principal.ID, req.Note)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toApprovalResponse(approval))
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	firmID, principal, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "id", Message: "must be a uuid"}}})
		return
	}
	var req decideRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	approval, err := h.service.Decide(r.Context(), firmID, id, principal.ID, req.Approve, req.Note)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toApprovalResponse(approval))
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
