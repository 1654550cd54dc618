package billing

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

// Handler wires billing endpoints.
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

type recordTimeRequest struct {
	Description string `json:"description" validate:"required,max=500"`
	Minutes     int    `json:"minutes" validate:"required,gt=0"`
	RateCents   int64  `json:"rateCents" validate:"gte=0"`
	EntryDate   string `json:"entryDate" validate:"required,datetime=2006-01-02"`
}

type entryResponse struct {
	ID          string `json:"id"`
	MatterID    string `json:"matterId"`
	UserID      int64  `json:"userId"`
	Description string `json:"description"`
	Minutes     int    `json:"minutes"`
	RateCents   int64  `json:"rateCents"`
	AmountCents int64  `json:"amountCents"`
	EntryDate   string `json:"entryDate"`
	CreatedAt   string `json:"createdAt"`
}

func toEntryResponse(e *TimeEntry) entryResponse {
	return entryResponse{
		ID:          e.ID.String(),
		MatterID:    e.MatterID.String(),
		UserID:      e.UserID,
		Description: e.Description,
		Minutes:     e.Minutes,
		RateCents:   e.RateCents,
		AmountCents: e.AmountCents(),
		EntryDate:   e.EntryDate.UTC().Format("2006-01-02"),
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	firmID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	matterID, err := uuid.Parse(chi.URLParam(r, "matterId"))
	if err != nil {
		httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "matterId", Message: "must be a uuid"}}})
		return
	}
	entries, err := h.service.Entries(r.Context(), firmID, matterID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryResponse(&entries[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": out})
}

func (h *Handler) recordTime(w http.ResponseWriter, r *http.Request) {
	firmID, principal, ok := h.scope(w, r)
	if !ok {
		return
	}
	matterID, err := uuid.Parse(chi.URLParam(r, "matterId"))
	if err != nil {
		httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "matterId", Message: "must be a uuid"}}})
		return
	}
	var req recordTimeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	entryDate, _ := time.Parse("2006-01-02", req.EntryDate)
	entry, err := h.service.RecordTime(r.Context(), firmID, matterID, principal.ID, req.Description, req.Minutes, req.RateCents, entryDate)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *Handler) removeEntry(w http.ResponseWriter, r *http.Request) {
	firmID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "id", Message: "must be a uuid"}}})
		return
	}
	if err := h.service.RemoveEntry(r.Context(), firmID, id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) invoiceDraft(w http.ResponseWriter, r *http.Request) {
	firmID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	matterID, err := uuid.Parse(chi.URLParam(r, "matterId"))
	if err != nil {
		httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "matterId", Message: "must be a uuid"}}})
		return
	}
	draft, err := h.service.InvoiceDraftFor(r.Context(), firmID, matterID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
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
