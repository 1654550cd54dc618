package matters

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/rbac"
	"github.com/lexora-legal/lexora/internal/shared"
)

// Handler wires matter endpoints.
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

type matterResponse struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	Title      string `json:"title"`
	ClientName string `json:"clientName"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func toMatterResponse(m *Matter) matterResponse {
	return matterResponse{
		ID:         m.ID.String(),
		Number:     m.Number,
		Title:      m.Title,
		ClientName: m.ClientName,
		Status:     string(m.Status),
		CreatedAt:  m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  m.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type caseResponse struct {
	ID        string `json:"id"`
	MatterID  string `json:"matterId"`
	Title     string `json:"title"`
	Court     string `json:"court,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func toCaseResponse(c *CaseRecord) caseResponse {
	return caseResponse{
		ID:        c.ID.String(),
		MatterID:  c.MatterID.String(),
		Title:     c.Title,
		Court:     c.Court,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	firmID, principal, ok := h.scope(w, r)
	if !ok {
		return
	}
	_ = principal

	req := ListMattersRequest{Limit: 50}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := MatterStatus(raw)
		req.Status = &status
	}
	if search := r.URL.Query().Get("search"); search != "" {
		req.Search = &search
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			req.Limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			req.Offset = parsed
		}
	}

	result, total, err := h.service.List(r.Context(), firmID, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	out := make([]matterResponse, 0, len(result))
	for i := range result {
		out = append(out, toMatterResponse(&result[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"matters":    out,
		"pagination": shared.NewPagination(req.Offset/req.Limit+1, req.Limit, total),
	})
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
	matter, err := h.service.Get(r.Context(), firmID, id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toMatterResponse(matter))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	firmID, principal, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req CreateMatterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	matter, err := h.service.Create(r.Context(), firmID, req, principal.ID)
	if err != nil {
		h.logger.Error("create matter", slog.Any("error", err))
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toMatterResponse(matter))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	firmID, principal, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "id", Message: "must be a uuid"}}})
		return
	}
	var req UpdateMatterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	matter, err := h.service.Update(r.Context(), firmID, id, req, principal.ID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toMatterResponse(matter))
}

func (h *Handler) listCases(w http.ResponseWriter, r *http.Request) {
	firmID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	matterID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "id", Message: "must be a uuid"}}})
		return
	}
	records, err := h.service.ListCases(r.Context(), firmID, matterID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	out := make([]caseResponse, 0, len(records))
	for i := range records {
		out = append(out, toCaseResponse(&records[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"cases": out})
}

func (h *Handler) fileCase(w http.ResponseWriter, r *http.Request) {
	firmID, principal, ok := h.scope(w, r)
	if !ok {
		return
	}
	matterID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "id", Message: "must be a uuid"}}})
		return
	}
	var req CreateCaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	record, err := h.service.FileCase(r.Context(), firmID, matterID, req, principal.ID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toCaseResponse(record))
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
