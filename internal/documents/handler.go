package documents

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/rbac"
	"github.com/lexora-legal/lexora/internal/shared"
)

const maxUploadBytes = 32 << 20

// Handler wires document endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

type documentResponse struct {
	ID          string  `json:"id"`
	MatterID    *string `json:"matterId,omitempty"`
	Name        string  `json:"name"`
	ContentType string  `json:"contentType"`
	SizeBytes   int64   `json:"sizeBytes"`
	Checksum    string  `json:"checksum"`
	CreatedAt   string  `json:"createdAt"`
}

func toDocumentResponse(doc *Document) documentResponse {
	resp := documentResponse{
		ID:          doc.ID.String(),
		Name:        doc.Name,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		Checksum:    doc.Checksum,
		CreatedAt:   doc.CreatedAt.UTC().Format(time.RFC3339),
	}
	if doc.MatterID != nil {
		id := doc.MatterID.String()
		resp.MatterID = &id
	}
	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	firmID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	var matterID *uuid.UUID
	if raw := r.URL.Query().Get("matterId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "matterId", Message: "must be a uuid"}}})
			return
		}
		matterID = &parsed
	}
	docs, err := h.service.List(r.Context(), firmID, matterID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	out := make([]documentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, toDocumentResponse(&docs[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	firmID, principal, ok := h.scope(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "file", Message: "malformed multipart body"}}})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "file", Message: "file is required"}}})
		return
	}
	defer file.Close()

	var matterID *uuid.UUID
	if raw := r.FormValue("matterId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "matterId", Message: "must be a uuid"}}})
			return
		}
		matterID = &parsed
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.service.Upload(r.Context(), firmID, matterID, header.Filename, contentType, file, principal.ID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toDocumentResponse(doc))
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	firmID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "id", Message: "must be a uuid"}}})
		return
	}
	doc, body, err := h.service.Open(r.Context(), firmID, id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("stream document", slog.Any("error", err))
	}
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	firmID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "id", Message: "must be a uuid"}}})
		return
	}
	if err := h.service.Delete(r.Context(), firmID, id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
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
