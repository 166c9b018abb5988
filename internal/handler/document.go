package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	models "doctrack/internal/domain/models/tracking"
	trackingSvc "doctrack/internal/domain/services/tracking"
	"doctrack/internal/httputil"
	"doctrack/internal/middleware"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService trackingSvc.DocumentService
	lifecycle  trackingSvc.LifecycleEngine
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService trackingSvc.DocumentService, lifecycle trackingSvc.LifecycleEngine, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		lifecycle:  lifecycle,
		logger:     logger,
	}
}

// CreateDocument creates a new document from the office form
// POST /api/v1/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req trackingSvc.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.User == "" {
		req.User = middleware.Actor(r.Context())
	}

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document with full history
// GET /api/v1/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document id is required")
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// searchResponse is the list payload shape consumed by the web client.
type searchResponse struct {
	Data       []models.Document `json:"data"`
	Pagination pagination        `json:"pagination"`
}

type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// SearchDocuments filters and paginates documents
// GET /api/v1/documents?status&department&category&q&page&limit
func (h *DocumentHandler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := &models.SearchFilters{
		Status:     models.Status(q.Get("status")),
		Department: q.Get("department"),
		Category:   q.Get("category"),
		Query:      q.Get("q"),
	}

	var err error
	if filters.Page, err = intParam(q.Get("page"), 0); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	if filters.PageSize, err = intParam(q.Get("limit"), 0); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	results, err := h.docService.Search(r.Context(), filters)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, searchResponse{
		Data: results.Items,
		Pagination: pagination{
			Page:       results.Page,
			Limit:      results.PageSize,
			Total:      results.Total,
			TotalPages: results.TotalPages,
		},
	})
}

// actionPayload is the loose wire form of a lifecycle action; it is
// validated here, at the boundary, before the engine sees it.
type actionPayload struct {
	Kind       string `json:"kind"`
	Location   string `json:"location"`
	User       string `json:"user,omitempty"`
	Notes      string `json:"notes,omitempty"`
	UpdateDate string `json:"update_date,omitempty"` // RFC 3339
}

func (p actionPayload) validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Kind,
			validation.Required.Error("action kind is required"),
			validation.In("receive", "transfer", "return").Error("kind must be receive, transfer or return"),
		),
		validation.Field(&p.Location,
			validation.Required.Error("location is required"),
		),
		validation.Field(&p.UpdateDate,
			validation.Date(time.RFC3339).Error("update_date must be RFC 3339"),
		),
	)
}

// ApplyAction applies one lifecycle action to a document
// POST /api/v1/documents/{id}/actions
func (h *DocumentHandler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document id is required")
		return
	}

	var payload actionPayload
	if err := httputil.ParseJSON(w, r, &payload); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := payload.validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := strings.TrimSpace(payload.User)
	if actor == "" {
		actor = middleware.Actor(r.Context())
	}
	if actor == "" {
		httputil.RespondError(w, http.StatusBadRequest, "user is required")
		return
	}

	req := &models.ActionRequest{
		Kind:     models.ActionKind(payload.Kind),
		Location: payload.Location,
		User:     actor,
		Notes:    payload.Notes,
	}
	if payload.UpdateDate != "" {
		when, err := time.Parse(time.RFC3339, payload.UpdateDate)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "update_date must be RFC 3339")
			return
		}
		req.UpdateDate = when
	}

	doc, err := h.lifecycle.ApplyAction(r.Context(), id, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// RegisterScan resolves a scanned QR token, creating a stub document for
// unknown codes
// POST /api/v1/documents/scan
func (h *DocumentHandler) RegisterScan(w http.ResponseWriter, r *http.Request) {
	var req trackingSvc.RegisterScanRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.User == "" {
		req.User = middleware.Actor(r.Context())
	}

	result, err := h.docService.RegisterScan(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	httputil.RespondJSON(w, status, result)
}

// HealthCheck is a simple health check endpoint
// GET /api/v1/health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", raw, err)
	}
	return n, nil
}
