package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/classfund/classfund/internal/handler/dto"
	"github.com/classfund/classfund/internal/service"
	"github.com/classfund/classfund/internal/view"
)

// FundingHandler serves project funding snapshots.
type FundingHandler struct {
	svc    *service.FundingService
	logger *slog.Logger
}

// NewFundingHandler creates a new FundingHandler.
func NewFundingHandler(svc *service.FundingService, logger *slog.Logger) *FundingHandler {
	return &FundingHandler{
		svc:    svc,
		logger: logger,
	}
}

// Get handles GET /api/v1/projects/{pid}/funding.
func (h *FundingHandler) Get(w http.ResponseWriter, r *http.Request) {
	funding, err := h.svc.ProjectFunding(r.Context(), chi.URLParam(r, "pid"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToFundingResponse(funding))
}

// List handles GET /api/v1/projects.
func (h *FundingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	fundings, err := h.svc.ListProjects(r.Context(), limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToFundingListResponse(fundings))
}

// Page handles GET /projects/{pid}, the rendered funding page.
func (h *FundingHandler) Page(w http.ResponseWriter, r *http.Request) {
	funding, err := h.svc.ProjectFunding(r.Context(), chi.URLParam(r, "pid"))
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			http.Error(w, "project not found", http.StatusNotFound)
			return
		}
		h.logger.Error("internal_error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(view.FundingPage(funding)))
}

// handleServiceError maps funding service errors to HTTP responses.
func (h *FundingHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Project not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "critical", "An internal error occurred")
	}
}
