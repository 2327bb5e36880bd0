package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/classfund/classfund/internal/auth"
	"github.com/classfund/classfund/internal/handler/dto"
	"github.com/classfund/classfund/internal/service"
)

// DonationHandler handles HTTP requests for donation operations.
type DonationHandler struct {
	svc    *service.DonationService
	logger *slog.Logger
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(svc *service.DonationService, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/donations.
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "loggedin", "Sign in to donate")
		return
	}

	var req dto.CreateDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body")
		return
	}

	input := service.RecordInput{
		AmountText: req.Amount,
		TeacherID:  req.TeacherID,
		ProjectID:  req.ProjectID,
		Donor:      session,
	}

	donation, err := h.svc.Record(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("donation_recorded",
		"donation_id", donation.ID,
		"project_id", donation.ProjectID,
		"amount", donation.Amount,
	)

	writeJSON(w, http.StatusCreated, dto.DonationResponse{
		Status:     "donated",
		DonationID: donation.ID,
		Receipt:    donation.Receipt,
		Amount:     donation.Amount,
		TeacherID:  donation.TeacherID,
		ProjectID:  donation.ProjectID,
		Date:       donation.Date,
	})
}

// Get handles GET /api/v1/donations/{did}.
// Donors can only read their own ledger entries; anything else is
// indistinguishable from a missing entry.
func (h *DonationHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "loggedin", "Sign in to view donations")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "did"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "not_found", "Donation not found")
		return
	}

	donation, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if donation.DonorEmail != session.Email {
		writeError(w, http.StatusNotFound, "not_found", "Donation not found")
		return
	}

	writeJSON(w, http.StatusOK, dto.DonationResponse{
		DonationID: donation.ID,
		Receipt:    donation.Receipt,
		Amount:     donation.Amount,
		TeacherID:  donation.TeacherID,
		ProjectID:  donation.ProjectID,
		Date:       donation.Date,
	})
}

// handleServiceError maps donation service errors to HTTP responses.
func (h *DonationHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "loggedin", "Sign in to donate")
	case errors.Is(err, service.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, "invalid_donation", "Donation amount is not valid")
	case errors.Is(err, service.ErrDonationNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Donation not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "critical", "An internal error occurred")
	}
}
