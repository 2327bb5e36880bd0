package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/classfund/classfund/internal/audit"
	"github.com/classfund/classfund/internal/metrics"
	"github.com/classfund/classfund/internal/model"
	"github.com/classfund/classfund/internal/repository"
)

// Donation errors.
var (
	ErrNotAuthenticated = errors.New("donation requires an authenticated donor")
	ErrInvalidAmount    = errors.New("invalid donation amount")
	ErrDonationNotFound = errors.New("donation not found")
)

// Amount format: digits, optional single decimal point, optional
// fractional digits. Negative, empty, and malformed strings all fail.
var amountRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// DonationStore is the ledger persistence the donation service depends on.
type DonationStore interface {
	CreateDonation(ctx context.Context, donation *model.Donation) error
	GetDonation(ctx context.Context, id int64) (*model.Donation, error)
}

// AuditPublisher records donation events on the audit trail.
type AuditPublisher interface {
	Publish(ctx context.Context, event audit.Payload) error
}

// DonationService validates and records donations.
type DonationService struct {
	store   DonationStore
	audit   AuditPublisher
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewDonationService creates a new DonationService.
// The audit publisher may be nil; recording then skips the trail.
func NewDonationService(store DonationStore, publisher AuditPublisher, logger *slog.Logger, recorder metrics.Recorder) *DonationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &DonationService{
		store:   store,
		audit:   publisher,
		logger:  logger,
		metrics: recorder,
	}
}

// RecordInput defines input for recording a donation.
type RecordInput struct {
	AmountText string
	TeacherID  string
	ProjectID  string
	Donor      *model.Session
	Date       time.Time
}

// Record validates and appends one donation to the ledger.
// The returned donation carries the identifier the store allocated.
func (s *DonationService) Record(ctx context.Context, input RecordInput) (*model.Donation, error) {
	if input.Donor == nil || input.Donor.Email == "" {
		s.metrics.IncDonationRejected("loggedin")
		return nil, ErrNotAuthenticated
	}

	if !amountRegex.MatchString(input.AmountText) {
		s.metrics.IncDonationRejected("invalid_donation")
		return nil, ErrInvalidAmount
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	receipt, err := generateReceipt()
	if err != nil {
		return nil, fmt.Errorf("generate receipt: %w", err)
	}

	donation := &model.Donation{
		TeacherID:  input.TeacherID,
		ProjectID:  input.ProjectID,
		Amount:     input.AmountText,
		Date:       date,
		DonorEmail: input.Donor.Email,
		Receipt:    receipt,
	}

	if err := s.store.CreateDonation(ctx, donation); err != nil {
		return nil, fmt.Errorf("record donation: %w", err)
	}

	s.metrics.IncDonationRecorded()
	if amount, err := strconv.ParseFloat(donation.Amount, 64); err == nil {
		s.metrics.ObserveDonationAmount(amount)
	}

	// Best effort; a failed audit publish never fails the donation.
	if s.audit != nil {
		event := audit.Payload{
			DonationID: donation.ID,
			Email:      donation.DonorEmail,
			Amount:     donation.Amount,
			ProjectID:  donation.ProjectID,
			TeacherID:  donation.TeacherID,
			Tags:       []string{"donation", "web"},
			RecordedAt: time.Now().UnixMilli(),
		}
		if err := s.audit.Publish(ctx, event); err != nil {
			s.logger.Warn("audit publish failed",
				slog.Int64("donation_id", donation.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return donation, nil
}

// Get retrieves a ledger entry by identifier.
func (s *DonationService) Get(ctx context.Context, id int64) (*model.Donation, error) {
	donation, err := s.store.GetDonation(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDonationNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}

	return donation, nil
}

// generateReceipt creates the external confirmation reference for a
// donation. The ledger identifier stays internal; receipts are what
// donors see.
func generateReceipt() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", err
	}
	return "rcpt_" + id.String(), nil
}
