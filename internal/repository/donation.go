package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/classfund/classfund/internal/model"
)

// ErrDonationNotFound indicates no donation exists with the given identifier.
var ErrDonationNotFound = errors.New("donation not found")

// CreateDonation appends one donation to the ledger and fills in the
// allocated identifier. Allocation uses the identity column on did, so
// concurrent inserts can never observe the same identifier; the old
// read-max-then-insert scheme is gone.
func (r *Repository) CreateDonation(ctx context.Context, donation *model.Donation) error {
	query := `
		INSERT INTO donations (tid, pid, amount, donation_date, email, receipt)
		VALUES ($1, $2, $3::numeric, $4, $5, $6)
		RETURNING did
	`

	err := r.pool.QueryRow(ctx, query,
		donation.TeacherID,
		donation.ProjectID,
		donation.Amount,
		donation.Date,
		donation.DonorEmail,
		donation.Receipt,
	).Scan(&donation.ID)

	if err != nil {
		return fmt.Errorf("failed to create donation: %w", err)
	}

	return nil
}

// GetDonation retrieves a ledger entry by identifier.
func (r *Repository) GetDonation(ctx context.Context, id int64) (*model.Donation, error) {
	query := `
		SELECT did, tid, pid, amount::text, donation_date, email, receipt
		FROM donations
		WHERE did = $1
	`

	var donation model.Donation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&donation.ID,
		&donation.TeacherID,
		&donation.ProjectID,
		&donation.Amount,
		&donation.Date,
		&donation.DonorEmail,
		&donation.Receipt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDonationNotFound
		}
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}

	return &donation, nil
}

// MaxDonationID returns the highest allocated donation identifier, or 0
// for an empty ledger. Read-side helper for operational checks and tests.
func (r *Repository) MaxDonationID(ctx context.Context) (int64, error) {
	var max int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(did), 0) FROM donations`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to get max donation id: %w", err)
	}
	return max, nil
}
