package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/classfund/classfund/internal/model"
)

// Repository persists audit events through database/sql with the pq
// driver; tag slices go through pq.Array.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new audit repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// BulkInsert writes a batch of audit events in one transaction.
func (r *Repository) BulkInsert(ctx context.Context, events []*model.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO donation_audit (did, email, amount, pid, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("prepare audit insert: %w", err)
	}
	defer stmt.Close()

	for _, event := range events {
		_, err := stmt.ExecContext(ctx,
			event.DonationID,
			event.Email,
			event.Amount,
			event.ProjectID,
			pq.Array(event.Tags),
			event.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert audit event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit tx: %w", err)
	}

	return nil
}

// ListByDonation returns the trail entries for one donation, oldest first.
func (r *Repository) ListByDonation(ctx context.Context, donationID int64) ([]*model.AuditEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, did, email, amount, pid, tags, created_at
		FROM donation_audit
		WHERE did = $1
		ORDER BY created_at ASC
	`, donationID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []*model.AuditEvent
	for rows.Next() {
		var event model.AuditEvent
		var tags []string
		err := rows.Scan(
			&event.ID,
			&event.DonationID,
			&event.Email,
			&event.Amount,
			&event.ProjectID,
			pq.Array(&tags),
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Tags = tags
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}
