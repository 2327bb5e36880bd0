package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/classfund/classfund/internal/model"
)

// ErrProjectNotFound indicates no project exists with the given identifier.
var ErrProjectNotFound = errors.New("project not found")

const fundingSelect = `
	SELECT p.pid, p.title, p.subject, p.short_description, t.name,
	       p.ncesid, s.name, p.num_students, p.percent_funded,
	       p.total_price::text, p.expiration_date
	FROM projects p
	JOIN schools s ON s.ncesid = p.ncesid
	JOIN teachers t ON t.tid = p.tid
`

// GetProjectFunding joins a project with its school and teacher and
// returns the funding snapshot. Field values come back raw; callers are
// responsible for escaping before rendering.
func (r *Repository) GetProjectFunding(ctx context.Context, projectID string) (*model.ProjectFunding, error) {
	row := r.pool.QueryRow(ctx, fundingSelect+` WHERE p.pid = $1`, projectID)

	funding, err := scanFunding(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project funding: %w", err)
	}

	return funding, nil
}

// ListProjectFunding returns funding snapshots for the most recently
// expiring projects. Rows go through the same scan path as the
// single-project read, so downstream escaping is identical for both.
func (r *Repository) ListProjectFunding(ctx context.Context, limit int) ([]*model.ProjectFunding, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, fundingSelect+` ORDER BY p.expiration_date ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list project funding: %w", err)
	}
	defer rows.Close()

	var fundings []*model.ProjectFunding
	for rows.Next() {
		funding, err := scanFunding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project funding: %w", err)
		}
		fundings = append(fundings, funding)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project funding: %w", err)
	}

	return fundings, nil
}

// scanFunding scans one joined row into a snapshot. Shared by the
// single-row and multi-row read paths.
func scanFunding(row pgx.Row) (*model.ProjectFunding, error) {
	var funding model.ProjectFunding
	var subject *string

	err := row.Scan(
		&funding.ProjectID,
		&funding.Title,
		&subject,
		&funding.ShortDescription,
		&funding.TeacherName,
		&funding.SchoolID,
		&funding.SchoolName,
		&funding.NumStudents,
		&funding.PercentFunded,
		&funding.TotalPrice,
		&funding.ExpirationDate,
	)
	if err != nil {
		return nil, err
	}

	if subject != nil {
		funding.Subject = *subject
	}

	return &funding, nil
}
