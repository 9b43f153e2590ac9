package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/abrezinsky/councilvote/internal/models"
)

const unitColumns = `id, name, grade, total_eligible, ballots_issued, created_at`

func scanUnit(row interface{ Scan(...any) error }) (models.PollingUnit, error) {
	var u models.PollingUnit
	err := row.Scan(&u.ID, &u.Name, &u.Grade, &u.TotalEligible, &u.BallotsIssued, &u.CreatedAt)
	return u, err
}

// ListUnits returns all polling units ordered by grade then name
func (r *Repository) ListUnits(ctx context.Context) ([]models.PollingUnit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+unitColumns+` FROM polling_units ORDER BY grade, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := []models.PollingUnit{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// GetUnit retrieves a polling unit by ID
func (r *Repository) GetUnit(ctx context.Context, id int) (*models.PollingUnit, error) {
	u, err := scanUnit(r.db.QueryRowContext(ctx,
		r.q(`SELECT `+unitColumns+` FROM polling_units WHERE id = ?`), id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUnit inserts a polling unit and fills in its ID and CreatedAt
func (r *Repository) CreateUnit(ctx context.Context, u *models.PollingUnit) error {
	u.CreatedAt = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, r.q(`
		INSERT INTO polling_units (name, grade, total_eligible, ballots_issued, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`), u.Name, u.Grade, u.TotalEligible, u.BallotsIssued, u.CreatedAt).Scan(&u.ID)
	return mapWriteError(err)
}

// UpdateUnit overwrites a polling unit's editable fields
func (r *Repository) UpdateUnit(ctx context.Context, u *models.PollingUnit) error {
	result, err := r.db.ExecContext(ctx, r.q(`
		UPDATE polling_units SET name = ?, grade = ?, total_eligible = ?, ballots_issued = ?
		WHERE id = ?
	`), u.Name, u.Grade, u.TotalEligible, u.BallotsIssued, u.ID)
	if err != nil {
		return mapWriteError(err)
	}
	return requireAffected(result)
}

// InitUnit sets the eligible voter and ballot counts of a unit, provided it
// has no official submission yet. Returns ErrHasHistory otherwise.
func (r *Repository) InitUnit(ctx context.Context, id, totalEligible, ballotsIssued int) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var history bool
		if err := tx.QueryRowContext(ctx,
			r.q(`SELECT EXISTS(SELECT 1 FROM unit_submissions WHERE polling_unit_id = ?)`), id).Scan(&history); err != nil {
			return err
		}
		if history {
			return ErrHasHistory
		}
		result, err := tx.ExecContext(ctx,
			r.q(`UPDATE polling_units SET total_eligible = ?, ballots_issued = ? WHERE id = ?`),
			totalEligible, ballotsIssued, id)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
}

// DeleteUnit removes a polling unit, its live counters, and any staff
// assignment to it. Units with official submissions return ErrHasHistory.
func (r *Repository) DeleteUnit(ctx context.Context, id int) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var history bool
		if err := tx.QueryRowContext(ctx,
			r.q(`SELECT EXISTS(SELECT 1 FROM unit_submissions WHERE polling_unit_id = ?)`), id).Scan(&history); err != nil {
			return err
		}
		if history {
			return ErrHasHistory
		}
		if _, err := tx.ExecContext(ctx, r.q(`DELETE FROM live_tallies WHERE polling_unit_id = ?`), id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, r.q(`UPDATE users SET polling_unit_id = NULL WHERE polling_unit_id = ?`), id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, r.q(`DELETE FROM polling_units WHERE id = ?`), id)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
}
