package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/abrezinsky/councilvote/internal/models"
)

// LiveDelta describes one change to a live counter. Details renders the
// audit text from the resulting count.
type LiveDelta struct {
	PollingUnitID int
	CandidateID   *int
	TallyType     string
	Delta         int
	PollingUnit   string
	PerformedBy   string
	Details       func(count int) string
}

// ApplyLiveDelta adds Delta to the counter for (unit, candidate, type),
// creating it when absent, flooring the result at zero, and appending a
// LIVE_UPDATE audit row in the same transaction. The update is a single
// upsert so concurrent deltas on one counter never lose writes.
func (r *Repository) ApplyLiveDelta(ctx context.Context, d LiveDelta) (*models.LiveTally, error) {
	key := 0
	if d.CandidateID != nil {
		key = *d.CandidateID
	}
	initial := d.Delta
	if initial < 0 {
		initial = 0
	}
	now := time.Now().UTC()

	tally := &models.LiveTally{
		PollingUnitID: d.PollingUnitID,
		CandidateID:   d.CandidateID,
		TallyType:     d.TallyType,
		UpdatedAt:     now,
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, r.q(`
			INSERT INTO live_tallies (polling_unit_id, candidate_id, candidate_key, tally_type, count, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (polling_unit_id, candidate_key, tally_type)
			DO UPDATE SET count = MAX(0, live_tallies.count + ?), updated_at = excluded.updated_at
			RETURNING id, count
		`), d.PollingUnitID, nullInt(d.CandidateID), key, d.TallyType, initial, now, d.Delta).Scan(&tally.ID, &tally.Count)
		if err != nil {
			return err
		}

		details := ""
		if d.Details != nil {
			details = d.Details(tally.Count)
		}
		return r.insertAudit(ctx, tx, &models.AuditLog{
			Action:      models.ActionLiveUpdate,
			PollingUnit: d.PollingUnit,
			Details:     details,
			PerformedBy: d.PerformedBy,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}
	return tally, nil
}

// ListLiveTallies returns the counters of one unit, or of every unit when unitID is nil
func (r *Repository) ListLiveTallies(ctx context.Context, unitID *int) ([]models.LiveTally, error) {
	query := `SELECT id, polling_unit_id, candidate_id, tally_type, count, updated_at FROM live_tallies`
	var args []any
	if unitID != nil {
		query += ` WHERE polling_unit_id = ?`
		args = append(args, *unitID)
	}
	query += ` ORDER BY polling_unit_id, tally_type, candidate_key`

	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tallies := []models.LiveTally{}
	for rows.Next() {
		var t models.LiveTally
		var candidateID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.PollingUnitID, &candidateID, &t.TallyType, &t.Count, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.CandidateID = intPtr(candidateID)
		tallies = append(tallies, t)
	}
	return tallies, rows.Err()
}
