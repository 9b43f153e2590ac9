package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/abrezinsky/councilvote/internal/models"
)

const candidateColumns = `id, candidate_number, name, party_name, photo_url, theme_color, created_at`

func scanCandidate(row interface{ Scan(...any) error }) (models.Candidate, error) {
	var c models.Candidate
	var photoURL sql.NullString
	err := row.Scan(&c.ID, &c.CandidateNumber, &c.Name, &c.PartyName, &photoURL, &c.ThemeColor, &c.CreatedAt)
	c.PhotoURL = photoURL.String
	return c, err
}

// ListCandidates returns all candidates ordered by ballot number
func (r *Repository) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY candidate_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// GetCandidate retrieves a candidate by ID
func (r *Repository) GetCandidate(ctx context.Context, id int) (*models.Candidate, error) {
	c, err := scanCandidate(r.db.QueryRowContext(ctx,
		r.q(`SELECT `+candidateColumns+` FROM candidates WHERE id = ?`), id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCandidate inserts a candidate and fills in its ID and CreatedAt
func (r *Repository) CreateCandidate(ctx context.Context, c *models.Candidate) error {
	c.CreatedAt = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, r.q(`
		INSERT INTO candidates (candidate_number, name, party_name, photo_url, theme_color, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`), c.CandidateNumber, c.Name, c.PartyName, nullString(c.PhotoURL), c.ThemeColor, c.CreatedAt).Scan(&c.ID)
	return mapWriteError(err)
}

// UpdateCandidate overwrites a candidate's editable fields
func (r *Repository) UpdateCandidate(ctx context.Context, c *models.Candidate) error {
	result, err := r.db.ExecContext(ctx, r.q(`
		UPDATE candidates SET candidate_number = ?, name = ?, party_name = ?, photo_url = ?, theme_color = ?
		WHERE id = ?
	`), c.CandidateNumber, c.Name, c.PartyName, nullString(c.PhotoURL), c.ThemeColor, c.ID)
	if err != nil {
		return mapWriteError(err)
	}
	return requireAffected(result)
}

// DeleteCandidate removes a candidate and its live counters. Candidates that
// appear in any official round return ErrHasHistory.
func (r *Repository) DeleteCandidate(ctx context.Context, id int) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var history bool
		if err := tx.QueryRowContext(ctx,
			r.q(`SELECT EXISTS(SELECT 1 FROM vote_results WHERE candidate_id = ?)`), id).Scan(&history); err != nil {
			return err
		}
		if history {
			return ErrHasHistory
		}
		if _, err := tx.ExecContext(ctx, r.q(`DELETE FROM live_tallies WHERE candidate_id = ?`), id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, r.q(`DELETE FROM candidates WHERE id = ?`), id)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
}

// requireAffected returns ErrNotFound when a statement touched no rows
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
