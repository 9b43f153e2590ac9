package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/abrezinsky/councilvote/internal/models"
)

const submissionSelect = `
	SELECT s.id, s.polling_unit_id, p.name, s.round, s.total_signatures, s.ballots_issued,
	       s.ballots_remaining, s.total_no_vote, s.total_void_ballots, s.photo_evidence,
	       s.submitted_by, s.reason, s.created_at
	FROM unit_submissions s
	JOIN polling_units p ON p.id = s.polling_unit_id`

// latestRound restricts an aliased query to the newest round of each unit
const latestRound = `(SELECT MAX(l.round) FROM unit_submissions l WHERE l.polling_unit_id = %s.polling_unit_id)`

func scanSubmission(row interface{ Scan(...any) error }) (models.UnitSubmission, error) {
	var s models.UnitSubmission
	var photo, reason sql.NullString
	err := row.Scan(&s.ID, &s.PollingUnitID, &s.PollingUnitName, &s.Round, &s.TotalSignatures, &s.BallotsIssued,
		&s.BallotsRemaining, &s.TotalNoVote, &s.TotalVoidBallots, &photo,
		&s.SubmittedBy, &reason, &s.CreatedAt)
	s.PhotoEvidence = photo.String
	s.Reason = reason.String
	return s, err
}

func (r *Repository) querySubmissions(ctx context.Context, query string, args ...any) ([]models.UnitSubmission, error) {
	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []models.UnitSubmission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// MaxRound returns the highest submitted round for a unit, or 0 if none
func (r *Repository) MaxRound(ctx context.Context, unitID int) (int, error) {
	var round sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		r.q(`SELECT MAX(round) FROM unit_submissions WHERE polling_unit_id = ?`), unitID).Scan(&round)
	if err != nil {
		return 0, err
	}
	return int(round.Int64), nil
}

// CommitSubmission atomically writes a submission round, its vote rows, and
// its audit entry. A concurrent writer that already took the same round
// causes ErrConflict and nothing is written.
func (r *Repository) CommitSubmission(ctx context.Context, sub *models.UnitSubmission, votes []models.VoteEntry, audit *models.AuditLog) error {
	now := time.Now().UTC()
	sub.CreatedAt = now
	audit.CreatedAt = now

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, r.q(`
			INSERT INTO unit_submissions (polling_unit_id, round, total_signatures, ballots_issued,
				ballots_remaining, total_no_vote, total_void_ballots, photo_evidence, submitted_by, reason, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`), sub.PollingUnitID, sub.Round, sub.TotalSignatures, sub.BallotsIssued,
			sub.BallotsRemaining, sub.TotalNoVote, sub.TotalVoidBallots, nullString(sub.PhotoEvidence),
			sub.SubmittedBy, nullString(sub.Reason), sub.CreatedAt).Scan(&sub.ID)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, r.q(`
			INSERT INTO vote_results (polling_unit_id, candidate_id, round, vote_count) VALUES (?, ?, ?, ?)
		`))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, v := range votes {
			if _, err := stmt.ExecContext(ctx, sub.PollingUnitID, v.CandidateID, sub.Round, v.VoteCount); err != nil {
				return err
			}
		}

		return r.insertAudit(ctx, tx, audit)
	})
	return mapWriteError(err)
}

// ListSubmissions returns every round of a unit, newest first
func (r *Repository) ListSubmissions(ctx context.Context, unitID int) ([]models.UnitSubmission, error) {
	return r.querySubmissions(ctx, submissionSelect+` WHERE s.polling_unit_id = ? ORDER BY s.round DESC`, unitID)
}

// LatestSubmissions returns the newest round of every unit that has submitted
func (r *Repository) LatestSubmissions(ctx context.Context) ([]models.UnitSubmission, error) {
	return r.querySubmissions(ctx, submissionSelect+` WHERE s.round = `+fmt.Sprintf(latestRound, "s")+` ORDER BY s.polling_unit_id`)
}

// ListVoteResults returns the vote rows of one round of a unit
func (r *Repository) ListVoteResults(ctx context.Context, unitID, round int) ([]models.VoteResult, error) {
	return r.queryVoteResults(ctx, `
		SELECT v.id, v.polling_unit_id, v.candidate_id, c.name, v.round, v.vote_count
		FROM vote_results v
		JOIN candidates c ON c.id = v.candidate_id
		WHERE v.polling_unit_id = ? AND v.round = ?
		ORDER BY c.candidate_number
	`, unitID, round)
}

// LatestVoteResults returns the vote rows of the newest round of every unit
func (r *Repository) LatestVoteResults(ctx context.Context) ([]models.VoteResult, error) {
	return r.queryVoteResults(ctx, `
		SELECT v.id, v.polling_unit_id, v.candidate_id, c.name, v.round, v.vote_count
		FROM vote_results v
		JOIN candidates c ON c.id = v.candidate_id
		WHERE v.round = `+fmt.Sprintf(latestRound, "v")+`
		ORDER BY v.polling_unit_id, c.candidate_number
	`)
}

func (r *Repository) queryVoteResults(ctx context.Context, query string, args ...any) ([]models.VoteResult, error) {
	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.VoteResult{}
	for rows.Next() {
		var v models.VoteResult
		if err := rows.Scan(&v.ID, &v.PollingUnitID, &v.CandidateID, &v.CandidateName, &v.Round, &v.VoteCount); err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, rows.Err()
}
