package repository

import (
	"context"
	"database/sql"

	"github.com/abrezinsky/councilvote/internal/models"
)

// insertAudit appends an audit row inside tx and fills in its ID
func (r *Repository) insertAudit(ctx context.Context, tx *sql.Tx, a *models.AuditLog) error {
	return tx.QueryRowContext(ctx, r.q(`
		INSERT INTO audit_logs (action, polling_unit, round, details, reason, performed_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), a.Action, a.PollingUnit, nullInt(a.Round), a.Details, nullString(a.Reason), a.PerformedBy, a.CreatedAt).Scan(&a.ID)
}

// ListAuditLogs returns the most recent audit entries, newest first
func (r *Repository) ListAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT id, action, polling_unit, round, details, reason, performed_by, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []models.AuditLog{}
	for rows.Next() {
		var a models.AuditLog
		var round sql.NullInt64
		var reason sql.NullString
		if err := rows.Scan(&a.ID, &a.Action, &a.PollingUnit, &round, &a.Details, &reason, &a.PerformedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Round = intPtr(round)
		a.Reason = reason.String
		logs = append(logs, a)
	}
	return logs, rows.Err()
}
