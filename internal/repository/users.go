package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/abrezinsky/councilvote/internal/models"
)

const userSelect = `
	SELECT u.id, u.username, u.password_hash, u.name, u.role, u.polling_unit_id, p.name,
	       u.active_session_token, u.last_seen, u.created_at
	FROM users u
	LEFT JOIN polling_units p ON p.id = u.polling_unit_id`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	var unitID sql.NullInt64
	var unitName, token sql.NullString
	var lastSeen sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Role, &unitID, &unitName,
		&token, &lastSeen, &u.CreatedAt)
	if err != nil {
		return u, err
	}
	u.PollingUnitID = intPtr(unitID)
	u.PollingUnitName = unitName.String
	u.ActiveSessionToken = token.String
	if lastSeen.Valid {
		t := lastSeen.Time
		u.LastSeen = &t
	}
	return u, nil
}

// ListUsers returns all users ordered by username
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, userSelect+` ORDER BY u.username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUser retrieves a user by ID
func (r *Repository) GetUser(ctx context.Context, id int) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.q(userSelect+` WHERE u.id = ?`), id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername retrieves a user by login name
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.q(userSelect+` WHERE u.username = ?`), username))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CountUsers returns the number of user accounts
func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CreateUser inserts a user. Duplicate usernames or unit assignments return ErrConflict.
func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	u.CreatedAt = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, r.q(`
		INSERT INTO users (username, password_hash, name, role, polling_unit_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`), u.Username, u.PasswordHash, u.Name, u.Role, nullInt(u.PollingUnitID), u.CreatedAt).Scan(&u.ID)
	return mapWriteError(err)
}

// DeleteUser removes a user account
func (r *Repository) DeleteUser(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, r.q(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// SetSessionToken binds a user to the device holding token. An empty token clears the binding.
func (r *Repository) SetSessionToken(ctx context.Context, id int, token string) error {
	result, err := r.db.ExecContext(ctx,
		r.q(`UPDATE users SET active_session_token = ? WHERE id = ?`), nullString(token), id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// TouchLastSeen records a heartbeat for a user
func (r *Repository) TouchLastSeen(ctx context.Context, id int, at time.Time) error {
	result, err := r.db.ExecContext(ctx, r.q(`UPDATE users SET last_seen = ? WHERE id = ?`), at.UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}
