package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/abrezinsky/councilvote/internal/models"
)

// SeedConfig creates the singleton configuration row from defaults if it
// does not exist yet, then returns the stored row.
func (r *Repository) SeedConfig(ctx context.Context, defaults models.SystemConfig) (*models.SystemConfig, error) {
	_, err := r.db.ExecContext(ctx, r.q(`
		INSERT INTO system_config (id, public_view_enabled, election_title, school_name, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`), defaults.PublicViewEnabled, defaults.ElectionTitle, defaults.SchoolName, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return r.GetConfig(ctx)
}

// GetConfig returns the singleton configuration. ErrNotFound means SeedConfig never ran.
func (r *Repository) GetConfig(ctx context.Context) (*models.SystemConfig, error) {
	var c models.SystemConfig
	err := r.db.QueryRowContext(ctx, `
		SELECT id, public_view_enabled, election_title, school_name, updated_at
		FROM system_config WHERE id = 1
	`).Scan(&c.ID, &c.PublicViewEnabled, &c.ElectionTitle, &c.SchoolName, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateConfig overwrites the singleton configuration
func (r *Repository) UpdateConfig(ctx context.Context, c *models.SystemConfig) error {
	c.ID = 1
	c.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, r.q(`
		UPDATE system_config SET public_view_enabled = ?, election_title = ?, school_name = ?, updated_at = ?
		WHERE id = 1
	`), c.PublicViewEnabled, c.ElectionTitle, c.SchoolName, c.UpdatedAt)
	if err != nil {
		return err
	}
	return requireAffected(result)
}
