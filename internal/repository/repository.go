package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Repository provides data access methods over SQLite or PostgreSQL
type Repository struct {
	db     *sql.DB
	driver string
}

// New opens a SQLite repository at dbPath and runs migrations
func New(dbPath string) (*Repository, error) {
	return Open(DriverSQLite, dbPath)
}

// Open creates a Repository for the given driver ("sqlite3" or "pgx") and runs migrations
func Open(driver, dsn string) (*Repository, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// Enable foreign key constraints
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, err
		}
		// SQLite works best with single connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
	}

	repo := &Repository{db: db, driver: driver}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Driver returns the database driver name
func (r *Repository) Driver() string {
	if r.driver == "" {
		return DriverSQLite
	}
	return r.driver
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) isPostgres() bool {
	return r.driver == DriverPostgres
}

// q adapts a query written with ? placeholders and MAX(a, b) to the active dialect
func (r *Repository) q(query string) string {
	if !r.isPostgres() {
		return query
	}
	query = strings.ReplaceAll(query, "MAX(0,", "GREATEST(0,")
	return rebind(query)
}

// rebind rewrites ? placeholders to $1, $2, ...
func rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// withTx runs fn inside a transaction, committing on success
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	ts := "DATETIME"
	if r.isPostgres() {
		pk = "SERIAL PRIMARY KEY"
		ts = "TIMESTAMPTZ"
	}
	expand := strings.NewReplacer("{pk}", pk, "{ts}", ts)

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS candidates (
			id {pk},
			candidate_number INTEGER NOT NULL UNIQUE,
			name TEXT NOT NULL,
			party_name TEXT NOT NULL,
			photo_url TEXT,
			theme_color TEXT NOT NULL DEFAULT '#3B82F6',
			created_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS polling_units (
			id {pk},
			name TEXT NOT NULL,
			grade TEXT NOT NULL,
			total_eligible INTEGER NOT NULL DEFAULT 0,
			ballots_issued INTEGER NOT NULL DEFAULT 0,
			created_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id {pk},
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'STAFF',
			polling_unit_id INTEGER UNIQUE REFERENCES polling_units(id) ON DELETE SET NULL,
			active_session_token TEXT,
			last_seen {ts},
			created_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS system_config (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			public_view_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			election_title TEXT NOT NULL,
			school_name TEXT NOT NULL,
			updated_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		// candidate_key is the candidate id, or 0 for category counters, so the
		// unique key also holds for NO_VOTE and VOID rows.
		`CREATE TABLE IF NOT EXISTS live_tallies (
			id {pk},
			polling_unit_id INTEGER NOT NULL REFERENCES polling_units(id),
			candidate_id INTEGER REFERENCES candidates(id),
			candidate_key INTEGER NOT NULL DEFAULT 0,
			tally_type TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
			updated_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (polling_unit_id, candidate_key, tally_type)
		)`,
		`CREATE TABLE IF NOT EXISTS unit_submissions (
			id {pk},
			polling_unit_id INTEGER NOT NULL REFERENCES polling_units(id),
			round INTEGER NOT NULL CHECK (round > 0),
			total_signatures INTEGER NOT NULL,
			ballots_issued INTEGER NOT NULL DEFAULT 0,
			ballots_remaining INTEGER NOT NULL DEFAULT 0,
			total_no_vote INTEGER NOT NULL DEFAULT 0,
			total_void_ballots INTEGER NOT NULL DEFAULT 0,
			photo_evidence TEXT,
			submitted_by TEXT NOT NULL,
			reason TEXT,
			created_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (polling_unit_id, round)
		)`,
		`CREATE TABLE IF NOT EXISTS vote_results (
			id {pk},
			polling_unit_id INTEGER NOT NULL REFERENCES polling_units(id),
			candidate_id INTEGER NOT NULL REFERENCES candidates(id),
			round INTEGER NOT NULL,
			vote_count INTEGER NOT NULL CHECK (vote_count >= 0),
			UNIQUE (polling_unit_id, candidate_id, round)
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id {pk},
			action TEXT NOT NULL,
			polling_unit TEXT NOT NULL,
			round INTEGER,
			details TEXT NOT NULL,
			reason TEXT,
			performed_by TEXT NOT NULL,
			created_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_live_tallies_unit ON live_tallies(polling_unit_id)`,
		`CREATE INDEX IF NOT EXISTS idx_vote_results_unit_round ON vote_results(polling_unit_id, round)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(expand.Replace(migration)); err != nil {
			return err
		}
	}
	return nil
}

// nullString stores empty strings as NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullInt stores nil pointers as NULL
func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// intPtr converts a scanned nullable integer to *int
func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
