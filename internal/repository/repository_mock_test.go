package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/councilvote/internal/models"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Repository{db: db}, mock
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true},
		{"sqlite primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, true},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, false},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, true},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommitSubmission_VoteInsertFailureRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO unit_submissions").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectPrepare("INSERT INTO vote_results")
	mock.ExpectExec("INSERT INTO vote_results").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	sub := &models.UnitSubmission{PollingUnitID: 1, Round: 1, TotalSignatures: 3, SubmittedBy: "s"}
	err := repo.CommitSubmission(context.Background(), sub,
		[]models.VoteEntry{{CandidateID: 1, VoteCount: 3}}, &models.AuditLog{Action: models.ActionSubmit})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCommitSubmission_PostgresUniqueViolationIsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO unit_submissions").WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	sub := &models.UnitSubmission{PollingUnitID: 1, Round: 2, TotalSignatures: 0, SubmittedBy: "s"}
	err := repo.CommitSubmission(context.Background(), sub, nil, &models.AuditLog{Action: models.ActionRecount})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestCommitSubmission_BeginFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := repo.CommitSubmission(context.Background(), &models.UnitSubmission{}, nil, &models.AuditLog{})
	if err == nil || errors.Is(err, ErrConflict) {
		t.Errorf("expected plain error, got %v", err)
	}
}

func TestApplyLiveDelta_AuditFailureRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO live_tallies").WillReturnRows(sqlmock.NewRows([]string{"id", "count"}).AddRow(1, 4))
	mock.ExpectQuery("INSERT INTO audit_logs").WillReturnError(errors.New("audit table locked"))
	mock.ExpectRollback()

	_, err := repo.ApplyLiveDelta(context.Background(), LiveDelta{PollingUnitID: 1, TallyType: models.TallyVoid, Delta: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListCandidates_ScanError(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "candidate_number", "name", "party_name", "photo_url", "theme_color", "created_at"}).
		AddRow("bad-id", 1, "Ari", "P", nil, "#fff", fixedTime)
	mock.ExpectQuery("SELECT (.+) FROM candidates").WillReturnRows(rows)

	if _, err := repo.ListCandidates(context.Background()); err == nil {
		t.Error("expected scan error")
	}
}

func TestLatestVoteResults_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM vote_results").WillReturnError(errors.New("db down"))

	if _, err := repo.LatestVoteResults(context.Background()); err == nil {
		t.Error("expected query error")
	}
}

func TestMaxRound_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT MAX\\(round\\)").WillReturnError(errors.New("db down"))

	if _, err := repo.MaxRound(context.Background(), 1); err == nil {
		t.Error("expected query error")
	}
}

func TestUpdateConfig_RowsAffectedZero(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE system_config").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateConfig(context.Background(), &models.SystemConfig{ElectionTitle: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
