package mock

import (
	"context"
	"time"

	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.CommitSubmissionError = repository.ErrConflict
//	svc := services.NewSubmissionService(log, mockRepo, events.Noop{}, nil)
//	_, err := svc.Submit(ctx, req)
//	// err will now carry the injected conflict
type Repository struct {
	repository.FullRepository

	// ===== Candidate Errors =====
	ListCandidatesError  error
	GetCandidateError    error
	CreateCandidateError error
	DeleteCandidateError error

	// ===== Unit Errors =====
	ListUnitsError error
	GetUnitError   error
	InitUnitError  error

	// ===== User Errors =====
	GetUserByUsernameError error
	CountUsersError        error
	CreateUserError        error
	SetSessionTokenError   error
	TouchLastSeenError     error

	// ===== Tally Errors =====
	ApplyLiveDeltaError  error
	ListLiveTalliesError error

	// ===== Submission Errors =====
	MaxRoundError          error
	CommitSubmissionError  error
	ListSubmissionsError   error
	LatestSubmissionsError error
	ListVoteResultsError   error
	LatestVoteResultsError error

	// ===== Audit / Config Errors =====
	ListAuditLogsError error
	GetConfigError     error
	UpdateConfigError  error
	PingError          error

	// CommitCalls counts CommitSubmission invocations that reached the store
	CommitCalls int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Candidate Methods =====

func (m *Repository) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	if m.ListCandidatesError != nil {
		return nil, m.ListCandidatesError
	}
	return m.FullRepository.ListCandidates(ctx)
}

func (m *Repository) GetCandidate(ctx context.Context, id int) (*models.Candidate, error) {
	if m.GetCandidateError != nil {
		return nil, m.GetCandidateError
	}
	return m.FullRepository.GetCandidate(ctx, id)
}

func (m *Repository) CreateCandidate(ctx context.Context, c *models.Candidate) error {
	if m.CreateCandidateError != nil {
		return m.CreateCandidateError
	}
	return m.FullRepository.CreateCandidate(ctx, c)
}

func (m *Repository) DeleteCandidate(ctx context.Context, id int) error {
	if m.DeleteCandidateError != nil {
		return m.DeleteCandidateError
	}
	return m.FullRepository.DeleteCandidate(ctx, id)
}

// ===== Unit Methods =====

func (m *Repository) ListUnits(ctx context.Context) ([]models.PollingUnit, error) {
	if m.ListUnitsError != nil {
		return nil, m.ListUnitsError
	}
	return m.FullRepository.ListUnits(ctx)
}

func (m *Repository) GetUnit(ctx context.Context, id int) (*models.PollingUnit, error) {
	if m.GetUnitError != nil {
		return nil, m.GetUnitError
	}
	return m.FullRepository.GetUnit(ctx, id)
}

func (m *Repository) InitUnit(ctx context.Context, id, totalEligible, ballotsIssued int) error {
	if m.InitUnitError != nil {
		return m.InitUnitError
	}
	return m.FullRepository.InitUnit(ctx, id, totalEligible, ballotsIssued)
}

// ===== User Methods =====

func (m *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetUserByUsernameError != nil {
		return nil, m.GetUserByUsernameError
	}
	return m.FullRepository.GetUserByUsername(ctx, username)
}

func (m *Repository) CountUsers(ctx context.Context) (int, error) {
	if m.CountUsersError != nil {
		return 0, m.CountUsersError
	}
	return m.FullRepository.CountUsers(ctx)
}

func (m *Repository) CreateUser(ctx context.Context, u *models.User) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}
	return m.FullRepository.CreateUser(ctx, u)
}

func (m *Repository) SetSessionToken(ctx context.Context, id int, token string) error {
	if m.SetSessionTokenError != nil {
		return m.SetSessionTokenError
	}
	return m.FullRepository.SetSessionToken(ctx, id, token)
}

func (m *Repository) TouchLastSeen(ctx context.Context, id int, at time.Time) error {
	if m.TouchLastSeenError != nil {
		return m.TouchLastSeenError
	}
	return m.FullRepository.TouchLastSeen(ctx, id, at)
}

// ===== Tally Methods =====

func (m *Repository) ApplyLiveDelta(ctx context.Context, d repository.LiveDelta) (*models.LiveTally, error) {
	if m.ApplyLiveDeltaError != nil {
		return nil, m.ApplyLiveDeltaError
	}
	return m.FullRepository.ApplyLiveDelta(ctx, d)
}

func (m *Repository) ListLiveTallies(ctx context.Context, unitID *int) ([]models.LiveTally, error) {
	if m.ListLiveTalliesError != nil {
		return nil, m.ListLiveTalliesError
	}
	return m.FullRepository.ListLiveTallies(ctx, unitID)
}

// ===== Submission Methods =====

func (m *Repository) MaxRound(ctx context.Context, unitID int) (int, error) {
	if m.MaxRoundError != nil {
		return 0, m.MaxRoundError
	}
	return m.FullRepository.MaxRound(ctx, unitID)
}

func (m *Repository) CommitSubmission(ctx context.Context, sub *models.UnitSubmission, votes []models.VoteEntry, audit *models.AuditLog) error {
	m.CommitCalls++
	if m.CommitSubmissionError != nil {
		return m.CommitSubmissionError
	}
	return m.FullRepository.CommitSubmission(ctx, sub, votes, audit)
}

func (m *Repository) ListSubmissions(ctx context.Context, unitID int) ([]models.UnitSubmission, error) {
	if m.ListSubmissionsError != nil {
		return nil, m.ListSubmissionsError
	}
	return m.FullRepository.ListSubmissions(ctx, unitID)
}

func (m *Repository) LatestSubmissions(ctx context.Context) ([]models.UnitSubmission, error) {
	if m.LatestSubmissionsError != nil {
		return nil, m.LatestSubmissionsError
	}
	return m.FullRepository.LatestSubmissions(ctx)
}

func (m *Repository) ListVoteResults(ctx context.Context, unitID, round int) ([]models.VoteResult, error) {
	if m.ListVoteResultsError != nil {
		return nil, m.ListVoteResultsError
	}
	return m.FullRepository.ListVoteResults(ctx, unitID, round)
}

func (m *Repository) LatestVoteResults(ctx context.Context) ([]models.VoteResult, error) {
	if m.LatestVoteResultsError != nil {
		return nil, m.LatestVoteResultsError
	}
	return m.FullRepository.LatestVoteResults(ctx)
}

// ===== Audit / Config Methods =====

func (m *Repository) ListAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if m.ListAuditLogsError != nil {
		return nil, m.ListAuditLogsError
	}
	return m.FullRepository.ListAuditLogs(ctx, limit)
}

func (m *Repository) GetConfig(ctx context.Context) (*models.SystemConfig, error) {
	if m.GetConfigError != nil {
		return nil, m.GetConfigError
	}
	return m.FullRepository.GetConfig(ctx)
}

func (m *Repository) UpdateConfig(ctx context.Context, c *models.SystemConfig) error {
	if m.UpdateConfigError != nil {
		return m.UpdateConfigError
	}
	return m.FullRepository.UpdateConfig(ctx, c)
}

func (m *Repository) Ping(ctx context.Context) error {
	if m.PingError != nil {
		return m.PingError
	}
	return m.FullRepository.Ping(ctx)
}
