package repository

import (
	"context"
	"time"

	"github.com/abrezinsky/councilvote/internal/models"
)

// CandidateRepository defines candidate data operations
type CandidateRepository interface {
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	GetCandidate(ctx context.Context, id int) (*models.Candidate, error)
	CreateCandidate(ctx context.Context, c *models.Candidate) error
	UpdateCandidate(ctx context.Context, c *models.Candidate) error
	DeleteCandidate(ctx context.Context, id int) error
}

// UnitRepository defines polling unit data operations
type UnitRepository interface {
	ListUnits(ctx context.Context) ([]models.PollingUnit, error)
	GetUnit(ctx context.Context, id int) (*models.PollingUnit, error)
	CreateUnit(ctx context.Context, u *models.PollingUnit) error
	UpdateUnit(ctx context.Context, u *models.PollingUnit) error
	InitUnit(ctx context.Context, id, totalEligible, ballotsIssued int) error
	DeleteUnit(ctx context.Context, id int) error
}

// UserRepository defines user account data operations
type UserRepository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CountUsers(ctx context.Context) (int, error)
	CreateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id int) error
	SetSessionToken(ctx context.Context, id int, token string) error
	TouchLastSeen(ctx context.Context, id int, at time.Time) error
}

// TallyRepository defines live tally ledger operations
type TallyRepository interface {
	ApplyLiveDelta(ctx context.Context, d LiveDelta) (*models.LiveTally, error)
	ListLiveTallies(ctx context.Context, unitID *int) ([]models.LiveTally, error)
}

// SubmissionRepository defines official submission operations
type SubmissionRepository interface {
	MaxRound(ctx context.Context, unitID int) (int, error)
	CommitSubmission(ctx context.Context, sub *models.UnitSubmission, votes []models.VoteEntry, audit *models.AuditLog) error
	ListSubmissions(ctx context.Context, unitID int) ([]models.UnitSubmission, error)
	LatestSubmissions(ctx context.Context) ([]models.UnitSubmission, error)
	ListVoteResults(ctx context.Context, unitID, round int) ([]models.VoteResult, error)
	LatestVoteResults(ctx context.Context) ([]models.VoteResult, error)
}

// AuditRepository defines audit feed operations
type AuditRepository interface {
	ListAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// ConfigRepository defines system configuration operations
type ConfigRepository interface {
	SeedConfig(ctx context.Context, defaults models.SystemConfig) (*models.SystemConfig, error)
	GetConfig(ctx context.Context) (*models.SystemConfig, error)
	UpdateConfig(ctx context.Context, c *models.SystemConfig) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	CandidateRepository
	UnitRepository
	UserRepository
	TallyRepository
	SubmissionRepository
	AuditRepository
	ConfigRepository
	Ping(ctx context.Context) error
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
