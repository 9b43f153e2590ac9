package services

import (
	"context"

	"github.com/abrezinsky/councilvote/internal/models"
)

// SubmissionServicer defines the interface for official submission operations
type SubmissionServicer interface {
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	Status(ctx context.Context, unitID int) (*SubmissionStatus, error)
}

// TallyServicer defines the interface for live tally operations
type TallyServicer interface {
	ApplyDelta(ctx context.Context, req DeltaRequest) (*models.LiveTally, error)
	ListTallies(ctx context.Context, unitID *int) ([]models.LiveTally, error)
}

// ResultsServicer defines the interface for results operations
type ResultsServicer interface {
	Results(ctx context.Context) (*Results, error)
	PublicResults(ctx context.Context) (*Results, error)
	PublicChartData(ctx context.Context) (*ChartData, error)
	Summary(ctx context.Context) (*Summary, error)
}

// CandidateServicer defines the interface for candidate operations
type CandidateServicer interface {
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	GetCandidate(ctx context.Context, id int) (*models.Candidate, error)
	CreateCandidate(ctx context.Context, in CandidateInput) (*models.Candidate, error)
	UpdateCandidate(ctx context.Context, id int, in CandidateInput) (*models.Candidate, error)
	DeleteCandidate(ctx context.Context, id int) error
}

// UnitServicer defines the interface for polling unit operations
type UnitServicer interface {
	ListUnits(ctx context.Context) ([]models.PollingUnit, error)
	GetUnit(ctx context.Context, id int) (*models.PollingUnit, error)
	CreateUnit(ctx context.Context, in UnitInput) (*models.PollingUnit, error)
	UpdateUnit(ctx context.Context, id int, in UnitInput) (*models.PollingUnit, error)
	DeleteUnit(ctx context.Context, id int) error
	AssignedUnit(ctx context.Context, user *models.User) (*models.PollingUnit, error)
	InitAssignedUnit(ctx context.Context, user *models.User, totalEligible, ballotsIssued int) (*models.PollingUnit, error)
}

// UserServicer defines the interface for account operations
type UserServicer interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, in UserInput) (*models.User, error)
	DeleteUser(ctx context.Context, id int) error
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Heartbeat(ctx context.Context, id int) error
}

// SettingsServicer defines the interface for election configuration
type SettingsServicer interface {
	GetConfig(ctx context.Context) (*models.SystemConfig, error)
	UpdateConfig(ctx context.Context, u ConfigUpdate) (*models.SystemConfig, error)
	IsPublicViewEnabled(ctx context.Context) (bool, error)
}

// AuditServicer defines the interface for the audit feed
type AuditServicer interface {
	ListAudit(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// ShareServicer defines the interface for public dashboard links
type ShareServicer interface {
	PublicURL() string
	PublicQRCode(size int) ([]byte, error)
}

// Ensure concrete types implement interfaces
var (
	_ SubmissionServicer = (*SubmissionService)(nil)
	_ TallyServicer      = (*TallyService)(nil)
	_ ResultsServicer    = (*ResultsService)(nil)
	_ CandidateServicer  = (*CandidateService)(nil)
	_ UnitServicer       = (*UnitService)(nil)
	_ UserServicer       = (*UserService)(nil)
	_ SettingsServicer   = (*SettingsService)(nil)
	_ AuditServicer      = (*AuditService)(nil)
	_ ShareServicer      = (*ShareService)(nil)
)
