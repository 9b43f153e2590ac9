package services

import (
	"context"

	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/repository"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

// AuditService exposes the append-only audit feed
type AuditService struct {
	log  logger.Logger
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService
func NewAuditService(log logger.Logger, repo repository.AuditRepository) *AuditService {
	return &AuditService{log: log, repo: repo}
}

// ListAudit returns the most recent entries, newest first. Non-positive
// limits use the default.
func (s *AuditService) ListAudit(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	if limit > MaxAuditLimit {
		limit = MaxAuditLimit
	}
	return s.repo.ListAuditLogs(ctx, limit)
}
