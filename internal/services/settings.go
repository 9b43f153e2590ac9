package services

import (
	"context"
	"strings"

	"github.com/abrezinsky/councilvote/internal/errors"
	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/repository"
)

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastMessage(msgType string, payload interface{})
}

// SettingsService manages the singleton election configuration
type SettingsService struct {
	log         logger.Logger
	repo        repository.ConfigRepository
	broadcaster Broadcaster
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.ConfigRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *SettingsService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// ConfigUpdate is a partial update; nil fields are left unchanged
type ConfigUpdate struct {
	PublicViewEnabled *bool   `json:"publicViewEnabled"`
	ElectionTitle     *string `json:"electionTitle"`
	SchoolName        *string `json:"schoolName"`
}

// Seed writes the configuration row once at startup and returns what is stored
func (s *SettingsService) Seed(ctx context.Context, defaults models.SystemConfig) (*models.SystemConfig, error) {
	cfg, err := s.repo.SeedConfig(ctx, defaults)
	if err != nil {
		return nil, err
	}
	s.log.Info("Election config loaded", "title", cfg.ElectionTitle, "public_view", cfg.PublicViewEnabled)
	return cfg, nil
}

// GetConfig returns the election configuration
func (s *SettingsService) GetConfig(ctx context.Context) (*models.SystemConfig, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, translate(err, "election config has not been initialized", "")
	}
	return cfg, nil
}

// UpdateConfig applies a partial update
func (s *SettingsService) UpdateConfig(ctx context.Context, u ConfigUpdate) (*models.SystemConfig, error) {
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	wasPublic := cfg.PublicViewEnabled

	if u.PublicViewEnabled != nil {
		cfg.PublicViewEnabled = *u.PublicViewEnabled
	}
	if u.ElectionTitle != nil {
		title := strings.TrimSpace(*u.ElectionTitle)
		if title == "" {
			return nil, errors.Validation("electionTitle must not be empty")
		}
		cfg.ElectionTitle = title
	}
	if u.SchoolName != nil {
		school := strings.TrimSpace(*u.SchoolName)
		if school == "" {
			return nil, errors.Validation("schoolName must not be empty")
		}
		cfg.SchoolName = school
	}

	if err := s.repo.UpdateConfig(ctx, cfg); err != nil {
		return nil, err
	}
	s.log.Info("Election config updated", "public_view", cfg.PublicViewEnabled, "title", cfg.ElectionTitle)

	if s.broadcaster != nil && wasPublic != cfg.PublicViewEnabled {
		s.broadcaster.BroadcastMessage("public_view", map[string]interface{}{"enabled": cfg.PublicViewEnabled})
	}
	return cfg, nil
}

// IsPublicViewEnabled reports the public dashboard flag
func (s *SettingsService) IsPublicViewEnabled(ctx context.Context) (bool, error) {
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return false, err
	}
	return cfg.PublicViewEnabled, nil
}
