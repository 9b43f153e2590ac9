package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/abrezinsky/councilvote/internal/errors"
	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/repository"
)

// UnitService handles polling unit administration and staff unit setup
type UnitService struct {
	log  logger.Logger
	repo repository.UnitRepository
}

// NewUnitService creates a new UnitService
func NewUnitService(log logger.Logger, repo repository.UnitRepository) *UnitService {
	return &UnitService{log: log, repo: repo}
}

// UnitInput is the editable part of a polling unit
type UnitInput struct {
	Name          string `json:"name"`
	Grade         string `json:"grade"`
	TotalEligible int    `json:"totalEligible"`
	BallotsIssued int    `json:"ballotsIssued"`
}

func (in UnitInput) toModel() (models.PollingUnit, error) {
	u := models.PollingUnit{
		Name:          strings.TrimSpace(in.Name),
		Grade:         strings.TrimSpace(in.Grade),
		TotalEligible: in.TotalEligible,
		BallotsIssued: in.BallotsIssued,
	}
	if u.Name == "" || u.Grade == "" {
		return u, errors.Validation("name and grade are required")
	}
	if u.TotalEligible < 0 || u.BallotsIssued < 0 {
		return u, errors.Validation("totalEligible and ballotsIssued must not be negative")
	}
	return u, nil
}

// ListUnits returns units ordered by grade then name
func (s *UnitService) ListUnits(ctx context.Context) ([]models.PollingUnit, error) {
	return s.repo.ListUnits(ctx)
}

// GetUnit returns a single unit
func (s *UnitService) GetUnit(ctx context.Context, id int) (*models.PollingUnit, error) {
	u, err := s.repo.GetUnit(ctx, id)
	return u, translate(err, fmt.Sprintf("polling unit %d not found", id), "")
}

// CreateUnit registers a polling unit
func (s *UnitService) CreateUnit(ctx context.Context, in UnitInput) (*models.PollingUnit, error) {
	u, err := in.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateUnit(ctx, &u); err != nil {
		return nil, err
	}
	s.log.Info("Polling unit created", "unit_id", u.ID, "name", u.Name, "grade", u.Grade)
	return &u, nil
}

// UpdateUnit overwrites a unit's details
func (s *UnitService) UpdateUnit(ctx context.Context, id int, in UnitInput) (*models.PollingUnit, error) {
	u, err := in.toModel()
	if err != nil {
		return nil, err
	}
	u.ID = id
	if err := s.repo.UpdateUnit(ctx, &u); err != nil {
		return nil, translate(err, fmt.Sprintf("polling unit %d not found", id), "")
	}
	return s.GetUnit(ctx, id)
}

// DeleteUnit removes a unit that has never submitted
func (s *UnitService) DeleteUnit(ctx context.Context, id int) error {
	if err := s.repo.DeleteUnit(ctx, id); err != nil {
		return translate(err, fmt.Sprintf("polling unit %d not found", id),
			"polling unit has submitted results and cannot be deleted")
	}
	s.log.Info("Polling unit deleted", "unit_id", id)
	return nil
}

// AssignedUnit returns the unit assigned to a staff user
func (s *UnitService) AssignedUnit(ctx context.Context, user *models.User) (*models.PollingUnit, error) {
	if user.PollingUnitID == nil {
		return nil, errors.Validation("no polling unit is assigned to this account")
	}
	return s.GetUnit(ctx, *user.PollingUnitID)
}

// InitAssignedUnit records the eligible voter and ballot counts for the
// caller's unit. Refused once the unit has an official submission.
func (s *UnitService) InitAssignedUnit(ctx context.Context, user *models.User, totalEligible, ballotsIssued int) (*models.PollingUnit, error) {
	if user.PollingUnitID == nil {
		return nil, errors.Validation("no polling unit is assigned to this account")
	}
	if totalEligible < 0 || ballotsIssued < 0 {
		return nil, errors.Validation("totalEligible and ballotsIssued must not be negative")
	}
	id := *user.PollingUnitID
	if err := s.repo.InitUnit(ctx, id, totalEligible, ballotsIssued); err != nil {
		return nil, translate(err, fmt.Sprintf("polling unit %d not found", id),
			"unit setup is locked after the first submission")
	}
	s.log.Info("Polling unit initialized", "unit_id", id, "eligible", totalEligible, "ballots", ballotsIssued, "by", user.Username)
	return s.GetUnit(ctx, id)
}
