package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/abrezinsky/councilvote/internal/errors"
	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/repository"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CandidateService handles candidate administration
type CandidateService struct {
	log  logger.Logger
	repo repository.CandidateRepository
}

// NewCandidateService creates a new CandidateService
func NewCandidateService(log logger.Logger, repo repository.CandidateRepository) *CandidateService {
	return &CandidateService{log: log, repo: repo}
}

// CandidateInput is the editable part of a candidate
type CandidateInput struct {
	CandidateNumber int    `json:"candidateNumber"`
	Name            string `json:"name"`
	PartyName       string `json:"partyName"`
	PhotoURL        string `json:"photoUrl"`
	ThemeColor      string `json:"themeColor"`
}

func (in CandidateInput) toModel() (models.Candidate, error) {
	c := models.Candidate{
		CandidateNumber: in.CandidateNumber,
		Name:            strings.TrimSpace(in.Name),
		PartyName:       strings.TrimSpace(in.PartyName),
		PhotoURL:        strings.TrimSpace(in.PhotoURL),
		ThemeColor:      strings.TrimSpace(in.ThemeColor),
	}
	if c.CandidateNumber <= 0 || c.Name == "" || c.PartyName == "" {
		return c, errors.Validation("candidateNumber, name and partyName are required")
	}
	if c.ThemeColor == "" {
		c.ThemeColor = models.DefaultThemeColor
	}
	if !hexColor.MatchString(c.ThemeColor) {
		return c, errors.Validationf("themeColor %q must look like #RRGGBB", c.ThemeColor)
	}
	return c, nil
}

// ListCandidates returns candidates ordered by ballot number
func (s *CandidateService) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	return s.repo.ListCandidates(ctx)
}

// GetCandidate returns a single candidate
func (s *CandidateService) GetCandidate(ctx context.Context, id int) (*models.Candidate, error) {
	c, err := s.repo.GetCandidate(ctx, id)
	return c, translate(err, fmt.Sprintf("candidate %d not found", id), "")
}

// CreateCandidate registers a candidate
func (s *CandidateService) CreateCandidate(ctx context.Context, in CandidateInput) (*models.Candidate, error) {
	c, err := in.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateCandidate(ctx, &c); err != nil {
		return nil, translate(err, "", fmt.Sprintf("candidate number %d is already in use", c.CandidateNumber))
	}
	s.log.Info("Candidate created", "candidate_id", c.ID, "number", c.CandidateNumber, "name", c.Name)
	return &c, nil
}

// UpdateCandidate overwrites a candidate's details
func (s *CandidateService) UpdateCandidate(ctx context.Context, id int, in CandidateInput) (*models.Candidate, error) {
	c, err := in.toModel()
	if err != nil {
		return nil, err
	}
	c.ID = id
	if err := s.repo.UpdateCandidate(ctx, &c); err != nil {
		return nil, translate(err, fmt.Sprintf("candidate %d not found", id),
			fmt.Sprintf("candidate number %d is already in use", c.CandidateNumber))
	}
	return s.GetCandidate(ctx, id)
}

// DeleteCandidate removes a candidate who has no official votes recorded
func (s *CandidateService) DeleteCandidate(ctx context.Context, id int) error {
	if err := s.repo.DeleteCandidate(ctx, id); err != nil {
		return translate(err, fmt.Sprintf("candidate %d not found", id),
			"candidate appears in submitted results and cannot be deleted")
	}
	s.log.Info("Candidate deleted", "candidate_id", id)
	return nil
}
