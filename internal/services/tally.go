package services

import (
	"context"
	"fmt"

	"github.com/abrezinsky/councilvote/internal/errors"
	"github.com/abrezinsky/councilvote/internal/events"
	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/metrics"
	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/repository"
)

// allowedDeltas are the only steps the staff keypad can send
var allowedDeltas = map[int]bool{1: true, 5: true, -1: true, -5: true}

// TallyServiceRepository defines the repository methods needed by TallyService
type TallyServiceRepository interface {
	repository.TallyRepository
	GetUnit(ctx context.Context, id int) (*models.PollingUnit, error)
	GetCandidate(ctx context.Context, id int) (*models.Candidate, error)
}

// TallyService maintains the unofficial live counters
type TallyService struct {
	log         logger.Logger
	repo        TallyServiceRepository
	publisher   events.Publisher
	metrics     *metrics.Metrics
	broadcaster Broadcaster
}

// NewTallyService creates a new TallyService. metrics may be nil.
func NewTallyService(log logger.Logger, repo TallyServiceRepository, publisher events.Publisher, m *metrics.Metrics) *TallyService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &TallyService{log: log, repo: repo, publisher: publisher, metrics: m}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *TallyService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// DeltaRequest is one keypad press from a staff device
type DeltaRequest struct {
	PollingUnitID int    `json:"pollingUnitId"`
	CandidateID   *int   `json:"candidateId"`
	TallyType     string `json:"tallyType"`
	Delta         int    `json:"delta"`

	PerformedBy string `json:"-"`
}

// ApplyDelta moves a live counter by one of +1, +5, -1, -5. Counts floor at
// zero without error. The candidate id is ignored for NO_VOTE and VOID.
func (s *TallyService) ApplyDelta(ctx context.Context, req DeltaRequest) (*models.LiveTally, error) {
	if !allowedDeltas[req.Delta] {
		return nil, errors.InvalidInputf("delta must be one of 1, 5, -1, -5 (got %d)", req.Delta)
	}

	label := ""
	switch req.TallyType {
	case models.TallyCandidate:
		if req.CandidateID == nil {
			return nil, errors.Validation("candidateId is required for CANDIDATE tallies")
		}
		c, err := s.repo.GetCandidate(ctx, *req.CandidateID)
		if err != nil {
			return nil, translate(err, fmt.Sprintf("candidate %d not found", *req.CandidateID), "")
		}
		label = fmt.Sprintf("#%d %s", c.CandidateNumber, c.Name)
	case models.TallyNoVote:
		req.CandidateID = nil
		label = "no vote"
	case models.TallyVoid:
		req.CandidateID = nil
		label = "void"
	default:
		return nil, errors.InvalidInputf("unknown tally type %q", req.TallyType)
	}

	if req.PollingUnitID <= 0 {
		return nil, errors.Validation("pollingUnitId is required")
	}
	unit, err := s.repo.GetUnit(ctx, req.PollingUnitID)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("polling unit %d not found", req.PollingUnitID), "")
	}

	details := func(count int) string {
		return fmt.Sprintf("Live %s %+d (total %d)", label, req.Delta, count)
	}
	tally, err := s.repo.ApplyLiveDelta(ctx, repository.LiveDelta{
		PollingUnitID: unit.ID,
		CandidateID:   req.CandidateID,
		TallyType:     req.TallyType,
		Delta:         req.Delta,
		PollingUnit:   unit.Name,
		PerformedBy:   req.PerformedBy,
		Details:       details,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.LiveDeltaApplied(req.TallyType)
	s.log.Debug("Live tally updated", "unit_id", unit.ID, "tally_type", req.TallyType, "delta", req.Delta, "count", tally.Count)

	audit := models.AuditLog{
		Action:      models.ActionLiveUpdate,
		PollingUnit: unit.Name,
		Details:     details(tally.Count),
		PerformedBy: req.PerformedBy,
		CreatedAt:   tally.UpdatedAt,
	}
	if err := s.publisher.Publish(ctx, events.FromAuditLog(audit)); err != nil {
		s.log.Warn("Failed to publish audit event", "unit_id", unit.ID, "error", err)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage("tally_update", tally)
	}
	return tally, nil
}

// ListTallies returns the live counters of one unit, or all units when unitID is nil
func (s *TallyService) ListTallies(ctx context.Context, unitID *int) ([]models.LiveTally, error) {
	return s.repo.ListLiveTallies(ctx, unitID)
}
