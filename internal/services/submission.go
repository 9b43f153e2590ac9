package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"

	"github.com/abrezinsky/councilvote/internal/errors"
	"github.com/abrezinsky/councilvote/internal/events"
	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/metrics"
	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/repository"
)

// SubmissionServiceRepository defines the repository methods needed by SubmissionService
type SubmissionServiceRepository interface {
	repository.SubmissionRepository
	GetUnit(ctx context.Context, id int) (*models.PollingUnit, error)
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
}

// SubmissionService validates and commits official rounds for polling units
type SubmissionService struct {
	log         logger.Logger
	repo        SubmissionServiceRepository
	publisher   events.Publisher
	metrics     *metrics.Metrics
	broadcaster Broadcaster
}

// NewSubmissionService creates a new SubmissionService. metrics may be nil.
func NewSubmissionService(log logger.Logger, repo SubmissionServiceRepository, publisher events.Publisher, m *metrics.Metrics) *SubmissionService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &SubmissionService{log: log, repo: repo, publisher: publisher, metrics: m}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *SubmissionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SubmitRequest is one official round for a unit. Pointer and nil-slice
// fields distinguish "absent" from zero.
type SubmitRequest struct {
	PollingUnitID    *int               `json:"pollingUnitId"`
	TotalSignatures  *int               `json:"totalSignatures"`
	BallotsIssued    int                `json:"ballotsIssued"`
	BallotsRemaining int                `json:"ballotsRemaining"`
	TotalNoVote      int                `json:"totalNoVote"`
	TotalVoidBallots int                `json:"totalVoidBallots"`
	Votes            []models.VoteEntry `json:"votes"`
	PhotoEvidence    string             `json:"photoEvidence,omitempty"`
	Reason           string             `json:"reason,omitempty"`

	// SubmittedBy is the session identity of the caller, never read from the body
	SubmittedBy string `json:"-"`
}

// SubmitResult is returned for a committed round
type SubmitResult struct {
	Success    bool                  `json:"success"`
	Round      int                   `json:"round"`
	Submission models.UnitSubmission `json:"submission"`
	Message    string                `json:"message"`
}

// SubmissionStatus is the submission history of a unit
type SubmissionStatus struct {
	Submissions  []models.UnitSubmission `json:"submissions"`
	LatestVotes  []models.VoteResult     `json:"latestVotes"`
	CurrentRound int                     `json:"currentRound"`
}

// Submit validates a round and commits it atomically. Checks run in a fixed
// order and all of them happen before anything is written:
// required fields, balance, round assignment, recount reason, unit lookup.
// Submit is not idempotent; every accepted call creates a new round.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if req.PollingUnitID == nil || req.TotalSignatures == nil || req.Votes == nil {
		s.metrics.SubmissionRejected("missing_fields")
		return nil, errors.Validation("pollingUnitId, totalSignatures and votes are required")
	}
	if *req.PollingUnitID <= 0 {
		s.metrics.SubmissionRejected("missing_fields")
		return nil, errors.Validation("pollingUnitId must be a positive id")
	}
	if err := validateCounts(req); err != nil {
		s.metrics.SubmissionRejected("invalid_counts")
		return nil, err
	}
	unitID := *req.PollingUnitID

	candidateVotes, counted, err := countBallots(req)
	if err != nil {
		s.metrics.SubmissionRejected("invalid_counts")
		return nil, err
	}
	if counted != *req.TotalSignatures {
		s.metrics.SubmissionRejected("balance")
		s.log.Warn("Submission out of balance", "unit_id", unitID, "counted", counted, "signatures", *req.TotalSignatures)
		return nil, errors.Balance(counted, *req.TotalSignatures)
	}

	maxRound, err := s.repo.MaxRound(ctx, unitID)
	if err != nil {
		return nil, err
	}
	round := maxRound + 1

	reason := strings.TrimSpace(req.Reason)
	if round > 1 && reason == "" {
		s.metrics.SubmissionRejected("missing_reason")
		return nil, errors.MissingReason(fmt.Sprintf("a reason is required for recount round %d", round))
	}
	if round == 1 {
		reason = ""
	}

	unit, err := s.repo.GetUnit(ctx, unitID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			s.metrics.SubmissionRejected("unknown_unit")
		}
		return nil, translate(err, fmt.Sprintf("polling unit %d not found", unitID), "")
	}

	if err := s.checkCandidates(ctx, req.Votes); err != nil {
		s.metrics.SubmissionRejected("invalid_votes")
		return nil, err
	}

	action := models.ActionSubmit
	kind := "submit"
	if round > 1 {
		action = models.ActionRecount
		kind = "recount"
	}

	sub := &models.UnitSubmission{
		PollingUnitID:    unitID,
		PollingUnitName:  unit.Name,
		Round:            round,
		TotalSignatures:  *req.TotalSignatures,
		BallotsIssued:    req.BallotsIssued,
		BallotsRemaining: req.BallotsRemaining,
		TotalNoVote:      req.TotalNoVote,
		TotalVoidBallots: req.TotalVoidBallots,
		PhotoEvidence:    req.PhotoEvidence,
		SubmittedBy:      req.SubmittedBy,
		Reason:           reason,
	}
	audit := &models.AuditLog{
		Action:      action,
		PollingUnit: unit.Name,
		Round:       &round,
		Details: fmt.Sprintf("Round %d: %d signatures, %d candidate votes, %d no vote, %d void",
			round, *req.TotalSignatures, candidateVotes, req.TotalNoVote, req.TotalVoidBallots),
		Reason:      reason,
		PerformedBy: req.SubmittedBy,
	}

	if err := s.repo.CommitSubmission(ctx, sub, req.Votes, audit); err != nil {
		if stderrors.Is(err, repository.ErrConflict) {
			s.metrics.SubmissionRejected("conflict")
			s.log.Warn("Round collision", "unit_id", unitID, "round", round)
			return nil, errors.Wrap(err, errors.ErrConflict,
				fmt.Sprintf("round %d for %s was submitted concurrently; reload the current round and resubmit", round, unit.Name))
		}
		return nil, err
	}

	s.metrics.SubmissionCommitted(kind)
	s.log.Info("Submission committed", "unit_id", unitID, "unit", unit.Name, "round", round, "submitted_by", req.SubmittedBy)

	if err := s.publisher.Publish(ctx, events.FromAuditLog(*audit)); err != nil {
		s.log.Warn("Failed to publish audit event", "unit_id", unitID, "round", round, "error", err)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage("submission", map[string]interface{}{
			"pollingUnitId": unitID,
			"round":         round,
		})
	}

	message := fmt.Sprintf("Round %d submitted for %s", round, unit.Name)
	if round > 1 {
		message = fmt.Sprintf("Recount round %d submitted for %s", round, unit.Name)
	}
	return &SubmitResult{Success: true, Round: round, Submission: *sub, Message: message}, nil
}

// validateCounts rejects negative counts, counts larger than the signature
// total and repeated candidates
func validateCounts(req SubmitRequest) error {
	sigs := *req.TotalSignatures
	if sigs < 0 || req.BallotsIssued < 0 || req.BallotsRemaining < 0 ||
		req.TotalNoVote < 0 || req.TotalVoidBallots < 0 {
		return errors.Validation("counts must not be negative")
	}
	if req.TotalNoVote > sigs || req.TotalVoidBallots > sigs {
		return errors.Validationf("no vote and void counts cannot exceed %d signatures", sigs)
	}
	seen := make(map[int]bool, len(req.Votes))
	for _, v := range req.Votes {
		if v.VoteCount < 0 {
			return errors.Validationf("vote count for candidate %d must not be negative", v.CandidateID)
		}
		if v.VoteCount > sigs {
			return errors.Validationf("vote count for candidate %d cannot exceed %d signatures", v.CandidateID, sigs)
		}
		if seen[v.CandidateID] {
			return errors.Validationf("candidate %d appears more than once", v.CandidateID)
		}
		seen[v.CandidateID] = true
	}
	return nil
}

// countBallots sums candidate votes and all counted ballots. Counts are
// already non-negative, so a sum that would pass math.MaxInt is rejected
// instead of wrapping.
func countBallots(req SubmitRequest) (candidateVotes, counted int, err error) {
	add := func(sum, n int) (int, error) {
		if n > math.MaxInt-sum {
			return 0, errors.Validation("counts are too large to tally")
		}
		return sum + n, nil
	}
	for _, v := range req.Votes {
		if candidateVotes, err = add(candidateVotes, v.VoteCount); err != nil {
			return 0, 0, err
		}
	}
	if counted, err = add(candidateVotes, req.TotalNoVote); err != nil {
		return 0, 0, err
	}
	if counted, err = add(counted, req.TotalVoidBallots); err != nil {
		return 0, 0, err
	}
	return candidateVotes, counted, nil
}

// checkCandidates ensures every vote names a registered candidate
func (s *SubmissionService) checkCandidates(ctx context.Context, votes []models.VoteEntry) error {
	candidates, err := s.repo.ListCandidates(ctx)
	if err != nil {
		return err
	}
	known := make(map[int]bool, len(candidates))
	for _, c := range candidates {
		known[c.ID] = true
	}
	for _, v := range votes {
		if !known[v.CandidateID] {
			return errors.Validationf("candidate %d does not exist", v.CandidateID)
		}
	}
	return nil
}

// Status returns all rounds of a unit newest first, the votes of the latest
// round, and the latest round number (0 before the first submission).
func (s *SubmissionService) Status(ctx context.Context, unitID int) (*SubmissionStatus, error) {
	if _, err := s.repo.GetUnit(ctx, unitID); err != nil {
		return nil, translate(err, fmt.Sprintf("polling unit %d not found", unitID), "")
	}

	subs, err := s.repo.ListSubmissions(ctx, unitID)
	if err != nil {
		return nil, err
	}

	status := &SubmissionStatus{Submissions: subs, LatestVotes: []models.VoteResult{}}
	if len(subs) == 0 {
		return status, nil
	}

	status.CurrentRound = subs[0].Round
	status.LatestVotes, err = s.repo.ListVoteResults(ctx, unitID, status.CurrentRound)
	if err != nil {
		return nil, err
	}
	return status, nil
}
