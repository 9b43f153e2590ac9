package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/abrezinsky/councilvote/internal/errors"
	"github.com/abrezinsky/councilvote/internal/events"
	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/metrics"
	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/repository"
	"github.com/abrezinsky/councilvote/internal/services"
	"github.com/abrezinsky/councilvote/internal/testutil"
)

// fixture is a small election: one unit with two candidates
type fixture struct {
	repo  *repository.Repository
	unit  models.PollingUnit
	alice models.Candidate
	bob   models.Candidate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	return &fixture{
		repo:  repo,
		unit:  testutil.MustUnit(t, repo, "Grade 9A", "Grade 9", 40),
		alice: testutil.MustCandidate(t, repo, 1, "Alice"),
		bob:   testutil.MustCandidate(t, repo, 2, "Bob"),
	}
}

// recordingBroadcaster captures websocket broadcasts
type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []string
	payloads []interface{}
}

func (b *recordingBroadcaster) BroadcastMessage(msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msgType)
	b.payloads = append(b.payloads, payload)
}

// recordingPublisher captures audit events, optionally failing every publish
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.AuditEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.AuditEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newSubmissionService(repo services.SubmissionServiceRepository, pub events.Publisher) *services.SubmissionService {
	return services.NewSubmissionService(logger.New(), repo, pub, metrics.New())
}

func intPtr(n int) *int { return &n }

// submitReq builds a round for the fixture unit
func (f *fixture) submitReq(sigs, alice, bob, noVote, void int, reason string) services.SubmitRequest {
	return services.SubmitRequest{
		PollingUnitID:    intPtr(f.unit.ID),
		TotalSignatures:  intPtr(sigs),
		BallotsIssued:    40,
		BallotsRemaining: 40 - sigs,
		TotalNoVote:      noVote,
		TotalVoidBallots: void,
		Votes: []models.VoteEntry{
			{CandidateID: f.alice.ID, VoteCount: alice},
			{CandidateID: f.bob.ID, VoteCount: bob},
		},
		Reason:      reason,
		SubmittedBy: "gr9a",
	}
}

func expectKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if got := errors.KindOf(err); got != kind {
		t.Fatalf("expected %v error, got %v (%v)", kind, got, err)
	}
}

func mustUnit(t *testing.T, f *fixture, name, grade string) models.PollingUnit {
	t.Helper()
	return testutil.MustUnit(t, f.repo, name, grade, 30)
}
