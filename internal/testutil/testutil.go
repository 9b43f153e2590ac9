package testutil

import (
	"context"
	"testing"

	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied and the
// configuration row seeded.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	if _, err := repo.SeedConfig(context.Background(), models.SystemConfig{
		ElectionTitle: "Student Council Election",
		SchoolName:    "Test School",
	}); err != nil {
		t.Fatalf("failed to seed config: %v", err)
	}

	return repo
}

// MustCandidate inserts a candidate with the given ballot number and name
func MustCandidate(t *testing.T, repo repository.CandidateRepository, number int, name string) models.Candidate {
	t.Helper()
	c := models.Candidate{CandidateNumber: number, Name: name, PartyName: name + " Party", ThemeColor: models.DefaultThemeColor}
	if err := repo.CreateCandidate(context.Background(), &c); err != nil {
		t.Fatalf("CreateCandidate(%s) failed: %v", name, err)
	}
	return c
}

// MustUnit inserts a polling unit
func MustUnit(t *testing.T, repo repository.UnitRepository, name, grade string, eligible int) models.PollingUnit {
	t.Helper()
	u := models.PollingUnit{Name: name, Grade: grade, TotalEligible: eligible}
	if err := repo.CreateUnit(context.Background(), &u); err != nil {
		t.Fatalf("CreateUnit(%s) failed: %v", name, err)
	}
	return u
}
