package services_test

import (
	"context"
	"testing"

	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/services"
)

// limitRecorder records the limit passed to the store
type limitRecorder struct {
	limit int
}

func (r *limitRecorder) ListAuditLogs(_ context.Context, limit int) ([]models.AuditLog, error) {
	r.limit = limit
	return nil, nil
}

func TestListAudit_Limits(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, services.DefaultAuditLimit},
		{-3, services.DefaultAuditLimit},
		{10, 10},
		{services.MaxAuditLimit + 1, services.MaxAuditLimit},
	}

	for _, tt := range tests {
		rec := &limitRecorder{}
		svc := services.NewAuditService(logger.New(), rec)
		if _, err := svc.ListAudit(context.Background(), tt.in); err != nil {
			t.Fatalf("ListAudit failed: %v", err)
		}
		if rec.limit != tt.want {
			t.Errorf("ListAudit(%d) used limit %d, want %d", tt.in, rec.limit, tt.want)
		}
	}
}

func TestListAudit_NewestFirst(t *testing.T) {
	f := newFixture(t)
	svc := services.NewAuditService(logger.New(), f.repo)
	tally := newTallyService(f, nil)
	ctx := context.Background()

	f.press(t, tally, models.TallyVoid, nil, 1)
	if _, err := newSubmissionService(f.repo, nil).Submit(ctx, f.submitReq(1, 0, 0, 0, 1, "")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	entries, err := svc.ListAudit(ctx, 1)
	if err != nil {
		t.Fatalf("ListAudit failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != models.ActionSubmit {
		t.Errorf("expected the SUBMIT entry first, got %+v", entries)
	}
}
