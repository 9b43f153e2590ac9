package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/councilvote/internal/models"
)

// AuditEvent is the wire form of an audit log entry on the event stream
type AuditEvent struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	PollingUnit string    `json:"pollingUnit"`
	Round       *int      `json:"round,omitempty"`
	Details     string    `json:"details"`
	Reason      string    `json:"reason,omitempty"`
	PerformedBy string    `json:"performedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FromAuditLog builds an event with a fresh id from a committed audit row
func FromAuditLog(a models.AuditLog) AuditEvent {
	return AuditEvent{
		ID:          uuid.NewString(),
		Action:      a.Action,
		PollingUnit: a.PollingUnit,
		Round:       a.Round,
		Details:     a.Details,
		Reason:      a.Reason,
		PerformedBy: a.PerformedBy,
		CreatedAt:   a.CreatedAt,
	}
}

// Publisher ships audit events to downstream consumers. Publishing is
// best-effort: the database row is the record of truth.
type Publisher interface {
	Publish(ctx context.Context, e AuditEvent) error
	Close() error
}

// Noop discards every event
type Noop struct{}

func (Noop) Publish(context.Context, AuditEvent) error { return nil }
func (Noop) Close() error                             { return nil }
