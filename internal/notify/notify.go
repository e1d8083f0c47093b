// Package notify carries change notifications from the services to the
// outside world: the admin stream, the message broker and the stats cache.
package notify

import (
	"context"
	"time"

	"charity-events/internal/models"

	"github.com/google/uuid"
)

// Publisher receives a Change after the mutation is committed. Implementations
// must not block the caller for long and must not fail the request.
type Publisher interface {
	Publish(ctx context.Context, change models.Change)
}

// NewChange stamps a change with a fresh id and the current time.
func NewChange(entity, action string, entityID int64) models.Change {
	return models.Change{
		ID:       uuid.NewString(),
		Entity:   entity,
		Action:   action,
		EntityID: entityID,
		At:       time.Now().UTC(),
	}
}

// Multi fans a change out to every publisher in order.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, change models.Change) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, change)
		}
	}
}

// Nop drops every change.
type Nop struct{}

func (Nop) Publish(context.Context, models.Change) {}

// Func adapts a function to Publisher.
type Func func(ctx context.Context, change models.Change)

func (f Func) Publish(ctx context.Context, change models.Change) { f(ctx, change) }

// Recorder keeps every change it receives. Meant for tests.
type Recorder struct {
	Changes []models.Change
}

func (r *Recorder) Publish(_ context.Context, change models.Change) {
	r.Changes = append(r.Changes, change)
}
