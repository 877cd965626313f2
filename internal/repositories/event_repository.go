// internal/repositories/event_repository.go
package repositories

import (
	"context"

	"github.com/samedayramps/app.samedayramps.com/internal/models"
)

// EventRepository is append-only; audit rows are never read back by the API.
type EventRepository interface {
	Create(ctx context.Context, e *models.Event) error
}

type eventRepo struct {
	db DB
}

func NewEventRepository(db DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, e *models.Event) error {
	return insertEvent(ctx, r.db, e)
}

func insertEvent(ctx context.Context, q querier, e *models.Event) error {
	_, err := q.Exec(ctx, `
		INSERT INTO events (
			id, entity_type, entity_id, event_type, event_data, user_id, ip_address, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`,
		e.ID,
		e.EntityType,
		e.EntityID,
		e.EventType,
		jsonArg(e.EventData),
		e.UserID,
		e.IPAddress,
	)
	return err
}
