package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

const defaultMaxRetries = 3

/*
EntityWithVersion:

* `comparable`  → lets us use `==` to compare two values of type T
* the three concurrency methods
*/
type EntityWithVersion interface {
	comparable
	GetID() string
	GetRowVersion() int64
	SetRowVersion(int64)
}

type UpdateIfVersionFunc[T EntityWithVersion] func(
	ctx context.Context,
	entity T,
	expectedVersion int64,
) (pgconn.CommandTag, error)

type GetByIDFunc[T EntityWithVersion] func(
	ctx context.Context,
	id uuid.UUID,
) (T, error)

/*
WithRetry runs a read-mutate-update loop with optimistic locking and returns
the entity as written. Exhausting the attempts yields ErrRowVersionConflict.
*/
func WithRetry[T EntityWithVersion](
	ctx context.Context,
	maxRetries int,
	id uuid.UUID,
	getByID GetByIDFunc[T],
	updateIfVersion UpdateIfVersionFunc[T],
	mutate func(T) error,
) (T, error) {
	var zero T
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		current, err := getByID(ctx, id)
		if err != nil {
			return zero, err
		}
		if current == zero {
			return zero, pgx.ErrNoRows
		}

		oldVersion := current.GetRowVersion()

		if err := mutate(current); err != nil {
			return zero, err
		}

		tag, err := updateIfVersion(ctx, current, oldVersion)
		if err != nil {
			return zero, err
		}
		if tag.RowsAffected() == 1 {
			current.SetRowVersion(oldVersion + 1)
			return current, nil
		}
		// someone else updated first; retry
		utils.Logger.WithField("id", id).Debugf("row_version conflict on attempt %d", attempt+1)
	}
	return zero, fmt.Errorf("too much contention updating %q: %w", id, utils.ErrRowVersionConflict)
}
