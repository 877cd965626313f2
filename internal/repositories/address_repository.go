package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
)

type AddressRepository interface {
	Create(ctx context.Context, a *models.Address) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
	ListByCustomerIDs(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID][]*models.Address, error)
}

type addressRepo struct{ db DB }

func NewAddressRepository(db DB) AddressRepository { return &addressRepo{db: db} }

func (r *addressRepo) Create(ctx context.Context, a *models.Address) error {
	return insertAddress(ctx, r.db, a)
}

func insertAddress(ctx context.Context, q querier, a *models.Address) error {
	_, err := q.Exec(ctx, `
		INSERT INTO addresses (
			id, street, city, state, zip_code, country, customer_id, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, a.ID, a.Street, a.City, a.State, a.ZipCode, a.Country, a.CustomerID, a.CreatedAt)
	return err
}

func (r *addressRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	row := r.db.QueryRow(ctx, baseSelectAddress()+" WHERE id=$1", id)
	return scanAddress(row)
}

func (r *addressRepo) ListByCustomerIDs(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID][]*models.Address, error) {
	out := make(map[uuid.UUID][]*models.Address, len(customerIDs))
	if len(customerIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		baseSelectAddress()+" WHERE customer_id = ANY($1::uuid[]) ORDER BY created_at",
		uuidStrings(customerIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out[a.CustomerID] = append(out[a.CustomerID], a)
	}
	return out, rows.Err()
}

const addressColumns = `id, street, city, state, zip_code, country, customer_id, created_at`

func baseSelectAddress() string {
	return `
		SELECT ` + addressColumns + `
		FROM addresses`
}

func scanAddress(row pgx.Row) (*models.Address, error) {
	var a models.Address
	if err := row.Scan(
		&a.ID, &a.Street, &a.City, &a.State, &a.ZipCode, &a.Country, &a.CustomerID, &a.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
