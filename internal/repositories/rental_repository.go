package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
)

type RentalRepository interface {
	Create(ctx context.Context, rt *models.Rental) error
	GetByAgreementID(ctx context.Context, agreementID uuid.UUID) (*models.Rental, error)
	ListByCustomerIDs(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID][]*models.Rental, error)
}

type rentalRepo struct{ db DB }

func NewRentalRepository(db DB) RentalRepository { return &rentalRepo{db: db} }

func (r *rentalRepo) Create(ctx context.Context, rt *models.Rental) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rentals (
			id, agreement_id, customer_id, monthly_rate, status,
			start_date, end_date, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, rt.ID, rt.AgreementID, rt.CustomerID, rt.MonthlyRate, rt.Status,
		rt.StartDate, rt.EndDate, rt.CreatedAt, rt.UpdatedAt)
	return err
}

func (r *rentalRepo) GetByAgreementID(ctx context.Context, agreementID uuid.UUID) (*models.Rental, error) {
	row := r.db.QueryRow(ctx, baseSelectRental()+" WHERE agreement_id=$1 ORDER BY created_at LIMIT 1", agreementID)
	return scanRental(row)
}

func (r *rentalRepo) ListByCustomerIDs(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID][]*models.Rental, error) {
	out := make(map[uuid.UUID][]*models.Rental, len(customerIDs))
	if len(customerIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		baseSelectRental()+" WHERE customer_id = ANY($1::uuid[]) ORDER BY created_at DESC",
		uuidStrings(customerIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		out[rt.CustomerID] = append(out[rt.CustomerID], rt)
	}
	return out, rows.Err()
}

func baseSelectRental() string {
	return `
		SELECT id, agreement_id, customer_id, monthly_rate, status,
		       start_date, end_date, created_at, updated_at
		FROM rentals`
}

func scanRental(row pgx.Row) (*models.Rental, error) {
	var rt models.Rental
	if err := row.Scan(
		&rt.ID, &rt.AgreementID, &rt.CustomerID, &rt.MonthlyRate, &rt.Status,
		&rt.StartDate, &rt.EndDate, &rt.CreatedAt, &rt.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rt, nil
}
