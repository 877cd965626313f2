package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	ListByRentalIDs(ctx context.Context, rentalIDs []uuid.UUID) (map[uuid.UUID][]*models.Payment, error)
}

type paymentRepo struct{ db DB }

func NewPaymentRepository(db DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payments (
			id, rental_id, amount, status, type, due_date, paid_date, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, p.ID, p.RentalID, p.Amount, p.Status, p.Type, p.DueDate, p.PaidDate, p.CreatedAt)
	return err
}

func (r *paymentRepo) ListByRentalIDs(ctx context.Context, rentalIDs []uuid.UUID) (map[uuid.UUID][]*models.Payment, error) {
	out := make(map[uuid.UUID][]*models.Payment, len(rentalIDs))
	if len(rentalIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, rental_id, amount, status, type, due_date, paid_date, created_at
		FROM payments
		WHERE rental_id = ANY($1::uuid[])
		ORDER BY due_date DESC
	`, uuidStrings(rentalIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out[p.RentalID] = append(out[p.RentalID], p)
	}
	return out, rows.Err()
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	if err := row.Scan(
		&p.ID, &p.RentalID, &p.Amount, &p.Status, &p.Type, &p.DueDate, &p.PaidDate, &p.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
