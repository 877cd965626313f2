package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
)

type AgreementRepository interface {
	GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*models.Agreement, error)
	MarkSigned(ctx context.Context, id uuid.UUID) error
}

type agreementRepo struct{ db DB }

func NewAgreementRepository(db DB) AgreementRepository { return &agreementRepo{db: db} }

// insertAgreement is a no-op when the quote already has an agreement; the
// returned bool reports whether a row was written.
func insertAgreement(ctx context.Context, q querier, a *models.Agreement) (bool, error) {
	tag, err := q.Exec(ctx, `
		INSERT INTO agreements (
			id, quote_id, status, signed_at, contract_terms, created_at, updated_at
		) VALUES ($1,$2,$3,$4,COALESCE($5,'{}'::jsonb),$6,$7)
		ON CONFLICT (quote_id) DO NOTHING
	`, a.ID, a.QuoteID, a.Status, a.SignedAt, jsonArg(a.ContractTerms), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *agreementRepo) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*models.Agreement, error) {
	row := r.db.QueryRow(ctx, baseSelectAgreement()+" WHERE quote_id=$1", quoteID)
	return scanAgreement(row)
}

func (r *agreementRepo) MarkSigned(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE agreements SET status='SIGNED', signed_at=NOW(), updated_at=NOW()
		WHERE id=$1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func baseSelectAgreement() string {
	return `
		SELECT id, quote_id, status, signed_at, contract_terms, created_at, updated_at
		FROM agreements`
}

func scanAgreement(row pgx.Row) (*models.Agreement, error) {
	var a models.Agreement
	if err := row.Scan(
		&a.ID, &a.QuoteID, &a.Status, &a.SignedAt, &a.ContractTerms, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
