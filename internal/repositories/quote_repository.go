package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

// QuoteFilter narrows List. Zero values mean "any".
type QuoteFilter struct {
	Search     string
	Status     models.QuoteStatus
	Timeline   models.Timeline
	CustomerID *uuid.UUID
	Email      string
	Limit      int
	Offset     int
}

// QuoteStats is computed over every quote, independent of any filter.
type QuoteStats struct {
	Total           int64
	NeedsAssessment int64
	Pending         int64
	Sent            int64
	Accepted        int64
	Declined        int64
	Expired         int64
	TotalValue      float64 // sum of monthly rates over priced quotes
	PricedCount     int64
}

// QuoteIntake is everything a new quote request writes: the customer is found
// by email or phone, or created from these fields.
type QuoteIntake struct {
	Customer *models.Customer
	Address  *models.Address
	Quote    *models.Quote
}

type IntakeResult struct {
	Quote           *models.Quote
	CustomerCreated bool
}

// QuoteMutation edits a quote in place. A non-nil agreement is inserted in the
// same transaction as the quote update.
type QuoteMutation func(q *models.Quote) (*models.Agreement, error)

type QuoteUpdateResult struct {
	Quote            *models.Quote
	AgreementCreated *models.Agreement
}

type QuoteRepository interface {
	CreateIntakeAtomic(ctx context.Context, in *QuoteIntake) (*IntakeResult, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, f QuoteFilter) ([]*models.Quote, int64, error)
	Stats(ctx context.Context) (*QuoteStats, error)

	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate QuoteMutation) (*QuoteUpdateResult, error)
	DeleteIfNoAgreement(ctx context.Context, id uuid.UUID) error
	ExpireOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type quoteRepo struct{ db DB }

func NewQuoteRepository(db DB) QuoteRepository { return &quoteRepo{db: db} }

/* ---------- Create ---------- */

func (r *quoteRepo) CreateIntakeAtomic(ctx context.Context, in *QuoteIntake) (res *IntakeResult, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer finishTx(ctx, tx, &err)

	customer, created, err := findOrCreateCustomer(ctx, tx, in.Customer)
	if err != nil {
		return nil, err
	}

	in.Address.CustomerID = customer.ID
	if err = insertAddress(ctx, tx, in.Address); err != nil {
		return nil, err
	}

	q := in.Quote
	q.CustomerID = customer.ID
	q.ServiceAddressID = in.Address.ID
	if err = insertQuote(ctx, tx, q); err != nil {
		return nil, err
	}
	q.Customer = customer
	q.ServiceAddress = in.Address

	return &IntakeResult{Quote: q, CustomerCreated: created}, nil
}

// findOrCreateCustomer matches on email or phone, preferring an email match.
// The unique email index settles concurrent submissions: the loser's insert
// does nothing and it re-reads the winner's row.
func findOrCreateCustomer(ctx context.Context, tx pgx.Tx, c *models.Customer) (*models.Customer, bool, error) {
	existing, err := scanCustomer(tx.QueryRow(ctx, baseSelectCustomer()+`
		WHERE email=$1 OR phone=$2
		ORDER BY (email=$1) DESC, created_at
		LIMIT 1`, c.Email, c.Phone))
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	inserted, err := scanCustomer(tx.QueryRow(ctx, `
		INSERT INTO customers (
			id, name, email, phone, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (email) DO NOTHING
		RETURNING `+customerColumns,
		c.ID, c.Name, c.Email, c.Phone, c.Notes, c.CreatedAt, c.UpdatedAt))
	if err != nil {
		return nil, false, err
	}
	if inserted != nil {
		return inserted, true, nil
	}

	winner, err := scanCustomer(tx.QueryRow(ctx, baseSelectCustomer()+" WHERE email=$1", c.Email))
	if err != nil {
		return nil, false, err
	}
	if winner == nil {
		return nil, false, fmt.Errorf("customer %q conflicted but could not be re-read", c.Email)
	}
	return winner, false, nil
}

func insertQuote(ctx context.Context, db querier, q *models.Quote) error {
	if !q.PricingConsistent() {
		return utils.ErrPricingIncomplete
	}
	if q.RowVersion == 0 {
		q.RowVersion = 1
	}
	_, err := db.Exec(ctx, `
		INSERT INTO quotes (
			id, customer_id, service_address_id, ramp_height, timeline_needed,
			service_type, monthly_rate, installation_fee, estimated_duration, status,
			source, priority, notes, created_at, updated_at,
			sent_at, accepted_at, declined_at, expires_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`,
		q.ID, q.CustomerID, q.ServiceAddressID, q.RampHeight, q.TimelineNeeded,
		q.ServiceType, q.MonthlyRate, q.InstallationFee, q.EstimatedDuration, q.Status,
		q.Source, q.Priority, q.Notes, q.CreatedAt, q.UpdatedAt,
		q.SentAt, q.AcceptedAt, q.DeclinedAt, q.ExpiresAt, q.RowVersion,
	)
	return err
}

/* ---------- Reads ---------- */

// GetByID returns the quote joined with its customer and service address.
func (r *quoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	row := r.db.QueryRow(ctx, baseSelectQuoteJoined()+" WHERE q.id=$1", id)
	return scanQuoteJoined(row)
}

func (r *quoteRepo) getBare(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	row := r.db.QueryRow(ctx, baseSelectQuote()+" WHERE id=$1", id)
	return scanQuote(row)
}

func (r *quoteRepo) List(ctx context.Context, f QuoteFilter) ([]*models.Quote, int64, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg(containsPattern(s))
		conds = append(conds, fmt.Sprintf(
			"(c.name ILIKE %[1]s OR c.email ILIKE %[1]s OR q.id::text ILIKE %[1]s OR a.street ILIKE %[1]s)", p))
	}
	if f.Status != "" {
		conds = append(conds, "q.status = "+arg(f.Status))
	}
	if f.Timeline != "" {
		conds = append(conds, "q.timeline_needed = "+arg(f.Timeline))
	}
	if f.CustomerID != nil {
		conds = append(conds, "q.customer_id = "+arg(*f.CustomerID))
	}
	if e := strings.TrimSpace(f.Email); e != "" {
		conds = append(conds, "LOWER(c.email) = LOWER("+arg(e)+")")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM quotes q
		JOIN customers c ON c.id = q.customer_id
		JOIN addresses a ON a.id = q.service_address_id`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := baseSelectQuoteJoined() + where + " ORDER BY q.created_at DESC"
	if f.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*models.Quote
	for rows.Next() {
		q, err := scanQuoteJoined(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

func (r *quoteRepo) Stats(ctx context.Context) (*QuoteStats, error) {
	var s QuoteStats
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status='NEEDS_ASSESSMENT'),
			COUNT(*) FILTER (WHERE status='PENDING'),
			COUNT(*) FILTER (WHERE status='SENT'),
			COUNT(*) FILTER (WHERE status='ACCEPTED'),
			COUNT(*) FILTER (WHERE status='DECLINED'),
			COUNT(*) FILTER (WHERE status='EXPIRED'),
			COALESCE(SUM(monthly_rate), 0)::float8,
			COUNT(monthly_rate)
		FROM quotes
	`).Scan(
		&s.Total, &s.NeedsAssessment, &s.Pending, &s.Sent,
		&s.Accepted, &s.Declined, &s.Expired, &s.TotalValue, &s.PricedCount,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

/* ---------- Update / Delete ---------- */

func (r *quoteRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate QuoteMutation) (*QuoteUpdateResult, error) {
	var (
		pending *models.Agreement
		created *models.Agreement
	)

	_, err := WithRetry(
		ctx,
		defaultMaxRetries,
		id,
		r.getBare,
		func(ctx context.Context, q *models.Quote, expected int64) (pgconn.CommandTag, error) {
			tag, inserted, err := r.updateIfVersion(ctx, q, expected, pending)
			if inserted {
				created = pending
			}
			return tag, err
		},
		func(q *models.Quote) error {
			a, err := mutate(q)
			pending = a
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	full, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if full == nil {
		return nil, pgx.ErrNoRows
	}
	return &QuoteUpdateResult{Quote: full, AgreementCreated: created}, nil
}

func (r *quoteRepo) updateIfVersion(
	ctx context.Context,
	q *models.Quote,
	expected int64,
	agreement *models.Agreement,
) (tag pgconn.CommandTag, inserted bool, err error) {
	if !q.PricingConsistent() {
		return nil, false, utils.ErrPricingIncomplete
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer finishTx(ctx, tx, &err)

	tag, err = tx.Exec(ctx, `
		UPDATE quotes SET
			ramp_height=$1, timeline_needed=$2, service_type=$3,
			monthly_rate=$4, installation_fee=$5, estimated_duration=$6,
			status=$7, source=$8, priority=$9, notes=$10,
			sent_at=$11, accepted_at=$12, declined_at=$13, expires_at=$14,
			updated_at=$15, row_version=row_version+1
		WHERE id=$16 AND row_version=$17
	`,
		q.RampHeight, q.TimelineNeeded, q.ServiceType,
		q.MonthlyRate, q.InstallationFee, q.EstimatedDuration,
		q.Status, q.Source, q.Priority, q.Notes,
		q.SentAt, q.AcceptedAt, q.DeclinedAt, q.ExpiresAt,
		q.UpdatedAt, q.ID, expected,
	)
	if err != nil || tag.RowsAffected() != 1 || agreement == nil {
		return tag, false, err
	}

	inserted, err = insertAgreement(ctx, tx, agreement)
	return tag, inserted, err
}

// DeleteIfNoAgreement removes a quote unless an agreement references it.
// Missing quotes yield pgx.ErrNoRows.
func (r *quoteRepo) DeleteIfNoAgreement(ctx context.Context, id uuid.UUID) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer finishTx(ctx, tx, &err)

	var locked uuid.UUID
	if err = tx.QueryRow(ctx, `SELECT id FROM quotes WHERE id=$1 FOR UPDATE`, id).Scan(&locked); err != nil {
		return err
	}

	var hasAgreement bool
	if err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM agreements WHERE quote_id=$1)`, id,
	).Scan(&hasAgreement); err != nil {
		return err
	}
	if hasAgreement {
		err = utils.ErrQuoteHasAgreement
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM quotes WHERE id=$1`, id)
	return err
}

// ExpireOverdue moves PENDING and SENT quotes past their expiry to EXPIRED.
func (r *quoteRepo) ExpireOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE quotes
		SET status='EXPIRED', updated_at=$1, row_version=row_version+1
		WHERE status IN ('PENDING','SENT') AND expires_at < $1
		RETURNING id
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

/* ---------- internals ---------- */

var quoteColumnList = []string{
	"id", "customer_id", "service_address_id", "ramp_height", "timeline_needed",
	"service_type", "monthly_rate", "installation_fee", "estimated_duration", "status",
	"source", "priority", "notes", "created_at", "updated_at",
	"sent_at", "accepted_at", "declined_at", "expires_at", "row_version",
}

func qualify(alias string, cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(out, ", ")
}

func baseSelectQuote() string {
	return `
		SELECT ` + strings.Join(quoteColumnList, ", ") + `
		FROM quotes`
}

func baseSelectQuoteJoined() string {
	return `
		SELECT ` + qualify("q", quoteColumnList) + `,
		       ` + qualify("c", strings.Split(customerColumns, ",")) + `,
		       ` + qualify("a", strings.Split(addressColumns, ",")) + `
		FROM quotes q
		JOIN customers c ON c.id = q.customer_id
		JOIN addresses a ON a.id = q.service_address_id`
}

func quoteScanTargets(q *models.Quote) []any {
	return []any{
		&q.ID, &q.CustomerID, &q.ServiceAddressID, &q.RampHeight, &q.TimelineNeeded,
		&q.ServiceType, &q.MonthlyRate, &q.InstallationFee, &q.EstimatedDuration, &q.Status,
		&q.Source, &q.Priority, &q.Notes, &q.CreatedAt, &q.UpdatedAt,
		&q.SentAt, &q.AcceptedAt, &q.DeclinedAt, &q.ExpiresAt, &q.RowVersion,
	}
}

func scanQuote(row pgx.Row) (*models.Quote, error) {
	var q models.Quote
	if err := row.Scan(quoteScanTargets(&q)...); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func scanQuoteJoined(row pgx.Row) (*models.Quote, error) {
	var (
		q models.Quote
		c models.Customer
		a models.Address
	)
	targets := quoteScanTargets(&q)
	targets = append(targets,
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
		&a.ID, &a.Street, &a.City, &a.State, &a.ZipCode, &a.Country, &a.CustomerID, &a.CreatedAt,
	)
	if err := row.Scan(targets...); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	q.Customer = &c
	q.ServiceAddress = &a
	return &q, nil
}
