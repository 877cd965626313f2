package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

// CustomerFilter drives the admin list. Search matches name, email, phone or
// any street on file.
type CustomerFilter struct {
	Search string
	Limit  int
	Offset int
}

type CustomerRepository interface {
	Create(ctx context.Context, c *models.Customer) error
	CreateWithAddress(ctx context.Context, c *models.Customer, a *models.Address) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	List(ctx context.Context, f CustomerFilter) ([]*models.Customer, int64, error)

	Update(ctx context.Context, c *models.Customer) error
}

type customerRepo struct{ db DB }

func NewCustomerRepository(db DB) CustomerRepository { return &customerRepo{db: db} }

/* ---------- Create ---------- */

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	return insertCustomer(ctx, r.db, c)
}

// CreateWithAddress writes the customer and its first address in one
// transaction. A duplicate email surfaces as utils.ErrEmailExists.
func (r *customerRepo) CreateWithAddress(ctx context.Context, c *models.Customer, a *models.Address) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer finishTx(ctx, tx, &err)

	if err = insertCustomer(ctx, tx, c); err != nil {
		return err
	}
	a.CustomerID = c.ID
	err = insertAddress(ctx, tx, a)
	return err
}

func insertCustomer(ctx context.Context, q querier, c *models.Customer) error {
	_, err := q.Exec(ctx, `
		INSERT INTO customers (
			id, name, email, phone, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, c.ID, c.Name, c.Email, c.Phone, c.Notes, c.CreatedAt, c.UpdatedAt)
	if isUniqueViolation(err, "customers_email_key") {
		return utils.ErrEmailExists
	}
	return err
}

/* ---------- Reads ---------- */

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	row := r.db.QueryRow(ctx, baseSelectCustomer()+" WHERE id=$1", id)
	return scanCustomer(row)
}

func (r *customerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	row := r.db.QueryRow(ctx, baseSelectCustomer()+" WHERE email=$1", email)
	return scanCustomer(row)
}

func (r *customerRepo) List(ctx context.Context, f CustomerFilter) ([]*models.Customer, int64, error) {
	where := ""
	var args []any
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, containsPattern(s))
		where = ` WHERE (name ILIKE $1 OR email ILIKE $1 OR phone LIKE $1
			OR EXISTS (SELECT 1 FROM addresses a WHERE a.customer_id = customers.id AND a.street ILIKE $1))`
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM customers"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := baseSelectCustomer() + where + " ORDER BY created_at DESC"
	if f.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

/* ---------- Update ---------- */

func (r *customerRepo) Update(ctx context.Context, c *models.Customer) error {
	err := r.db.QueryRow(ctx, `
		UPDATE customers
		SET name=$1, email=$2, phone=$3, notes=$4, updated_at=NOW()
		WHERE id=$5
		RETURNING updated_at
	`, c.Name, c.Email, c.Phone, c.Notes, c.ID).Scan(&c.UpdatedAt)
	if isUniqueViolation(err, "customers_email_key") {
		return utils.ErrEmailExists
	}
	return err
}

/* ---------- internals ---------- */

const customerColumns = `id, name, email, phone, notes, created_at, updated_at`

func baseSelectCustomer() string {
	return `
		SELECT ` + customerColumns + `
		FROM customers`
}

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	if err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
