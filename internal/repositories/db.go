// internal/repositories/db.go
package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// querier is satisfied by both the pool and a pgx.Tx, so helpers can run
// inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}

// finishTx commits on success and rolls back otherwise. Call it deferred
// with a pointer to the function's named error.
func finishTx(ctx context.Context, tx pgx.Tx, errp *error) {
	if p := recover(); p != nil {
		_ = tx.Rollback(ctx)
		panic(p)
	}
	if *errp != nil {
		_ = tx.Rollback(ctx)
		return
	}
	*errp = tx.Commit(ctx)
}

// jsonArg hands JSONB parameters to pgx as plain bytes, or SQL NULL when empty.
func jsonArg(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE/ILIKE substring pattern that treats the
// search term literally. Backslash is Postgres's default LIKE escape.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
