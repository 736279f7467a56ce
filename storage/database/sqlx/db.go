// Package sqlxrepos implements the domain repositories over Postgres.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core"
)

const uniqueViolation = "23505"

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

	// errNoRows is returned by get when the query matched nothing.
	errNoRows = sql.ErrNoRows

	// now is replaced in tests.
	now = func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
)

func get(ctx context.Context, db *sqlx.DB, dest interface{}, qb sq.Sqlizer, op string) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, op)
	}
	if err := db.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errNoRows
		}
		return core.NewPersistenceError(err, op)
	}
	return nil
}

func selectAll(ctx context.Context, db *sqlx.DB, dest interface{}, qb sq.Sqlizer, op string) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, op)
	}
	return core.NewPersistenceError(db.SelectContext(ctx, dest, query, args...), op)
}

func exec(ctx context.Context, db *sqlx.DB, qb sq.Sqlizer, op string) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, op)
	}
	_, err = db.ExecContext(ctx, query, args...)
	return core.NewPersistenceError(err, op)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// containsPattern builds an ILIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
