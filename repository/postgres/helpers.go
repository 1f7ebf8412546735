package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/tracker/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func marshalMap(data map[string]string) []byte {
	if len(data) == 0 {
		return nil
	}
	b, err := sonic.Marshal(data)
	if err != nil {
		return nil
	}
	return b
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// translate maps missing rows and constraint violations onto domain errors.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return notFound
	case pgCode(err) == codeForeignKeyViolation:
		return notFound
	case pgCode(err) == codeUniqueViolation:
		return domain.WrapError(domain.ErrCodeConflict, "duplicate record", err)
	default:
		return err
	}
}

// loadRefs returns the users linked to each owner id through a join table query.
// The query must select owner_id, id, email, name.
func loadRefs(ctx context.Context, q querier, query string, ownerIDs []string) (map[string][]domain.UserRef, error) {
	refs := make(map[string][]domain.UserRef, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return refs, nil
	}
	rows, err := q.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			owner string
			ref   domain.UserRef
		)
		if err := rows.Scan(&owner, &ref.ID, &ref.Email, &ref.Name); err != nil {
			return nil, err
		}
		refs[owner] = append(refs[owner], ref)
	}
	return refs, rows.Err()
}
