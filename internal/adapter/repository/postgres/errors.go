package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/zionledger/internal/domain"
)

const (
	pgErrUniqueViolation = "23505"

	idempotencyKeyConstraint = "idx_entry_sets_idempotency_key"
)

// mapError translates driver errors the use cases need to recognize.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgErr.Code == pgErrUniqueViolation &&
		pgErr.ConstraintName == idempotencyKeyConstraint {
		return domain.ErrDuplicateIdempotencyKey
	}

	return err
}
