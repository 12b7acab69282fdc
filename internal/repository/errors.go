package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested record does not exist in the database.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write would violate a uniqueness or
// referential-integrity constraint (duplicate code, delete of a record that
// is still referenced).
var ErrConflict = errors.New("conflict")

// constraintViolation reports whether err is a PostgreSQL unique or
// foreign-key violation, which repositories surface as ErrConflict.
func constraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" || pgErr.Code == "23503"
	}
	return false
}
