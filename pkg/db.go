package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// postgres error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeUniqueViolation     = "23505"
	pgCodeForeignKeyViolation = "23503"
)

func pgErrHasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsUniqueViolationError reports whether err is a postgres unique constraint violation.
func IsUniqueViolationError(err error) bool {
	return pgErrHasCode(err, pgCodeUniqueViolation)
}

// IsForeignKeyViolationError reports whether err is a postgres foreign key violation.
func IsForeignKeyViolationError(err error) bool {
	return pgErrHasCode(err, pgCodeForeignKeyViolation)
}
