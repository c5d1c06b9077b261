package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
)

const (
	pgUniqueViolation  = "23505"
	pgInvalidTextRepr  = "22P02"
	pgForeignKeyViolat = "23503"
)

// mapErr translates driver errors into repository errors.
// A malformed uuid can never match a row, so it reads as not found.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgInvalidTextRepr, pgForeignKeyViolat:
			return repository.ErrNotFound
		case pgUniqueViolation:
			return repository.ErrDuplicate
		}
	}
	return err
}
