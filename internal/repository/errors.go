package repository

import (
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

var (
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrDuplicateUsername  = errors.New("duplicate username")
	ErrDuplicateSessionID = errors.New("duplicate session id")
	ErrNotFound           = errors.New("record not found")
)

const uniqueViolation = "23505"

// translateUnique maps a postgres unique violation to one of the duplicate
// sentinels based on the violated constraint name. Other errors are wrapped.
func translateUnique(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		constraint := strings.ToLower(pgErr.ConstraintName)
		switch {
		case strings.Contains(constraint, "email"):
			return ErrDuplicateEmail
		case strings.Contains(constraint, "user_name"), strings.Contains(constraint, "username"):
			return ErrDuplicateUsername
		case strings.Contains(constraint, "session"):
			return ErrDuplicateSessionID
		}
	}
	return errors.Wrap(err, op)
}
