package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateCode is returned when an insert collides on short_code.
	ErrDuplicateCode = errors.New("short code already exists")
	// ErrDuplicateDestination is returned when an insert or update collides
	// on original_url.
	ErrDuplicateDestination = errors.New("destination URL already shortened")
	// ErrDuplicateEmail is returned when an insert collides on email.
	ErrDuplicateEmail = errors.New("email already registered")
)

// uniqueViolation maps a Postgres unique-constraint violation to the
// matching sentinel error, or returns nil if err is something else.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pgerrcode.UniqueViolation {
		return nil
	}
	switch pqErr.Constraint {
	case "links_short_code_key":
		return ErrDuplicateCode
	case "links_original_url_key":
		return ErrDuplicateDestination
	case "users_email_key":
		return ErrDuplicateEmail
	}
	return nil
}
