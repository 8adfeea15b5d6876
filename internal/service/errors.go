package service

import "errors"

var (
	// ErrInvalidInput is returned when a required field is missing or empty.
	ErrInvalidInput = errors.New("missing required input")
	// ErrInvalidURL is returned when a destination is not an absolute URI.
	ErrInvalidURL = errors.New("invalid URL format")
	// ErrNotFound is returned when no link matches the lookup.
	ErrNotFound = errors.New("link not found")
	// ErrForbidden is returned when the requester does not own the link.
	ErrForbidden = errors.New("not authorized to modify this link")
	// ErrStorageExhausted is returned when code generation keeps colliding
	// past the retry budget.
	ErrStorageExhausted = errors.New("could not allocate a unique short code")
	// ErrDestinationTaken is returned when an edit would point two links at
	// the same destination.
	ErrDestinationTaken = errors.New("destination URL already shortened by another link")
	// ErrEmailTaken is returned when registering an email that already has
	// an account.
	ErrEmailTaken = errors.New("a user with this email already exists")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
