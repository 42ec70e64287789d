// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (duplicate favorite, follow, email...).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authenticated caller acting on content it does not own.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrSelfFollow indicates an attempt to subscribe to oneself.
	ErrSelfFollow = errors.New("cannot subscribe to yourself")

	// ErrEmptyCart indicates a shopping list was requested for an empty cart.
	ErrEmptyCart = errors.New("cart is empty, add a recipe first")

	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("validation failed")
)

// ValidationError names the field and the rule that rejected the input.
type ValidationError struct {
	Field   string
	Message string
}

// Invalid builds a ValidationError for field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }
