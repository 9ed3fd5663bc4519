package app

import (
	"errors"
	"fmt"

	"littleforest/pkg/store"
)

var (
	// ErrValidation marks bad client input, including rows the database
	// rejected on a constraint. The HTTP layer answers 400 without detail.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned by get and update when the row is absent.
	ErrNotFound = errors.New("not found")

	// Admin auth failures, each answered with 401.
	ErrUnauthorizedEmail  = errors.New("email not in admin allow-list")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoToken            = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("unauthorized")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeError tags constraint violations as validation failures and passes
// everything else through for the HTTP layer to treat as a fault.
func storeError(op string, err error) error {
	if errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
