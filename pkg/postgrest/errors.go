package postgrest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

const (
	// CodeNoRows is returned for a single-object request that matched nothing.
	CodeNoRows = "PGRST116"
	// CodeUniqueViolation is the Postgres SQLSTATE for duplicate keys.
	CodeUniqueViolation = "23505"

	codeInvalidText = "22P02"
)

// Error is the decoded error body of a failed table request.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Hint       string `json:"hint,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// IsNoRows reports whether err is the "no rows" result of a single-object query.
func IsNoRows(err error) bool {
	var pgErr *Error
	return errors.As(err, &pgErr) && pgErr.Code == CodeNoRows
}

// IsConstraintViolation reports whether err came from a Postgres integrity
// constraint (class 23: unique, not-null, check, foreign key).
func IsConstraintViolation(err error) bool {
	var pgErr *Error
	if !errors.As(err, &pgErr) {
		return false
	}
	return strings.HasPrefix(pgErr.Code, "23") || pgErr.Code == codeInvalidText
}

// IsInvalidText reports whether a filter value could not be cast to the
// column type, e.g. a malformed uuid.
func IsInvalidText(err error) bool {
	var pgErr *Error
	return errors.As(err, &pgErr) && pgErr.Code == codeInvalidText
}

func parseError(body []byte, statusCode int) error {
	pgErr := &Error{StatusCode: statusCode}
	if len(body) > 0 {
		_ = json.Unmarshal(body, pgErr)
	}
	if pgErr.Message == "" {
		pgErr.Message = http.StatusText(statusCode)
	}
	return pgErr
}
