package services

import (
	"errors"
	"fmt"
	"strings"
)

// Import failure kinds.
var (
	ErrSourceMissing  = errors.New("source file missing")
	ErrSourceEmpty    = errors.New("source file has no data rows")
	ErrSchemaMismatch = errors.New("source header does not match the raw schema")
	ErrWriteFailed    = errors.New("writing imported rows failed")
)

// ImportError reports why an import attempt did not load data. Kind is one
// of the Err* import sentinels.
type ImportError struct {
	Kind    error
	Path    string
	Missing []string
	Err     error
}

func (e *ImportError) Error() string {
	msg := fmt.Sprintf("import %q: %v", e.Path, e.Kind)
	if len(e.Missing) > 0 {
		msg += ": missing columns " + strings.Join(e.Missing, ", ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ErrMissingRequiredColumn is the kind of every NormalizationError.
var ErrMissingRequiredColumn = errors.New("required column missing")

// NormalizationError is a schema-level failure of a whole batch.
type NormalizationError struct {
	Missing []string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize: %v: %s", ErrMissingRequiredColumn, strings.Join(e.Missing, ", "))
}

func (e *NormalizationError) Unwrap() error {
	return ErrMissingRequiredColumn
}

// ErrAuthFailure is the single, uniform authentication failure.
var ErrAuthFailure = errors.New("invalid credentials or inactive account")

// Provisioning failures.
var (
	ErrSecretMismatch    = errors.New("secret and confirmation do not match")
	ErrMissingField      = errors.New("username and secret are required")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUnknownUser       = errors.New("no such employee")
)

// ErrForbidden is returned when the session's user lacks a permission.
var ErrForbidden = errors.New("operation not permitted for this user")

// ErrNotLoggedIn is returned by session operations that need a user.
var ErrNotLoggedIn = errors.New("not logged in")
