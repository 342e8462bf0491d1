// Package common defines shared constants and sentinel errors used across
// the veracity service layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrForbidden    = errors.New("forbidden")

	// Signal errors. Both are recovered per request: the affected signal is
	// zeroed and annotated on the result.
	ErrImageDecode             = errors.New("image decode failed")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)
