package domain

import "errors"

// Sentinel errors shared across services and repositories. Handlers map them
// to HTTP status codes at the request boundary.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("resource conflict")
)
