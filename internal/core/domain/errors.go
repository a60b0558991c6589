package domain

import "errors"

// Common errors for the domain layer
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAccessDenied    = errors.New("access denied")
)
