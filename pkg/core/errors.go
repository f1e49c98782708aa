package core

import "errors"

// Common errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrReadOnly           = errors.New("storage is in read-only mode")
	ErrImportInProgress   = errors.New("another import is in progress")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
