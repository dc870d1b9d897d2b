package util

import "errors"

var (
	ErrPermissionDenied     = errors.New("permission denied")
	ErrSessionNotFound      = errors.New("exam session not found")
	ErrGenerationInProgress = errors.New("review test generation already in progress")
	ErrInvalidCycle         = errors.New("cycle must be a positive integer")
)
