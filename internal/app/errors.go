package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound            = errors.New("not found")
	ErrDefaultWorkspace    = errors.New("default workspace cannot be deleted")
	ErrInvalidQuizDocument = errors.New("invalid quiz document")
)
