package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidKind     = errors.New("invalid kind")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidParent   = errors.New("invalid parent")
	ErrInvalidPrompt   = errors.New("invalid prompt")
	ErrInvalidChoices  = errors.New("invalid choices")
	ErrInvalidAnswer   = errors.New("invalid answer")
)
