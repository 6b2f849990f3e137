package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrUnknownKind     = errors.New("unknown session kind")
	ErrMissingTitle    = errors.New("missing title")
	ErrMissingCreator  = errors.New("missing creator id")
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrRoleMapMismatch = errors.New("participants and role map out of sync")
)
