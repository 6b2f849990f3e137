package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrVersionConflict = errors.New("version conflict")
	ErrDuplicateVouch  = errors.New("duplicate vouch")
	ErrInvalidLimit    = errors.New("invalid leaderboard limit")
)
