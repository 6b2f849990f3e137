package service

import "errors"

// Sentinel errors surfaced by the coordinators. Handlers map these to
// stable wire error codes with errors.Is.
var (
	// ErrSessionNotJoinable indicates the session's derived phase no
	// longer accepts members.
	ErrSessionNotJoinable = errors.New("session is not joinable")

	// ErrInvalidRole indicates the requested role is not legal for the
	// session's kind.
	ErrInvalidRole = errors.New("role not allowed for session kind")

	// ErrAlreadyInSession indicates the user is already a member of a
	// different live session.
	ErrAlreadyInSession = errors.New("user already in an active session")

	// ErrNotParticipant indicates the user is not a member of the session.
	ErrNotParticipant = errors.New("user is not a participant")

	// ErrCreatorMustTransfer indicates the creator tried to leave while
	// other participants remain.
	ErrCreatorMustTransfer = errors.New("creator must transfer ownership before leaving")

	// ErrNotCreator indicates a creator-only operation was attempted by
	// someone else.
	ErrNotCreator = errors.New("only the session creator may do this")

	// ErrSessionEnded indicates the session's derived phase is ended.
	ErrSessionEnded = errors.New("session has ended")

	// ErrSelfVouch indicates a user tried to vouch for themselves.
	ErrSelfVouch = errors.New("cannot vouch for yourself")

	// ErrDuplicateVouch indicates this voucher already vouched for this
	// receiver in this session.
	ErrDuplicateVouch = errors.New("duplicate vouch for this session")

	// ErrConcurrencyConflict indicates an operation exhausted its commit
	// attempts against concurrent writers.
	ErrConcurrencyConflict = errors.New("too many concurrent updates, try again")

	// ErrInvalidExtension indicates a non-positive extension was requested.
	ErrInvalidExtension = errors.New("extension must be a positive number of minutes")
)
