// Package repository defines the versioned store interface and errors.
//
// Every mutation is a conditional commit: read a row and its version,
// compute the new value, and commit only if the version is unchanged.
// Coordinators retry on ErrVersionConflict; the store never blocks one
// session's operations on another's.
package repository

import (
	"context"
	"time"

	"github.com/vibingbhudha77/vibex/internal/domain/model"
)

// VersionedSession pairs a session row with its optimistic-lock version.
type VersionedSession struct {
	Session model.Session
	Version uint64
}

// VersionedRating pairs a rating row with its optimistic-lock version.
type VersionedRating struct {
	Rating  model.Rating
	Version uint64
}

// RatingEntry is a campus leaderboard row.
type RatingEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
}

// Store provides conditional read/write access to sessions, ratings,
// and the immutable vouch log.
type Store interface {
	// CreateSession persists a new session and assigns its id.
	CreateSession(ctx context.Context, s model.Session) (VersionedSession, error)

	// GetSession returns a session with its current version.
	// Returns ErrSessionNotFound for unknown ids.
	GetSession(ctx context.Context, id int64) (VersionedSession, error)

	// CommitSession replaces the session row only if its version still
	// equals expectedVersion. Returns ErrVersionConflict when the row
	// moved since the read.
	CommitSession(ctx context.Context, id int64, expectedVersion uint64, s model.Session) (VersionedSession, error)

	// ListSessions returns every stored session, newest start first.
	ListSessions(ctx context.Context) ([]VersionedSession, error)

	// ActiveSessionFor returns the id of a session that userID is
	// currently a member of and whose derived phase still accepts
	// members, or false when there is none. phase is the caller's
	// lifecycle derivation, keeping the store time-agnostic.
	ActiveSessionFor(ctx context.Context, userID string, now time.Time, phase func(model.Session, time.Time) model.Phase) (int64, bool)

	// GetRating returns a user's rating with its version. Unknown users
	// get the baseline rating at version zero.
	GetRating(ctx context.Context, userID string) (VersionedRating, error)

	// CommitRating conditionally replaces a rating row, mirroring
	// CommitSession semantics.
	CommitRating(ctx context.Context, userID string, expectedVersion uint64, r model.Rating) (VersionedRating, error)

	// CreateVouch appends to the immutable vouch log. Returns
	// ErrDuplicateVouch when the (voucher, receiver, session) tuple
	// already exists.
	CreateVouch(ctx context.Context, v model.Vouch) error

	// DeleteVouch removes a vouch by tuple. Rollback path for a vouch
	// whose paired rating commit exhausted its retries.
	DeleteVouch(ctx context.Context, voucherID, receiverID string, sessionID int64) error

	// VouchesBetween counts vouches voucherID has given receiverID
	// across all sessions. Selects the diminishing point value.
	VouchesBetween(ctx context.Context, voucherID, receiverID string) int

	// VouchesForReceiverInSession counts vouches receiverID has
	// collected within one session. Numerator of the actual score.
	VouchesForReceiverInSession(ctx context.Context, receiverID string, sessionID int64) int

	// VouchHistory returns receiverID's vouches, newest first.
	VouchHistory(ctx context.Context, receiverID string) ([]model.Vouch, error)

	// TopRatings returns the n highest-rated users.
	TopRatings(ctx context.Context, n int) ([]RatingEntry, error)

	// Count returns the number of sessions tracked.
	Count(ctx context.Context) int
}
