package model

import "time"

// Vouch is a peer endorsement of a skill within a specific session.
// Immutable once created; at most one per (voucher, receiver, session).
type Vouch struct {
	ID         string    `json:"id"`
	VoucherID  string    `json:"voucher_id"`
	ReceiverID string    `json:"receiver_id"`
	SessionID  int64     `json:"session_id"`
	Skill      string    `json:"skill"`
	Points     int       `json:"points"`
	CreatedAt  time.Time `json:"created_at"`
}

// BaselineRating is the score every user starts from.
const BaselineRating = 1500

// Rating is a user's cumulative ELO-style reputation score.
type Rating struct {
	UserID       string `json:"user_id"`
	Score        int    `json:"score"`
	SessionCount int    `json:"session_count"`
}

// NewRating returns the baseline rating for a user with no history.
func NewRating(userID string) Rating {
	return Rating{UserID: userID, Score: BaselineRating}
}

// NotificationType enumerates the engine-triggered notification kinds.
type NotificationType string

// Notification types emitted by the engine.
const (
	NotifySessionJoin       NotificationType = "session_join"
	NotifySessionLeave      NotificationType = "session_leave"
	NotifyVouchReceived     NotificationType = "vouch_received"
	NotifySessionEndingSoon NotificationType = "session_ending_soon"
	NotifyOwnershipTransfer NotificationType = "ownership_transfer"
)

// Notification is the trigger payload handed to the external
// notification collaborator. Delivery is out of scope; failure to
// dispatch never fails the triggering operation.
type Notification struct {
	ID         string           `json:"id"`
	Type       NotificationType `json:"type"`
	ActorID    string           `json:"actor_id"`
	ReceiverID string           `json:"receiver_id,omitempty"`
	SessionID  int64            `json:"session_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
