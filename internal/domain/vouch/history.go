package vouch

import (
	"time"

	"github.com/vibingbhudha77/vibex/internal/domain/model"
	"github.com/vibingbhudha77/vibex/internal/domain/rating"
)

// HistoryEntry is one received vouch shaped for display.
type HistoryEntry struct {
	ID           string    `json:"id"`
	VoucherID    string    `json:"voucher_id"`
	SessionID    int64     `json:"session_id"`
	Skill        string    `json:"skill"`
	Points       int       `json:"points"`
	ReceiverTier string    `json:"receiver_tier"`
	CreatedAt    time.Time `json:"created_at"`
}

// BuildHistory shapes a receiver's vouch log for display. The tier is
// computed from the receiver's current score, not the score at the time
// each vouch landed.
func BuildHistory(vouches []model.Vouch, receiverScore int) []HistoryEntry {
	tier := rating.TierFor(receiverScore).Name
	out := make([]HistoryEntry, len(vouches))
	for i, v := range vouches {
		out[i] = HistoryEntry{
			ID:           v.ID,
			VoucherID:    v.VoucherID,
			SessionID:    v.SessionID,
			Skill:        v.Skill,
			Points:       v.Points,
			ReceiverTier: tier,
			CreatedAt:    v.CreatedAt,
		}
	}
	return out
}
