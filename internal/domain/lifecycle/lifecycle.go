// Package lifecycle derives a session's effective phase from time.
//
// Phase is a pure function of the stored session fields and a caller
// supplied instant. Every consumer (join eligibility, map feed,
// countdown text) goes through the same derivation so lifecycle logic
// cannot drift between call sites.
package lifecycle

import (
	"time"

	"github.com/vibingbhudha77/vibex/internal/domain/model"
)

// Lifecycle window constants.
const (
	// endingSoonWindow flags the last stretch of an active session for
	// presentation. It does not change join eligibility.
	endingSoonWindow = time.Minute

	// borrowAutoCloseAfter is how long an unanswered borrow request
	// stays open before it becomes eligible for silent closure.
	borrowAutoCloseAfter = 30 * time.Minute
)

// Phase returns the effective lifecycle phase of s at now.
//
// A session past its window is Ended regardless of persisted status.
// A borrow session nobody answered within 30 minutes of its start is
// AutoCloseEligible: not joinable, and a candidate for silent closure
// by the feed sweep.
func Phase(s model.Session, now time.Time) model.Phase {
	if s.Status == model.StatusClosed {
		return model.PhaseEnded
	}

	start := s.Start()
	end := s.End()

	if now.Before(start) {
		return model.PhaseScheduled
	}
	if now.After(end) {
		return model.PhaseEnded
	}
	if s.Kind == model.KindBorrow && now.After(start.Add(borrowAutoCloseAfter)) && len(s.Participants) <= 1 {
		return model.PhaseAutoCloseEligible
	}
	if end.Sub(now) < endingSoonWindow {
		return model.PhaseEndingSoon
	}
	return model.PhaseActive
}

// Joinable reports whether a session in phase accepts new joins.
// EndingSoon is still active; Scheduled sessions are not joinable
// pre-start.
func Joinable(phase model.Phase) bool {
	return phase == model.PhaseActive || phase == model.PhaseEndingSoon
}
