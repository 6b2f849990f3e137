// Package rating implements the ELO-style reputation math.
//
// All functions are pure and stateless; the coordinator owns every
// mutation of a persisted rating.
package rating

import "math"

// Rating system constants.
const (
	baseline     = 1500 // rating every user starts from
	spread       = 400  // logistic curve spread
	kFactorNew   = 40   // under 10 sessions: high volatility
	kFactorMid   = 20   // 10-49 sessions
	kFactorVet   = 10   // 50+ sessions: low volatility
	newThreshold = 10
	midThreshold = 50
)

// KFactor selects the volatility coefficient from a user's session
// count. Volatility decreases with experience.
func KFactor(sessionCount int) int {
	switch {
	case sessionCount < newThreshold:
		return kFactorNew
	case sessionCount < midThreshold:
		return kFactorMid
	default:
		return kFactorVet
	}
}

// Expected returns the expected performance for a rating using the
// standard logistic expectation centered at the 1500 baseline:
// E = 1 / (1 + 10^((1500 - R) / 400)).
func Expected(rating int) float64 {
	return 1 / (1 + math.Pow(10, float64(baseline-rating)/spread))
}

// NewRating computes the rating after a session closes.
//
// actual is the fraction of possible vouches the receiver collected in
// the session (vouches / (participants - 1)), zero for solo sessions.
// The result is rounded half away from zero and deliberately not
// clamped: a catastrophic under-performance may drive a rating negative.
func NewRating(old, sessionCount, vouchesReceived, totalParticipants int) int {
	actual := 0.0
	if totalParticipants > 1 {
		actual = float64(vouchesReceived) / float64(totalParticipants-1)
	}
	k := float64(KFactor(sessionCount))
	return int(math.Round(float64(old) + k*(actual-Expected(old))))
}
