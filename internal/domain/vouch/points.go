// Package vouch implements vouch point math and the idempotency guard
// that keeps a (voucher, receiver, session) tuple from counting twice.
package vouch

// Point schedule constants.
const (
	firstVouchPoints = 10
	pointsStep       = 2
)

// PointsForNthVouch returns the point value of a vouch given how many
// vouches this voucher has already given this receiver (n is
// 0-indexed). The schedule is strictly diminishing with a floor of
// zero: 10, 8, 6, 4, 2, 0, 0, ...
func PointsForNthVouch(n int) int {
	p := firstVouchPoints - pointsStep*n
	if p < 0 {
		return 0
	}
	return p
}
