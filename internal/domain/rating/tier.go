package rating

import "math"

// Tier is a named reputation band derived from a rating.
type Tier struct {
	Name      string `json:"name"`
	MinRating int    `json:"min_rating"`
}

// tiers is ordered ascending by MinRating. TierFor picks the highest
// band whose floor is at or below the rating.
var tiers = []Tier{
	{Name: "Newbie", MinRating: 0},
	{Name: "Contributor", MinRating: 1200},
	{Name: "Specialist", MinRating: 1400},
	{Name: "Expert", MinRating: 1600},
	{Name: "Master", MinRating: 1900},
	{Name: "Grandmaster", MinRating: 2200},
}

// AllTiers returns the tier table ordered ascending by floor.
func AllTiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// TierFor classifies a rating into its band. Ratings below the Newbie
// floor (negative scores are possible) still classify as Newbie.
func TierFor(score int) Tier {
	current := tiers[0]
	for _, t := range tiers[1:] {
		if score >= t.MinRating {
			current = t
		}
	}
	return current
}

// ProgressToNextTier returns how far a rating has climbed through its
// band as a percentage: 0 at the band's floor, 100 at the next band's
// floor, clamped to [0,100]. The top band is always 100.
func ProgressToNextTier(score int) int {
	current := TierFor(score)
	if current.MinRating == tiers[len(tiers)-1].MinRating {
		return 100
	}
	var next Tier
	for i, t := range tiers {
		if t.MinRating == current.MinRating {
			next = tiers[i+1]
			break
		}
	}
	span := float64(next.MinRating - current.MinRating)
	progress := float64(score - current.MinRating)
	pct := int(math.Round(progress / span * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
