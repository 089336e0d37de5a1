package intent

import "math"

// Per-dimension bonus ceilings. They sum to 20, the most intent can ever add
// to a final score.
var bonusCaps = map[string]float64{
	DimTechnical:       8,
	DimWorkArrangement: 4,
	DimAvailability:    3,
	DimRoleFocus:       3,
	DimExperienceLevel: 2,
}

const maxTotalBonus = 20

// Apply adds the validated intent bonus to a base score, never subtracting
// and never exceeding 100.
func Apply(base int, result *Result) int {
	if result == nil || result.TotalBonus <= 0 {
		return clampScore(base)
	}

	bonus := result.TotalBonus
	if bonus > maxTotalBonus {
		bonus = maxTotalBonus
	}

	return clampScore(base + int(math.Round(bonus)))
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
