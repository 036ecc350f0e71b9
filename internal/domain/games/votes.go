package games

import "math"

// YesPercentage is round(100 * yes / total), with 0 for an empty vote
// set. The zero case is a display policy, not arithmetic.
func YesPercentage(yes, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(yes) / float64(total)))
}
