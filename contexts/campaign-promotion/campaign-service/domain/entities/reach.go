package entities

import "math"

const (
	reachPerDollar      = 180.0
	reachBaselineDays   = 30.0
	reachLowMultiplier  = 0.8
	reachHighMultiplier = 1.2
)

type ReachEstimate struct {
	Low  int64
	Mid  int64
	High int64
}

// EstimateReach scales budget linearly and duration by the square root of its
// ratio to a 30 day baseline.
func EstimateReach(budget float64, durationDays int) ReachEstimate {
	if budget <= 0 || durationDays <= 0 {
		return ReachEstimate{}
	}
	base := budget * reachPerDollar
	multiplier := math.Sqrt(float64(durationDays) / reachBaselineDays)
	mid := math.Round(base * multiplier)
	return ReachEstimate{
		Low:  int64(math.Round(mid * reachLowMultiplier)),
		Mid:  int64(mid),
		High: int64(math.Round(mid * reachHighMultiplier)),
	}
}
