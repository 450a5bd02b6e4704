package scoring

import "math"

// Round1 rounds to one decimal place, half away from zero. Every
// percentage-like output of the pipeline goes through this helper so the
// engine and the display layers agree on granularity.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundWhole rounds to the nearest integer, half away from zero.
func RoundWhole(v float64) float64 {
	return math.Round(v)
}
