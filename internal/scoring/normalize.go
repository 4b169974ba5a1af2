package scoring

import "math"

// Normalize rescales value into [0,100] given a domain [min,max].
//
// The formula is direction-agnostic: passing min > max inverts the scale,
// which turns "smaller is better" raw values (e.g. days since an event) into
// "larger is better" scores without a separate code path.
func Normalize(value, min, max float64) float64 {
	if !isFinite(value) || !isFinite(min) || !isFinite(max) {
		return 0
	}
	if min == max {
		// Degenerate domain: preserve ordering without dividing by zero.
		switch {
		case value == min:
			return 50
		case value < min:
			return 0
		default:
			return 100
		}
	}
	pct := (value - min) / (max - min) * 100
	return clip(pct, 0, 100)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// roundScore clamps to [0,100] and rounds to the nearest integer for display.
func roundScore(x float64) int {
	return int(math.Round(clip(x, 0, 100)))
}
