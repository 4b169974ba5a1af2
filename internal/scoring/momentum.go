package scoring

import (
	"math"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

// Trend bonuses added on top of the blended growth/team balance.
const (
	trendUpBonus     = 20
	trendStableBonus = 10
)

// ComputeMomentumIndex blends a growth score with a team score and applies a
// categorical trend bonus, capped at 100.
func (e *Engine) ComputeMomentumIndex(growth, team int, trend types.Trend) int {
	balance := float64(growth)*0.7 + float64(team)*0.3

	bonus := 0.0
	switch trend {
	case types.TrendUp:
		bonus = trendUpBonus
	case types.TrendStable:
		bonus = trendStableBonus
	}

	result := math.Round(balance + bonus)
	if result > 100 {
		result = 100
	}
	return int(result)
}
