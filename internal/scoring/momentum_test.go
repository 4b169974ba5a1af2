package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

func TestComputeMomentumIndex(t *testing.T) {
	e := NewEngine(DefaultConfig())

	tests := []struct {
		name     string
		growth   int
		team     int
		trend    types.Trend
		expected int
	}{
		{name: "upward trend", growth: 50, team: 50, trend: types.TrendUp, expected: 70},
		{name: "stable trend", growth: 50, team: 50, trend: types.TrendStable, expected: 60},
		{name: "downward trend", growth: 50, team: 50, trend: types.TrendDown, expected: 50},
		{name: "unknown trend gets no bonus", growth: 50, team: 50, trend: types.Trend("sideways"), expected: 50},
		{name: "capped at 100", growth: 95, team: 100, trend: types.TrendUp, expected: 100},
		{name: "growth weighted 70/30", growth: 100, team: 0, trend: types.TrendDown, expected: 70},
		{name: "team weighted 70/30", growth: 0, team: 100, trend: types.TrendDown, expected: 30},
		{name: "all zero", growth: 0, team: 0, trend: types.TrendDown, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.ComputeMomentumIndex(tt.growth, tt.team, tt.trend))
		})
	}
}
