package scoring

import (
	"math"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

// ScoreOnChain scores on-chain usage. Only TVL is scored; user growth and
// transaction sub-scores are reported as zero because the underlying data is
// not publicly obtainable. Reporting them explicitly (rather than omitting
// the fields) keeps the degradation auditable.
func (e *Engine) ScoreOnChain(m types.OnChainMetrics) types.SubScore {
	tvlScore := 0.0
	if m.TVLUSD != nil && *m.TVLUSD > 0 {
		tvlScore = Normalize(
			math.Log10(*m.TVLUSD),
			math.Log10(e.cfg.TVLFloor),
			math.Log10(e.cfg.TVLCeiling),
		)
	}

	return types.SubScore{
		Score: roundScore(tvlScore),
		Breakdown: map[string]int{
			"tvl":          roundScore(tvlScore),
			"user_growth":  0, // data unavailable
			"transactions": 0, // data unavailable
		},
	}
}
