package scoring

import (
	"math"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

// weightTolerance is the floating-point drift allowed before renormalizing
// the growth/social pair.
const weightTolerance = 0.001

// PolicySignals carries the signals the growth-weighting cascade selects on.
// A nil/absent TVL and a TVL of zero are both "no TVL" for the pre-launch
// heuristic.
type PolicySignals struct {
	OnChainScore  float64
	CodeScore     float64
	AdoptionScore float64
	TVLUSD        float64
	HasTVL        bool
	Transactions  int64
}

// growthMix blends the on-chain, adoption and code-activity sub-scores into
// a single growth figure.
type growthMix struct {
	OnChain  float64
	Adoption float64
	Code     float64
}

// growthPolicy is one branch of the cascade: a named predicate plus the mix
// applied when it fires. Policies are evaluated in fixed priority order and
// exactly one applies (the last predicate is always true).
type growthPolicy struct {
	Name    string
	Applies func(in PolicySignals) bool
	Mix     growthMix
}

func growthPolicies(cfg Config) []growthPolicy {
	preLaunch := func(in PolicySignals) bool {
		return in.Transactions < cfg.LowTransactionCount && !in.HasTVL
	}
	return []growthPolicy{
		{
			// Proven usage dominates: strong score backed by exceptional TVL.
			Name: "onchain-exceptional",
			Applies: func(in PolicySignals) bool {
				return in.OnChainScore >= cfg.OnChainExceptional && in.TVLUSD >= cfg.TVLExceptional
			},
			Mix: growthMix{OnChain: 0.90, Code: 0.10},
		},
		{
			Name: "onchain-strong",
			Applies: func(in PolicySignals) bool {
				return in.OnChainScore >= cfg.OnChainStrong
			},
			Mix: growthMix{OnChain: 0.75, Code: 0.25},
		},
		{
			// Exceptional TVL but partial score data.
			Name: "tvl-exceptional",
			Applies: func(in PolicySignals) bool {
				return in.TVLUSD >= cfg.TVLExceptional
			},
			Mix: growthMix{OnChain: 0.85, Code: 0.15},
		},
		{
			Name: "tvl-meaningful",
			Applies: func(in PolicySignals) bool {
				return in.TVLUSD >= cfg.TVLMeaningful
			},
			Mix: growthMix{OnChain: 0.60, Code: 0.40},
		},
		{
			// Pre-launch/stealth infrastructure with real SDK distribution.
			Name: "adoption-led",
			Applies: func(in PolicySignals) bool {
				return preLaunch(in) && in.AdoptionScore >= cfg.AdoptionStrong
			},
			Mix: growthMix{Adoption: 0.80, Code: 0.20},
		},
		{
			Name: "adoption-early",
			Applies: func(in PolicySignals) bool {
				return preLaunch(in) && in.AdoptionScore > 0
			},
			Mix: growthMix{Adoption: 0.55, Code: 0.45},
		},
		{
			// Base-layer infra with no SDK distribution: code activity is the
			// only available signal.
			Name:    "code-only",
			Applies: preLaunch,
			Mix:     growthMix{Code: 1.0},
		},
		{
			Name:    "balanced",
			Applies: func(PolicySignals) bool { return true },
			Mix:     growthMix{OnChain: 0.50, Code: 0.50},
		},
	}
}

// Allocation is the output of the weight cascade: the combined growth figure
// (already a 0-100 score), the policy that produced it, and the final
// top-level weight pair.
type Allocation struct {
	CombinedGrowth int
	Policy         string
	Weights        types.WeightAllocation
}

func baseWeights(category types.Category) types.WeightAllocation {
	switch category {
	case types.CategoryDeFi:
		return types.WeightAllocation{Growth: 0.95, Social: 0.05}
	case types.CategoryDeFiInfra:
		return types.WeightAllocation{Growth: 0.90, Social: 0.10}
	default:
		return types.WeightAllocation{Growth: 0.90, Social: 0.10}
	}
}

// AllocateWeights runs the full cascade: base weights by category, missing-
// social redistribution, combined-growth policy selection, and a final
// renormalization that guards against floating-point drift.
func (e *Engine) AllocateWeights(category types.Category, in PolicySignals, social types.SocialMetrics) Allocation {
	w := baseWeights(category)

	// No usable social signal: fold its entire weight into growth rather
	// than silently under-weighting the composite.
	if social.Followers <= 0 && social.Posts30d <= 0 {
		w.Growth += w.Social
		w.Social = 0
	}

	var selected growthPolicy
	for _, p := range growthPolicies(e.cfg) {
		if p.Applies(in) {
			selected = p
			break
		}
	}

	combined := selected.Mix.OnChain*in.OnChainScore +
		selected.Mix.Adoption*in.AdoptionScore +
		selected.Mix.Code*in.CodeScore

	if sum := w.Growth + w.Social; math.Abs(sum-1) > weightTolerance {
		w.Growth /= sum
		w.Social /= sum
	}

	return Allocation{
		CombinedGrowth: roundScore(combined),
		Policy:         selected.Name,
		Weights:        w,
	}
}
