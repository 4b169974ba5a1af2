package scoring

import (
	"math"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

// ScoreCodeActivity scores repository health from contributor counts and
// 30-day commit volume. Contributor counts are log-scaled so the difference
// between 2 and 10 contributors matters more than between 100 and 110.
func (e *Engine) ScoreCodeActivity(m types.CodeActivityMetrics) types.SubScore {
	total := m.TotalContributors
	if total < 0 {
		total = 0
	}
	active := m.ActiveContributors
	if active < 0 {
		active = 0
	}

	contributorScore := 0.6*Normalize(math.Log10(1+float64(total)), 0, e.cfg.ContributorLogCeiling) +
		0.4*Normalize(math.Log10(1+float64(active)), 0, e.cfg.ActiveLogCeiling)

	activityScore := Normalize(float64(m.Commits30d), 0, e.cfg.CommitCeiling)

	// Retention clamps defensively: active > total is bad upstream data, not
	// a reason to emit an out-of-range score.
	retentionRate := 0.0
	if total > 0 {
		retentionRate = clip(float64(active)/float64(total)*100, 0, 100)
	}
	retentionScore := Normalize(retentionRate, 0, e.cfg.RetentionCeiling)

	overall := 0.4*contributorScore + 0.4*activityScore + 0.2*retentionScore

	return types.SubScore{
		Score: roundScore(overall),
		Breakdown: map[string]int{
			"contributors": roundScore(contributorScore),
			"activity":     roundScore(activityScore),
			"retention":    roundScore(retentionScore),
		},
	}
}
