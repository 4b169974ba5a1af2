package scoring

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

func fullCompositeInput() CompositeInput {
	return CompositeInput{
		Code: types.CodeActivityMetrics{
			TotalContributors:  12,
			ActiveContributors: 5,
			Commits30d:         90,
		},
		Social: types.SocialMetrics{
			Followers: 10000,
			Posts30d:  20,
			Engagement: &types.EngagementMetrics{
				Likes: 200, Retweets: 40, Replies: 10,
			},
		},
		OnChain: types.OnChainMetrics{
			TVLUSD:          f64(2e9),
			Transactions30d: i64(5000),
		},
		Category: types.CategoryDeFi,
		News: []types.NewsItem{
			{Title: "Protocol launches on mainnet", Date: daysAgo(2)},
			{Title: "Alpha announces partnership with Beta", Date: daysAgo(8)},
		},
		PackageDownloads30d: 50000,
	}
}

func TestComputeCompositeScore(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	result := e.ComputeCompositeScore(ctx, fullCompositeInput())

	// Cross-check the aggregation against the individually-exposed parts.
	onchain := e.ScoreOnChain(types.OnChainMetrics{TVLUSD: f64(2e9)})
	code := e.ScoreCodeActivity(types.CodeActivityMetrics{
		TotalContributors: 12, ActiveContributors: 5, Commits30d: 90,
	})
	social := e.ScoreSocial(fullCompositeInput().Social)

	// $2B TVL with a strong score lands in the top cascade branch.
	assert.Equal(t, "onchain-exceptional", result.Policy)
	expectedGrowth := int(math.Round(0.9*float64(onchain.Score) + 0.1*float64(code.Score)))
	assert.Equal(t, expectedGrowth, result.Growth)
	assert.Equal(t, result.Growth, result.TeamHealth)
	assert.Equal(t, social.Score, result.Social)

	expectedOverall := int(math.Round(
		float64(result.Growth)*result.Weights.Growth +
			float64(result.Social)*result.Weights.Social,
	))
	assert.Equal(t, expectedOverall, result.Overall)

	assert.InDelta(t, 1.0, result.Weights.Growth+result.Weights.Social, 1e-6)
	assert.GreaterOrEqual(t, result.Overall, 0)
	assert.LessOrEqual(t, result.Overall, 100)
}

func TestComputeCompositeScoreIdempotent(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	in := fullCompositeInput()

	first := e.ComputeCompositeScore(ctx, in)
	second := e.ComputeCompositeScore(ctx, in)

	// Under a fixed clock the output is bit-identical.
	assert.Equal(t, first, second)
}

func TestComputeCompositeScoreEmptyInput(t *testing.T) {
	e := newTestEngine()

	result := e.ComputeCompositeScore(context.Background(), CompositeInput{})

	// Everything degrades to zero; no error, always a well-formed record.
	assert.Equal(t, 0, result.Overall)
	assert.Equal(t, 0, result.Growth)
	assert.Equal(t, 0, result.Social)
	// No TVL and no transactions is the pre-launch heuristic with no SDK.
	assert.Equal(t, "code-only", result.Policy)
	// No social signal folds all weight into growth.
	assert.Equal(t, 1.0, result.Weights.Growth)
	assert.Equal(t, 0.0, result.Weights.Social)
}

func TestComputeCompositeScoreBreakdown(t *testing.T) {
	e := newTestEngine()

	result := e.ComputeCompositeScore(context.Background(), fullCompositeInput())

	require.NotNil(t, result.Breakdown.CodeActivity)
	require.NotNil(t, result.Breakdown.Social)
	require.NotNil(t, result.Breakdown.OnChain)

	assert.Contains(t, result.Breakdown.CodeActivity, "contributors")
	assert.Contains(t, result.Breakdown.Social, "followers")
	// Declared-but-unobtainable on-chain fields are reported as zero rather
	// than omitted.
	assert.Equal(t, 0, result.Breakdown.OnChain["user_growth"])
	assert.Equal(t, 0, result.Breakdown.OnChain["transactions"])

	assert.Greater(t, result.Breakdown.Adoption, 0)
	assert.Greater(t, result.Breakdown.News, 0)
	assert.Greater(t, result.Breakdown.Partnerships, 0)
	assert.Greater(t, result.Breakdown.WebActivity, 0)
	assert.Greater(t, result.Breakdown.Attention, 0)
	assert.Greater(t, result.Breakdown.Virality, 0)
}

func TestComputeCompositeScoreNoSocialWeight(t *testing.T) {
	e := newTestEngine()

	in := fullCompositeInput()
	in.Social = types.SocialMetrics{}

	result := e.ComputeCompositeScore(context.Background(), in)
	assert.Equal(t, 1.0, result.Weights.Growth)
	assert.Equal(t, 0.0, result.Weights.Social)
	assert.Equal(t, result.Growth, result.Overall)
}
