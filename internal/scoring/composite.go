package scoring

import (
	"context"
	"math"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

// CompositeInput bundles every signal family for one entity. All fields are
// optional in the sense that zero values degrade to zero sub-scores; nothing
// here ever causes an error.
type CompositeInput struct {
	Code                types.CodeActivityMetrics
	Social              types.SocialMetrics
	OnChain             types.OnChainMetrics
	Category            types.Category
	News                []types.NewsItem
	PartnershipAnalyses []types.PartnershipAnalysis
	PackageDownloads30d int64
}

// ComputeCompositeScore runs every sub-scorer, allocates weights via the
// policy cascade, and combines the results into the final composite record.
// Identical inputs under a fixed clock yield identical output.
func (e *Engine) ComputeCompositeScore(ctx context.Context, in CompositeInput) types.CompositeScore {
	codeScore := e.ScoreCodeActivity(in.Code)
	socialScore := e.ScoreSocial(in.Social)
	onchainScore := e.ScoreOnChain(in.OnChain)
	adoptionScore := e.ScorePackageAdoption(in.PackageDownloads30d)

	newsScore := e.ScoreNews(in.News)
	partnerScore := e.ScorePartnerships(ctx, in.News, in.PartnershipAnalyses)
	webScore := e.ScoreWebActivity(in.News)
	attentionScore := e.ScoreAttention(in.Social)
	viralityScore := 0.0
	if in.Social.Engagement != nil {
		viralityScore = e.ScoreVirality(*in.Social.Engagement)
	}

	pin := PolicySignals{
		OnChainScore:  float64(onchainScore.Score),
		CodeScore:     float64(codeScore.Score),
		AdoptionScore: adoptionScore,
	}
	if in.OnChain.TVLUSD != nil && *in.OnChain.TVLUSD > 0 {
		pin.TVLUSD = *in.OnChain.TVLUSD
		pin.HasTVL = true
	}
	if in.OnChain.Transactions30d != nil {
		pin.Transactions = *in.OnChain.Transactions30d
	}

	alloc := e.AllocateWeights(in.Category, pin, in.Social)

	overall := math.Round(
		float64(alloc.CombinedGrowth)*alloc.Weights.Growth +
			float64(socialScore.Score)*alloc.Weights.Social,
	)

	return types.CompositeScore{
		Overall:    int(overall),
		Growth:     alloc.CombinedGrowth,
		Social:     socialScore.Score,
		TeamHealth: alloc.CombinedGrowth, // alias kept for older consumers
		Policy:     alloc.Policy,
		Weights:    alloc.Weights,
		Breakdown: types.CompositeBreakdown{
			CodeActivity: codeScore.Breakdown,
			Social:       socialScore.Breakdown,
			OnChain:      onchainScore.Breakdown,
			Adoption:     roundScore(adoptionScore),
			News:         roundScore(newsScore),
			Partnerships: roundScore(partnerScore),
			WebActivity:  roundScore(webScore),
			Attention:    roundScore(attentionScore),
			Virality:     roundScore(viralityScore),
		},
	}
}
