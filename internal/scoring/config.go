package scoring

// Config carries every tuning constant used by the sub-scorers and the weight
// cascade. The defaults are calibrated for small/early-stage organizations
// rather than mega-projects; callers that score a different population can
// supply their own values.
type Config struct {
	// Code activity. The log ceilings are chosen so that ~30 total and ~10
	// active contributors already saturate the respective terms.
	ContributorLogCeiling float64
	ActiveLogCeiling      float64
	CommitCeiling         float64 // commits/30d treated as excellent
	RetentionCeiling      float64 // retention % treated as excellent

	// Social audience. Log-scaled between a follower floor and ceiling.
	FollowerFloor         float64
	FollowerCeiling       float64
	EngagementRateCeiling float64 // engagement % treated as excellent

	// On-chain TVL, USD. Log-scaled between floor and ceiling.
	TVLFloor   float64
	TVLCeiling float64

	// Package registry downloads/30d. Log-scaled between floor and ceiling.
	DownloadFloor   float64
	DownloadCeiling float64

	// Press freshness decay: items older than the window contribute only the
	// floor multiple of their base points.
	NewsWindowDays        float64
	NewsFreshnessFloor    float64
	PartnerWindowDays     float64
	PartnerFreshnessFloor float64
	WebWindowDays         float64

	// Attention.
	VelocityCeiling float64 // engagement velocity % treated as excellent
	ReachFloor      float64 // follower fallback when no engagement exists
	ReachCeiling    float64

	// Virality ratios, in percent of likes.
	RetweetRatioCeiling float64
	ReplyRatioCeiling   float64

	// Weight cascade thresholds.
	TVLExceptional   float64 // proven usage dominates above this
	TVLMeaningful    float64
	OnChainExceptional float64
	OnChainStrong      float64
	LowTransactionCount int64 // below this with no TVL, treat as pre-launch
	AdoptionStrong      float64
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		ContributorLogCeiling: 1.48,
		ActiveLogCeiling:      1.0,
		CommitCeiling:         150,
		RetentionCeiling:      20,

		FollowerFloor:         500,
		FollowerCeiling:       500000,
		EngagementRateCeiling: 1.5,

		TVLFloor:   1e6,
		TVLCeiling: 1e10,

		DownloadFloor:   1000,
		DownloadCeiling: 200000,

		NewsWindowDays:        14,
		NewsFreshnessFloor:    0.5,
		PartnerWindowDays:     30,
		PartnerFreshnessFloor: 0.2,
		WebWindowDays:         30,

		VelocityCeiling: 2,
		ReachFloor:      1000,
		ReachCeiling:    200000,

		RetweetRatioCeiling: 20,
		ReplyRatioCeiling:   10,

		TVLExceptional:      1e9,
		TVLMeaningful:       1e7,
		OnChainExceptional:  75,
		OnChainStrong:       70,
		LowTransactionCount: 10,
		AdoptionStrong:      30,
	}
}
