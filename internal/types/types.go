package types

// Category selects the base growth/social weighting for an entity.
type Category string

const (
	CategoryDeFi      Category = "defi"
	CategoryDeFiInfra Category = "defi-infra"
	CategoryOther     Category = "other"
)

// Trend is a categorical direction flag used by the momentum index.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendStable Trend = "stable"
	TrendDown   Trend = "down"
)

// CodeActivityMetrics holds repository activity over a trailing 30-day window.
// Active <= Total is assumed but not enforced; the retention computation clamps.
type CodeActivityMetrics struct {
	TotalContributors  int `json:"total_contributors"`
	ActiveContributors int `json:"active_contributors_30d"`
	Commits30d         int `json:"commits_30d"`
}

// EngagementMetrics holds engagement counts over a trailing 30-day window.
type EngagementMetrics struct {
	Likes    int64 `json:"likes"`
	Retweets int64 `json:"retweets"`
	Replies  int64 `json:"replies"`
}

// SocialMetrics holds audience and engagement data for an entity's handle.
type SocialMetrics struct {
	Followers  int64              `json:"followers"`
	Posts30d   int                `json:"posts_30d"`
	Engagement *EngagementMetrics `json:"engagement_30d,omitempty"`
}

// OnChainMetrics holds on-chain usage data. Only TVL is scored; the remaining
// fields cannot be obtained without privileged indexer access and always carry
// zero values so the breakdown can report them as unavailable.
type OnChainMetrics struct {
	TVLUSD          *float64 `json:"tvl_usd,omitempty"`
	Transactions30d *int64   `json:"transactions_30d,omitempty"`

	// Not publicly obtainable; declared for breakdown completeness.
	ActiveWallets30d *int64 `json:"active_wallets_30d,omitempty"`
	UserGrowth30d    *int64 `json:"user_growth_30d,omitempty"`
}

// NewsItem is a dated press item. Date is kept as the raw string supplied by
// the upstream feed; items whose dates do not parse are excluded from scoring.
type NewsItem struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
	Date  string `json:"date"`
}

// PartnershipTier is the quality tier assigned by the partnership classifier.
type PartnershipTier string

const (
	TierOne   PartnershipTier = "tier1"
	TierTwo   PartnershipTier = "tier2"
	TierThree PartnershipTier = "tier3"
	TierNone  PartnershipTier = "none"
)

// PartnershipAnalysis is one classifier verdict, aligned 1:1 with a NewsItem.
type PartnershipAnalysis struct {
	IsPartnership bool            `json:"is_partnership"`
	Tier          PartnershipTier `json:"tier"`
	Confidence    float64         `json:"confidence"`
	Reasoning     string          `json:"reasoning,omitempty"`
}

// SubScore is a rounded 0-100 score plus the named factor scores behind it.
type SubScore struct {
	Score     int            `json:"score"`
	Breakdown map[string]int `json:"breakdown"`
}

// WeightAllocation is the final top-level weight pair. Growth+Social sums to
// 1.0 within floating-point tolerance after redistribution.
type WeightAllocation struct {
	Growth float64 `json:"growth"`
	Social float64 `json:"social"`
}

// CompositeBreakdown nests every sub-scorer's breakdown for explainability.
// On-chain user growth and transactions are structurally zero (cannot be
// measured), not scored-as-zero.
type CompositeBreakdown struct {
	CodeActivity map[string]int `json:"code_activity"`
	Social       map[string]int `json:"social"`
	OnChain      map[string]int `json:"on_chain"`
	Adoption     int            `json:"package_adoption"`
	News         int            `json:"news"`
	Partnerships int            `json:"partnerships"`
	WebActivity  int            `json:"web_activity"`
	Attention    int            `json:"attention"`
	Virality     int            `json:"virality"`
}

// CompositeScore is the final record emitted by the engine.
type CompositeScore struct {
	Overall    int                `json:"overall"`
	Growth     int                `json:"growth"`
	Social     int                `json:"social"`
	TeamHealth int                `json:"team_health"` // legacy alias of Growth
	Policy     string             `json:"policy"`
	Weights    WeightAllocation   `json:"weights"`
	Breakdown  CompositeBreakdown `json:"breakdown"`
}

// SourceRefs names the upstream identities to fetch live signals from. Any
// empty field leaves the corresponding request metrics untouched.
type SourceRefs struct {
	GitHubRepo    string `json:"github_repo,omitempty"` // "owner/repo"
	XHandle       string `json:"x_handle,omitempty"`
	DefiLlamaSlug string `json:"defillama_slug,omitempty"`
	NPMPackage    string `json:"npm_package,omitempty"`
}

// ScoreRequest is the request body for the score endpoint. Metrics may be
// supplied inline, fetched live via Sources, or both; fetched values win.
type ScoreRequest struct {
	Entity              string                `json:"entity" binding:"required"`
	Category            Category              `json:"category"`
	Code                CodeActivityMetrics   `json:"code"`
	Social              SocialMetrics         `json:"social"`
	OnChain             OnChainMetrics        `json:"on_chain"`
	News                []NewsItem            `json:"news,omitempty"`
	PartnershipAnalyses []PartnershipAnalysis `json:"partnership_analyses,omitempty"`
	PackageDownloads30d int64                 `json:"package_downloads_30d"`
	Sources             *SourceRefs           `json:"sources,omitempty"`
}

// MomentumRequest is the request body for the momentum endpoint. A zero
// growth score is legitimate, so no field is binding-required.
type MomentumRequest struct {
	Growth int   `json:"growth"`
	Team   int   `json:"team"`
	Trend  Trend `json:"trend"`
}
