package scoring

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

// Shipping-pace keywords, matched against titles only. Each pattern anchors
// on a word boundary so e.g. "disintegrated" never matches the integration
// stem.
var newsKeywords = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\blaunch(es|ed|ing)?\b`),
	regexp.MustCompile(`(?i)\bship(s|ped|ping)?\b`),
	regexp.MustCompile(`(?i)\breleas(e|es|ed|ing)\b`),
	regexp.MustCompile(`(?i)\bdeploy(s|ed|ing|ment)?\b`),
	regexp.MustCompile(`(?i)\bintegrat(e|es|ed|ing|ion)\b`),
	regexp.MustCompile(`(?i)\bupgrad(e|es|ed|ing)\b`),
	regexp.MustCompile(`(?i)\bmainnet\b`),
	regexp.MustCompile(`(?i)\btestnet\b`),
	regexp.MustCompile(`(?i)\bmilestone\b`),
	regexp.MustCompile(`(?i)\brollout\b`),
}

// Fallback partnership keywords, matched against title and body.
var partnerKeywords = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bpartnership\b`),
	regexp.MustCompile(`(?i)\bpartners? with\b`),
	regexp.MustCompile(`(?i)\bintegration\b`),
	regexp.MustCompile(`(?i)\bcollaborat(e|es|ed|ing|ion)\b`),
	regexp.MustCompile(`(?i)\bjoins? forces\b`),
	regexp.MustCompile(`(?i)\bteams? up\b`),
	regexp.MustCompile(`(?i)\balliance\b`),
}

// Points per classifier quality tier, before confidence and freshness.
var tierPoints = map[types.PartnershipTier]float64{
	types.TierOne:   50,
	types.TierTwo:   30,
	types.TierThree: 15,
	types.TierNone:  0,
}

var newsDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// parseNewsDate parses the loosely-formatted dates upstream feeds produce.
func parseNewsDate(s string) (time.Time, bool) {
	for _, layout := range newsDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// freshness computes the linear recency weight of an item in [0,100].
// The inverted Normalize bounds make larger daysAgo yield smaller freshness.
func (e *Engine) freshness(published time.Time, windowDays float64) float64 {
	daysAgo := e.now().Sub(published).Hours() / 24
	if daysAgo < 0 {
		daysAgo = 0
	}
	return Normalize(daysAgo, windowDays, 0)
}

// ScoreNews scores shipping pace from dated press items. Each item earns base
// points per matched shipping keyword in its title, decayed by freshness; the
// floor keeps old-but-relevant items at nonzero weight. Items with
// unparseable dates are excluded from the sum entirely.
func (e *Engine) ScoreNews(items []types.NewsItem) float64 {
	total := 0.0
	for _, item := range items {
		published, ok := parseNewsDate(item.Date)
		if !ok {
			continue
		}
		matches := 0
		for _, kw := range newsKeywords {
			if kw.MatchString(item.Title) {
				matches++
			}
		}
		base := 10 + 5*float64(matches)
		f := e.freshness(published, e.cfg.NewsWindowDays)
		total += base * (f/100 + e.cfg.NewsFreshnessFloor)
	}
	return clip(total, 0, 100)
}

// ScorePartnerships scores partnership strength from press items. The
// preferred path consumes one classifier analysis per item; when analyses are
// absent or misaligned with the item list (and no attached classifier can
// supply them) the deterministic keyword fallback applies. Misaligned sets
// are discarded wholesale rather than best-effort index matched.
func (e *Engine) ScorePartnerships(ctx context.Context, items []types.NewsItem, analyses []types.PartnershipAnalysis) float64 {
	if len(items) == 0 {
		return 0
	}

	if analyses == nil && e.classifier != nil {
		got, err := e.classifier.AnalyzePartnerships(ctx, items)
		if err == nil {
			analyses = got
		}
	}

	if len(analyses) != len(items) {
		return e.scorePartnershipsFallback(items)
	}

	total := 0.0
	for i, item := range items {
		published, ok := parseNewsDate(item.Date)
		if !ok {
			continue
		}
		a := analyses[i]
		if !a.IsPartnership {
			continue
		}
		points := tierPoints[a.Tier]
		confidence := clip(a.Confidence, 0, 100)
		f := e.freshness(published, e.cfg.PartnerWindowDays)
		total += points * (confidence / 100) * (f/100 + e.cfg.PartnerFreshnessFloor)
	}
	return clip(total, 0, 100)
}

func (e *Engine) scorePartnershipsFallback(items []types.NewsItem) float64 {
	total := 0.0
	for _, item := range items {
		published, ok := parseNewsDate(item.Date)
		if !ok {
			continue
		}
		text := item.Title + "\n" + item.Body
		matches := 0
		for _, kw := range partnerKeywords {
			if kw.MatchString(text) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		base := 20 + 10*float64(matches)
		f := e.freshness(published, e.cfg.PartnerWindowDays)
		total += base * (f/100 + e.cfg.PartnerFreshnessFloor)
	}
	return clip(total, 0, 100)
}

// ScoreWebActivity scores publishing cadence: recency of the latest item
// blended with a frequency term built from item count and the inverse average
// gap between consecutive items.
func (e *Engine) ScoreWebActivity(items []types.NewsItem) float64 {
	dates := make([]time.Time, 0, len(items))
	for _, item := range items {
		if published, ok := parseNewsDate(item.Date); ok {
			dates = append(dates, published)
		}
	}
	if len(dates) == 0 {
		return 0
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	daysSinceLatest := e.now().Sub(dates[len(dates)-1]).Hours() / 24
	if daysSinceLatest < 0 {
		daysSinceLatest = 0
	}
	recency := Normalize(daysSinceLatest, e.cfg.WebWindowDays, 0)

	countScore := Normalize(float64(len(dates)), 0, 5)

	avgGapDays := e.cfg.WebWindowDays
	if len(dates) > 1 {
		totalGap := dates[len(dates)-1].Sub(dates[0]).Hours() / 24
		avgGapDays = totalGap / float64(len(dates)-1)
	}
	// Inverted bounds: tighter publishing gaps score higher.
	gapScore := Normalize(avgGapDays, e.cfg.WebWindowDays, 1)

	frequency := 0.5*countScore + 0.5*gapScore
	return 0.6*recency + 0.4*frequency
}
