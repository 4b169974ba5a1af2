package scoring

import (
	"math"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

// ScoreSocial scores audience size and engagement rate. Follower counts are
// log-scaled between the configured floor and ceiling, calibrated for
// smaller/niche accounts.
func (e *Engine) ScoreSocial(m types.SocialMetrics) types.SubScore {
	followersScore := 0.0
	if m.Followers > 0 {
		followersScore = Normalize(
			math.Log10(float64(m.Followers)),
			math.Log10(e.cfg.FollowerFloor),
			math.Log10(e.cfg.FollowerCeiling),
		)
	}

	engagementScore := 0.0
	if m.Engagement != nil {
		sum := m.Engagement.Likes + m.Engagement.Retweets + m.Engagement.Replies
		if m.Followers > 0 && sum > 0 {
			rate := float64(sum) / float64(m.Followers) * 100
			if rate > 100 {
				rate = 100
			}
			engagementScore = Normalize(rate, 0, e.cfg.EngagementRateCeiling)
		}
	}

	overall := 0.7*followersScore + 0.3*engagementScore

	return types.SubScore{
		Score: roundScore(overall),
		Breakdown: map[string]int{
			"followers":  roundScore(followersScore),
			"engagement": roundScore(engagementScore),
		},
	}
}

// ScoreAttention measures how much notice an account is drawing: engagement
// velocity relative to audience size, with a pure-reach fallback when no
// engagement data exists.
func (e *Engine) ScoreAttention(m types.SocialMetrics) float64 {
	var total int64
	if m.Engagement != nil {
		total = m.Engagement.Likes + m.Engagement.Retweets + m.Engagement.Replies
	}

	if total > 0 {
		followers := m.Followers
		if followers < 1 {
			followers = 1
		}
		velocity := float64(total) / float64(followers) * 100
		if velocity > 100 {
			velocity = 100
		}
		return Normalize(velocity, 0, e.cfg.VelocityCeiling)
	}
	if m.Followers > 0 {
		return Normalize(float64(m.Followers), e.cfg.ReachFloor, e.cfg.ReachCeiling)
	}
	return 0
}

// ScoreVirality scores how far posts travel beyond the immediate audience,
// from reshare and reply ratios.
func (e *Engine) ScoreVirality(eng types.EngagementMetrics) float64 {
	retweetRatio := 0.0
	replyRatio := 0.0
	if eng.Likes > 0 {
		retweetRatio = float64(eng.Retweets) / float64(eng.Likes) * 100
		replyRatio = float64(eng.Replies) / float64(eng.Likes) * 100
	}
	retweetScore := Normalize(retweetRatio, 0, e.cfg.RetweetRatioCeiling)
	replyScore := Normalize(replyRatio, 0, e.cfg.ReplyRatioCeiling)
	return 0.6*retweetScore + 0.4*replyScore
}
