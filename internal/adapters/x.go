package adapters

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

// XAdapter fetches social metrics from the X (Twitter) API v2.
type XAdapter struct {
	bearerToken string
	baseURL     string
	api         *apiClient
}

// NewXAdapter creates an adapter using bearer-token authentication.
func NewXAdapter(bearerToken string) *XAdapter {
	return &XAdapter{
		bearerToken: bearerToken,
		baseURL:     "https://api.twitter.com/2",
		api:         newAPIClient("x", rate.Limit(0.5), 3),
	}
}

func (x *XAdapter) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + x.bearerToken}
}

type xUserResponse struct {
	Data struct {
		ID            string `json:"id"`
		Username      string `json:"username"`
		PublicMetrics struct {
			FollowersCount int64 `json:"followers_count"`
			TweetCount     int64 `json:"tweet_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

type xTweetsResponse struct {
	Data []struct {
		ID            string `json:"id"`
		PublicMetrics struct {
			LikeCount    int64 `json:"like_count"`
			RetweetCount int64 `json:"retweet_count"`
			ReplyCount   int64 `json:"reply_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

// FetchSocialMetrics collects follower count and 30-day engagement for a
// handle. A handle with no recent posts yields zero engagement, which the
// scoring engine treats as a missing signal rather than an error.
func (x *XAdapter) FetchSocialMetrics(ctx context.Context, handle string) (types.SocialMetrics, error) {
	var metrics types.SocialMetrics
	if x.bearerToken == "" {
		return metrics, fmt.Errorf("x bearer token not configured")
	}

	var user xUserResponse
	userURL := fmt.Sprintf("%s/users/by/username/%s?user.fields=public_metrics", x.baseURL, url.PathEscape(handle))
	if err := x.api.getJSON(ctx, userURL, x.headers(), &user); err != nil {
		return metrics, fmt.Errorf("fetch user: %w", err)
	}
	metrics.Followers = user.Data.PublicMetrics.FollowersCount
	if user.Data.ID == "" {
		return metrics, fmt.Errorf("handle %q not found", handle)
	}

	startTime := time.Now().AddDate(0, 0, -30).UTC().Format(time.RFC3339)
	var tweets xTweetsResponse
	tweetsURL := fmt.Sprintf("%s/users/%s/tweets?max_results=100&start_time=%s&tweet.fields=public_metrics",
		x.baseURL, url.PathEscape(user.Data.ID), url.QueryEscape(startTime))
	if err := x.api.getJSON(ctx, tweetsURL, x.headers(), &tweets); err != nil {
		return metrics, fmt.Errorf("fetch tweets: %w", err)
	}

	metrics.Posts30d = len(tweets.Data)
	if len(tweets.Data) > 0 {
		eng := &types.EngagementMetrics{}
		for _, tw := range tweets.Data {
			eng.Likes += tw.PublicMetrics.LikeCount
			eng.Retweets += tw.PublicMetrics.RetweetCount
			eng.Replies += tw.PublicMetrics.ReplyCount
		}
		metrics.Engagement = eng
	}

	return metrics, nil
}
