package adapters

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

// githubContributor is one entry of the repo contributors listing.
type githubContributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

// githubCommit is one entry of the repo commit listing.
type githubCommit struct {
	SHA    string `json:"sha"`
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
	Commit struct {
		Author struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// GitHubAdapter fetches code-activity metrics from the GitHub REST API.
type GitHubAdapter struct {
	token   string
	baseURL string
	api     *apiClient
}

// NewGitHubAdapter creates an adapter. The token is optional; unauthenticated
// requests work with tighter upstream quotas.
func NewGitHubAdapter(token string) *GitHubAdapter {
	return &GitHubAdapter{
		token:   token,
		baseURL: "https://api.github.com",
		api:     newAPIClient("github", rate.Limit(1), 5),
	}
}

func (g *GitHubAdapter) headers() map[string]string {
	h := map[string]string{"Accept": "application/vnd.github+json"}
	if g.token != "" {
		h["Authorization"] = "Bearer " + g.token
	}
	return h
}

// FetchCodeActivity collects contributor counts and 30-day commit volume for
// owner/repo.
func (g *GitHubAdapter) FetchCodeActivity(ctx context.Context, owner, repo string) (types.CodeActivityMetrics, error) {
	var metrics types.CodeActivityMetrics

	var contributors []githubContributor
	contribURL := fmt.Sprintf("%s/repos/%s/%s/contributors?per_page=100", g.baseURL, url.PathEscape(owner), url.PathEscape(repo))
	if err := g.api.getJSON(ctx, contribURL, g.headers(), &contributors); err != nil {
		return metrics, fmt.Errorf("fetch contributors: %w", err)
	}
	metrics.TotalContributors = len(contributors)

	since := time.Now().AddDate(0, 0, -30).UTC().Format(time.RFC3339)
	var commits []githubCommit
	commitsURL := fmt.Sprintf("%s/repos/%s/%s/commits?since=%s&per_page=100",
		g.baseURL, url.PathEscape(owner), url.PathEscape(repo), url.QueryEscape(since))
	if err := g.api.getJSON(ctx, commitsURL, g.headers(), &commits); err != nil {
		return metrics, fmt.Errorf("fetch commits: %w", err)
	}

	metrics.Commits30d = len(commits)

	active := make(map[string]struct{})
	for _, c := range commits {
		switch {
		case c.Author != nil && c.Author.Login != "":
			active[c.Author.Login] = struct{}{}
		case c.Commit.Author.Name != "":
			active[c.Commit.Author.Name] = struct{}{}
		}
	}
	metrics.ActiveContributors = len(active)

	return metrics, nil
}
