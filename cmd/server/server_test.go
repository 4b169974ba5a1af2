package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tractionmeter/tractionmeter/internal/adapters"
	"github.com/tractionmeter/tractionmeter/internal/cache"
	"github.com/tractionmeter/tractionmeter/internal/database"
	"github.com/tractionmeter/tractionmeter/internal/monitoring"
	"github.com/tractionmeter/tractionmeter/internal/scoring"
	"github.com/tractionmeter/tractionmeter/internal/types"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &app{
		engine:  scoring.NewEngine(scoring.DefaultConfig()),
		repo:    database.NewRepository(db),
		cache:   cache.New(time.Minute),
		metrics: monitoring.NewMetrics(),
		logger:  monitoring.NewLogger(slog.LevelError),
		github:  adapters.NewGitHubAdapter(""),
		x:       adapters.NewXAdapter(""),
		llama:   adapters.NewDefiLlamaAdapter(),
		npm:     adapters.NewNPMAdapter(),
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	a := newTestApp(t)
	r := a.routes()

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, version, resp["version"])
}

func TestScoreEndpoint(t *testing.T) {
	a := newTestApp(t)
	r := a.routes()

	tvl := 2_000_000_000.0
	req := types.ScoreRequest{
		Entity:   "acme",
		Category: types.CategoryDeFi,
		Code: types.CodeActivityMetrics{
			TotalContributors:  25,
			ActiveContributors: 10,
			Commits30d:         120,
		},
		Social: types.SocialMetrics{
			Followers: 50000,
			Posts30d:  40,
			Engagement: &types.EngagementMetrics{
				Likes: 5000, Retweets: 800, Replies: 400,
			},
		},
		OnChain:             types.OnChainMetrics{TVLUSD: &tvl},
		PackageDownloads30d: 50000,
	}

	w := doJSON(t, r, http.MethodPost, "/score", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Entity string               `json:"entity"`
		Score  types.CompositeScore `json:"score"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "acme", resp.Entity)
	assert.Equal(t, "onchain-exceptional", resp.Score.Policy)
	assert.GreaterOrEqual(t, resp.Score.Overall, 0)
	assert.LessOrEqual(t, resp.Score.Overall, 100)
	assert.Equal(t, resp.Score.Growth, resp.Score.TeamHealth)
	assert.InDelta(t, 1.0, resp.Score.Weights.Growth+resp.Score.Weights.Social, 1e-6)
}

func TestScoreEndpointValidation(t *testing.T) {
	a := newTestApp(t)
	r := a.routes()

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing entity", types.ScoreRequest{Category: types.CategoryOther}},
		{"blank entity", types.ScoreRequest{Entity: "   "}},
		{"unknown category", types.ScoreRequest{Entity: "acme", Category: "memecoin"}},
		{"malformed body", "not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/score", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestScoreEndpointCachesResponses(t *testing.T) {
	a := newTestApp(t)
	r := a.routes()

	req := types.ScoreRequest{Entity: "acme", Category: types.CategoryOther}

	first := doJSON(t, r, http.MethodPost, "/score", req)
	require.Equal(t, http.StatusOK, first.Code)
	second := doJSON(t, r, http.MethodPost, "/score", req)
	require.Equal(t, http.StatusOK, second.Code)

	assert.Equal(t, first.Body.String(), second.Body.String())
	snapshot := a.metrics.Snapshot()
	assert.Equal(t, int64(1), snapshot["cache_hits"])
}

func TestMomentumEndpoint(t *testing.T) {
	a := newTestApp(t)
	r := a.routes()

	tests := []struct {
		name string
		body types.MomentumRequest
		want float64
	}{
		{"upward trend", types.MomentumRequest{Growth: 50, Team: 50, Trend: types.TrendUp}, 70},
		{"stable trend", types.MomentumRequest{Growth: 50, Team: 50, Trend: types.TrendStable}, 60},
		{"downward trend", types.MomentumRequest{Growth: 50, Team: 50, Trend: types.TrendDown}, 50},
		{"capped at 100", types.MomentumRequest{Growth: 100, Team: 100, Trend: types.TrendUp}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/momentum", tt.body)
			require.Equal(t, http.StatusOK, w.Code)

			var resp map[string]float64
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp["momentum"])
		})
	}
}

func TestMomentumEndpointRejectsUnknownTrend(t *testing.T) {
	a := newTestApp(t)
	r := a.routes()

	w := doJSON(t, r, http.MethodPost, "/momentum", map[string]interface{}{
		"growth": 50, "trend": "sideways",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	a := newTestApp(t)
	r := a.routes()

	score := types.CompositeScore{Overall: 70, Growth: 72, Social: 50, TeamHealth: 72, Policy: "balanced"}
	require.NoError(t, a.repo.SaveSnapshot("acme", types.CategoryDeFi, score))
	require.NoError(t, a.repo.SaveSnapshot("acme", types.CategoryDeFi, score))

	w := doJSON(t, r, http.MethodGet, "/entities/acme/history?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Entity    string              `json:"entity"`
		Snapshots []database.Snapshot `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "acme", resp.Entity)
	assert.Len(t, resp.Snapshots, 1)
}

func TestHistoryEndpointEmpty(t *testing.T) {
	a := newTestApp(t)
	r := a.routes()

	w := doJSON(t, r, http.MethodGet, "/entities/ghost/history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Snapshots []database.Snapshot `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Snapshots)
}

func TestLatestEndpointNotFound(t *testing.T) {
	a := newTestApp(t)
	r := a.routes()

	w := doJSON(t, r, http.MethodGet, "/entities/ghost/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		input     string
		wantOwner string
		wantRepo  string
		wantOK    bool
	}{
		{"acme/widget", "acme", "widget", true},
		{" acme/widget ", "acme", "widget", true},
		{"acme", "", "", false},
		{"acme/", "", "", false},
		{"/widget", "", "", false},
		{"a/b/c", "", "", false},
	}

	for _, tt := range tests {
		owner, repo, ok := splitRepo(tt.input)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.input)
		assert.Equal(t, tt.wantOwner, owner)
		assert.Equal(t, tt.wantRepo, repo)
	}
}

func TestParseNewsFeeds(t *testing.T) {
	feeds := parseNewsFeeds("press=https://a.example/rss, https://b.example/feed ,")
	require.Len(t, feeds, 2)
	assert.Equal(t, "press", feeds[0].Name)
	assert.Equal(t, "https://a.example/rss", feeds[0].URL)
	assert.Equal(t, "feed1", feeds[1].Name)
	assert.Equal(t, "https://b.example/feed", feeds[1].URL)

	assert.Empty(t, parseNewsFeeds(""))
}
