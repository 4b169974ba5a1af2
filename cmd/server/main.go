package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/tractionmeter/tractionmeter/internal/adapters"
	"github.com/tractionmeter/tractionmeter/internal/cache"
	"github.com/tractionmeter/tractionmeter/internal/classifier"
	"github.com/tractionmeter/tractionmeter/internal/database"
	apperrors "github.com/tractionmeter/tractionmeter/internal/errors"
	"github.com/tractionmeter/tractionmeter/internal/monitoring"
	"github.com/tractionmeter/tractionmeter/internal/scoring"
	"github.com/tractionmeter/tractionmeter/internal/types"
)

const version = "1.0.0"

// app wires the scoring engine to its collaborators. Handlers hang off it so
// tests can assemble an app with fakes and exercise the router directly.
type app struct {
	engine  *scoring.Engine
	repo    *database.Repository
	cache   *cache.Cache
	metrics *monitoring.Metrics
	logger  *monitoring.Logger

	github *adapters.GitHubAdapter
	x      *adapters.XAdapter
	llama  *adapters.DefiLlamaAdapter
	npm    *adapters.NPMAdapter
	news   *adapters.NewsAdapter
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	port := getEnvOrDefault("PORT", "8080")
	githubToken := os.Getenv("GITHUB_TOKEN")
	xBearerToken := os.Getenv("X_BEARER_TOKEN")
	llmProvider := getEnvOrDefault("LLM_PROVIDER", "openai")
	llmModel := os.Getenv("LLM_MODEL")
	llmAPIKey := os.Getenv("LLM_API_KEY")
	cacheTTL := getEnvDuration("CACHE_TTL", 15*time.Minute)

	db, err := database.NewDB(dataDir)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	engine := scoring.NewEngine(scoring.DefaultConfig())
	if llmAPIKey != "" {
		engine.SetClassifier(classifier.New(llmProvider, llmModel, llmAPIKey, ""))
		slog.Info("partnership classifier enabled", "provider", llmProvider)
	}

	a := &app{
		engine:  engine,
		repo:    database.NewRepository(db),
		cache:   cache.New(cacheTTL),
		metrics: monitoring.NewMetrics(),
		logger:  monitoring.NewLogger(slog.LevelInfo),
		github:  adapters.NewGitHubAdapter(githubToken),
		x:       adapters.NewXAdapter(xBearerToken),
		llama:   adapters.NewDefiLlamaAdapter(),
		npm:     adapters.NewNPMAdapter(),
	}

	if feeds := parseNewsFeeds(os.Getenv("NEWS_FEEDS")); len(feeds) > 0 {
		a.news = adapters.NewNewsAdapter(feeds)
		slog.Info("news feeds configured", "count", len(feeds))
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: a.routes(),
	}

	go func() {
		slog.Info("starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server exited")
}

func (a *app) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(a.requestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.Use(a.cache.Middleware("/score", a.metrics))

	r.GET("/health", a.handleHealth)
	r.GET("/metrics", a.handleMetrics)
	r.POST("/score", a.handleScore)
	r.POST("/momentum", a.handleMomentum)
	r.GET("/entities/:id/history", a.handleHistory)
	r.GET("/entities/:id/latest", a.handleLatest)

	return r
}

func (a *app) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.metrics.IncrementRequest()
		if c.Writer.Status() >= http.StatusBadRequest {
			a.metrics.IncrementError()
		}
		a.logger.Request(c.Request.Method, c.Request.URL.Path, c.ClientIP(),
			c.Writer.Status(), time.Since(start))
	}
}

func (a *app) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *app) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, a.metrics.Snapshot())
}

func (a *app) handleScore(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	var req types.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidationError("invalid request body", err))
		return
	}

	req.Entity = strings.TrimSpace(req.Entity)
	if req.Entity == "" {
		apperrors.Respond(c, apperrors.NewValidationError("entity cannot be empty", nil))
		return
	}
	if !validCategory(req.Category) {
		apperrors.Respond(c, apperrors.NewValidationError("unknown category", nil))
		return
	}

	if req.Sources != nil {
		a.fetchSources(ctx, &req)
	}

	start := time.Now()
	score := a.engine.ComputeCompositeScore(ctx, scoring.CompositeInput{
		Code:                req.Code,
		Social:              req.Social,
		OnChain:             req.OnChain,
		Category:            req.Category,
		News:                req.News,
		PartnershipAnalyses: req.PartnershipAnalyses,
		PackageDownloads30d: req.PackageDownloads30d,
	})
	a.metrics.IncrementScored()
	a.logger.Scored(req.Entity, score.Overall, score.Policy, time.Since(start))

	// Persist off the request path; a storage hiccup never blocks a score.
	go func(entity string, category types.Category, s types.CompositeScore) {
		if err := a.repo.SaveSnapshot(entity, category, s); err != nil {
			slog.Error("failed to save snapshot", "error", err, "entity", entity)
		}
	}(req.Entity, req.Category, score)

	c.JSON(http.StatusOK, gin.H{
		"entity": req.Entity,
		"score":  score,
	})
}

// fetchSources pulls live metrics for every named source concurrently. Each
// goroutine writes a distinct request field, so no locking is needed. A
// failed source leaves the inline value in place and scoring degrades.
func (a *app) fetchSources(ctx context.Context, req *types.ScoreRequest) {
	s := req.Sources
	var wg sync.WaitGroup

	if owner, repo, ok := splitRepo(s.GitHubRepo); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			metrics, err := a.github.FetchCodeActivity(ctx, owner, repo)
			a.recordFetch("github", s.GitHubRepo, start, err)
			if err == nil {
				req.Code = metrics
			}
		}()
	}

	if s.XHandle != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			metrics, err := a.x.FetchSocialMetrics(ctx, s.XHandle)
			a.recordFetch("x", s.XHandle, start, err)
			if err == nil {
				req.Social = metrics
			}
		}()
	}

	if s.DefiLlamaSlug != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			metrics, err := a.llama.FetchOnChainMetrics(ctx, s.DefiLlamaSlug)
			a.recordFetch("defillama", s.DefiLlamaSlug, start, err)
			if err == nil {
				req.OnChain = metrics
			}
		}()
	}

	if s.NPMPackage != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			downloads, err := a.npm.FetchDownloads30d(ctx, s.NPMPackage)
			a.recordFetch("npm", s.NPMPackage, start, err)
			if err == nil {
				req.PackageDownloads30d = downloads
			}
		}()
	}

	if a.news != nil && len(req.News) == 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			items, err := a.news.FetchNews(ctx)
			a.recordFetch("news", "feeds", start, err)
			if err == nil {
				req.News = items
			}
		}()
	}

	wg.Wait()
}

func (a *app) recordFetch(api, target string, start time.Time, err error) {
	a.metrics.IncrementExternalCall(api, err != nil)
	a.logger.ExternalCall(api, target, 0, time.Since(start), err)
}

func (a *app) handleMomentum(c *gin.Context) {
	var req types.MomentumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidationError("invalid request body", err))
		return
	}
	if !validTrend(req.Trend) {
		apperrors.Respond(c, apperrors.NewValidationError("unknown trend", nil))
		return
	}

	momentum := a.engine.ComputeMomentumIndex(req.Growth, req.Team, req.Trend)
	c.JSON(http.StatusOK, gin.H{"momentum": momentum})
}

func (a *app) handleHistory(c *gin.Context) {
	entity := c.Param("id")
	limit := 30
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	snapshots, err := a.repo.History(entity, limit)
	if err != nil {
		apperrors.Respond(c, apperrors.NewStorageError("failed to retrieve history", err))
		return
	}
	if snapshots == nil {
		snapshots = []database.Snapshot{}
	}

	c.JSON(http.StatusOK, gin.H{
		"entity":    entity,
		"snapshots": snapshots,
	})
}

func (a *app) handleLatest(c *gin.Context) {
	entity := c.Param("id")
	snapshot, err := a.repo.Latest(entity)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshots for entity"})
		return
	}
	if err != nil {
		apperrors.Respond(c, apperrors.NewStorageError("failed to retrieve snapshot", err))
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func validCategory(cat types.Category) bool {
	switch cat {
	case types.CategoryDeFi, types.CategoryDeFiInfra, types.CategoryOther, "":
		return true
	}
	return false
}

func validTrend(trend types.Trend) bool {
	switch trend {
	case types.TrendUp, types.TrendStable, types.TrendDown, "":
		return true
	}
	return false
}

// splitRepo parses "owner/repo".
func splitRepo(input string) (owner, repo string, ok bool) {
	parts := strings.Split(strings.TrimSpace(input), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// parseNewsFeeds parses a comma-separated list of feed URLs, optionally
// "name=url" pairs.
func parseNewsFeeds(raw string) []adapters.NewsFeed {
	var feeds []adapters.NewsFeed
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, url, found := strings.Cut(part, "=")
		if !found {
			url = part
			name = "feed" + strconv.Itoa(len(feeds))
		}
		feeds = append(feeds, adapters.NewsFeed{Name: name, URL: url})
	}
	return feeds
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
