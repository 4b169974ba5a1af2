package scoring

import (
	"context"
	"time"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

// PartnershipClassifier produces one analysis per news item. Implementations
// may perform network I/O; the engine itself never does.
type PartnershipClassifier interface {
	AnalyzePartnerships(ctx context.Context, items []types.NewsItem) ([]types.PartnershipAnalysis, error)
}

// Engine computes composite growth scores. All scoring methods are pure
// functions of their inputs and the configured clock, so a single Engine may
// be shared across goroutines scoring many entities concurrently.
type Engine struct {
	cfg        Config
	now        func() time.Time
	classifier PartnershipClassifier
}

// NewEngine creates an engine with the given tuning configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, now: time.Now}
}

// SetClock overrides the time source. Used by tests to pin freshness decay.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// SetClassifier attaches an external partnership classifier. When none is
// attached (or it fails) the deterministic keyword fallback applies.
func (e *Engine) SetClassifier(c PartnershipClassifier) {
	e.classifier = c
}

// Config returns the engine's tuning configuration.
func (e *Engine) Config() Config {
	return e.cfg
}
