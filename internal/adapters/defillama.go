package adapters

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

// DefiLlamaAdapter fetches protocol TVL from the public DefiLlama API.
// TVL is the only on-chain figure obtainable without privileged indexer
// access; the remaining OnChainMetrics fields stay nil.
type DefiLlamaAdapter struct {
	baseURL string
	api     *apiClient
}

// NewDefiLlamaAdapter creates an adapter for the public endpoint.
func NewDefiLlamaAdapter() *DefiLlamaAdapter {
	return &DefiLlamaAdapter{
		baseURL: "https://api.llama.fi",
		api:     newAPIClient("defillama", rate.Limit(2), 5),
	}
}

// FetchOnChainMetrics returns the current TVL for a protocol slug. Unknown
// slugs surface as an error; callers substitute empty metrics so scoring
// degrades instead of failing.
func (d *DefiLlamaAdapter) FetchOnChainMetrics(ctx context.Context, slug string) (types.OnChainMetrics, error) {
	var metrics types.OnChainMetrics

	var tvl float64
	tvlURL := fmt.Sprintf("%s/tvl/%s", d.baseURL, url.PathEscape(slug))
	if err := d.api.getJSON(ctx, tvlURL, nil, &tvl); err != nil {
		return metrics, fmt.Errorf("fetch tvl: %w", err)
	}

	if tvl > 0 {
		metrics.TVLUSD = &tvl
	}
	return metrics, nil
}
