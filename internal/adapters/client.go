package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/tractionmeter/tractionmeter/internal/errors"
	"github.com/tractionmeter/tractionmeter/internal/resilience"
)

// apiClient is the shared plumbing for every metric-source adapter: a pooled
// HTTP client, a client-side rate limiter to stay polite with public APIs,
// and a circuit breaker so one broken source cannot stall batch scoring.
type apiClient struct {
	name    string
	client  *http.Client
	limiter *rate.Limiter
	breaker *resilience.CircuitBreaker
}

func newAPIClient(name string, rps rate.Limit, burst int) *apiClient {
	return &apiClient{
		name: name,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rps, burst),
		breaker: resilience.NewCircuitBreaker(resilience.DefaultConfig()),
	}
}

// getJSON performs a rate-limited, breaker-protected GET and decodes the
// JSON response into out.
func (c *apiClient) getJSON(ctx context.Context, url string, headers map[string]string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.NewTimeoutError(fmt.Sprintf("%s rate limiter wait", c.name), err)
	}

	return c.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return apperrors.NewInternalError(fmt.Sprintf("%s request build", c.name), err)
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return apperrors.NewExternalAPIError(c.name, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return apperrors.NewExternalAPIError(c.name,
				fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.NewExternalAPIError(c.name, fmt.Errorf("decode response: %w", err))
		}
		return nil
	})
}
