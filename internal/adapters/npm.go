package adapters

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/time/rate"
)

// NPMAdapter fetches package download counts from the npm registry API.
type NPMAdapter struct {
	baseURL string
	api     *apiClient
}

// NewNPMAdapter creates an adapter for the public downloads endpoint.
func NewNPMAdapter() *NPMAdapter {
	return &NPMAdapter{
		baseURL: "https://api.npmjs.org",
		api:     newAPIClient("npm", rate.Limit(2), 5),
	}
}

type npmDownloadsResponse struct {
	Downloads int64  `json:"downloads"`
	Package   string `json:"package"`
}

// FetchDownloads30d returns the last-month download count for a package.
func (n *NPMAdapter) FetchDownloads30d(ctx context.Context, pkg string) (int64, error) {
	var resp npmDownloadsResponse
	// Scoped package names are path-escaped; the registry accepts @scope%2Fname.
	reqURL := fmt.Sprintf("%s/downloads/point/last-month/%s", n.baseURL, url.PathEscape(pkg))
	if err := n.api.getJSON(ctx, reqURL, nil, &resp); err != nil {
		return 0, fmt.Errorf("fetch downloads: %w", err)
	}
	return resp.Downloads, nil
}
