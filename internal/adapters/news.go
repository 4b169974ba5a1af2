package adapters

import (
	"context"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	apperrors "github.com/tractionmeter/tractionmeter/internal/errors"
	"github.com/tractionmeter/tractionmeter/internal/types"
)

// NewsFeed is a named RSS/Atom feed URL.
type NewsFeed struct {
	Name string
	URL  string
}

// NewsAdapter collects press items from RSS/Atom feeds.
type NewsAdapter struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []NewsFeed
}

func NewNewsAdapter(feeds []NewsFeed) *NewsAdapter {
	return &NewsAdapter{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
	}
}

// FetchNews pulls every configured feed and flattens the entries. A feed
// that fails to fetch or parse is skipped; the last error is returned only
// when no feed produced anything.
func (n *NewsAdapter) FetchNews(ctx context.Context) ([]types.NewsItem, error) {
	var items []types.NewsItem
	var lastErr error

	for _, feed := range n.feeds {
		feedItems, err := n.fetchFeed(ctx, feed)
		if err != nil {
			lastErr = err
			continue
		}
		items = append(items, feedItems...)
	}

	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return items, nil
}

func (n *NewsAdapter) fetchFeed(ctx context.Context, feed NewsFeed) ([]types.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, apperrors.NewExternalAPIError("create feed request: "+feed.Name, err)
	}
	req.Header.Set("User-Agent", "tractionmeter/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalAPIError("fetch feed: "+feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalAPIError("feed "+feed.Name+" returned non-200 status", nil)
	}

	parsed, err := n.parser.Parse(resp.Body)
	if err != nil {
		return nil, apperrors.NewExternalAPIError("parse feed: "+feed.Name, err)
	}

	items := make([]types.NewsItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		date := entry.Published
		if entry.PublishedParsed != nil {
			date = entry.PublishedParsed.UTC().Format(time.RFC3339)
		}
		items = append(items, types.NewsItem{
			Title: entry.Title,
			Body:  entry.Description,
			Date:  date,
		})
	}
	return items, nil
}
