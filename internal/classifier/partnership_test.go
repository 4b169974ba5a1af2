package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

func openAIReply(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func TestAnalyzePartnershipsBatch(t *testing.T) {
	reply := `[
		{"index":0,"is_partnership":true,"tier":"tier1","confidence":90,"reasoning":"Named tier-one partner"},
		{"index":1,"is_partnership":false,"tier":"none","confidence":95,"reasoning":"Product launch, not a partnership"}
	]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, openAIReply(reply))
	}))
	defer server.Close()

	c := New("openai", "", "test-key", server.URL)

	items := []types.NewsItem{
		{Title: "Acme partners with MegaCorp", Body: "Strategic alliance announced."},
		{Title: "Acme ships v2", Body: "The release is live."},
	}
	analyses, err := c.AnalyzePartnerships(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, analyses, 2)

	assert.True(t, analyses[0].IsPartnership)
	assert.Equal(t, types.TierOne, analyses[0].Tier)
	assert.InDelta(t, 90, analyses[0].Confidence, 1e-9)

	assert.False(t, analyses[1].IsPartnership)
	assert.Equal(t, types.TierNone, analyses[1].Tier)
}

func TestAnalyzePartnershipsHandlesCodeFence(t *testing.T) {
	reply := "```json\n[{\"index\":0,\"is_partnership\":true,\"tier\":\"tier3\",\"confidence\":60,\"reasoning\":\"small partner\"}]\n```"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, openAIReply(reply))
	}))
	defer server.Close()

	c := New("openai", "", "k", server.URL)
	analyses, err := c.AnalyzePartnerships(context.Background(), []types.NewsItem{{Title: "x"}})
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, types.TierThree, analyses[0].Tier)
}

func TestAnalyzePartnershipsPartialResponse(t *testing.T) {
	// Response covers only the second item; the first defaults to none.
	reply := `[{"index":1,"is_partnership":true,"tier":"tier2","confidence":120,"reasoning":"ok"}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, openAIReply(reply))
	}))
	defer server.Close()

	c := New("openai", "", "k", server.URL)
	analyses, err := c.AnalyzePartnerships(context.Background(), []types.NewsItem{{Title: "a"}, {Title: "b"}})
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.False(t, analyses[0].IsPartnership)
	assert.Equal(t, types.TierNone, analyses[0].Tier)
	assert.True(t, analyses[1].IsPartnership)
	assert.InDelta(t, 100, analyses[1].Confidence, 1e-9, "confidence clamps to 100")
}

func TestAnalyzePartnershipsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer server.Close()

	c := New("openai", "", "k", server.URL)
	_, err := c.AnalyzePartnerships(context.Background(), []types.NewsItem{{Title: "x"}})
	require.Error(t, err)
}

func TestAnalyzePartnershipsMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, openAIReply("I cannot evaluate these items."))
	}))
	defer server.Close()

	c := New("openai", "", "k", server.URL)
	_, err := c.AnalyzePartnerships(context.Background(), []types.NewsItem{{Title: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse classifier response")
}

func TestAnalyzePartnershipsAnthropicWireFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		fmt.Fprint(w, `{"content":[{"text":"[{\"index\":0,\"is_partnership\":true,\"tier\":\"tier2\",\"confidence\":80,\"reasoning\":\"named partner\"}]"}]}`)
	}))
	defer server.Close()

	c := New("anthropic", "", "k", server.URL)
	analyses, err := c.AnalyzePartnerships(context.Background(), []types.NewsItem{{Title: "x"}})
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, types.TierTwo, analyses[0].Tier)
}

func TestAnalyzePartnershipsEmptyInput(t *testing.T) {
	c := New("openai", "", "k", "http://unused")
	analyses, err := c.AnalyzePartnerships(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, analyses)
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in   string
		want types.PartnershipTier
	}{
		{"tier1", types.TierOne},
		{"Tier2", types.TierTwo},
		{" tier3 ", types.TierThree},
		{"none", types.TierNone},
		{"garbage", types.TierNone},
		{"", types.TierNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseTier(tt.in), "input %q", tt.in)
	}
}
