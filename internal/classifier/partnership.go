package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

const batchPrompt = `You are a business development analyst. Evaluate a batch of news items about a software project and decide which ones announce a genuine partnership, and how significant each partner is.

For each item, assign:
1. "is_partnership" (boolean): Does this item announce an actual partnership, integration, or alliance? Product launches, funding news, and generic press are NOT partnerships.
2. "tier" (string): Significance of the partner.
   - "tier1": Household-name company or top-tier protocol (Fortune 500, major cloud, top-10 chain)
   - "tier2": Well-known company within its industry
   - "tier3": Smaller or regional partner
   - "none": Not a partnership
3. "confidence" (integer 0-100): How confident are you in this classification?
4. "reasoning" (1 sentence): Why?

IMPORTANT: Be strict. Vague "working with" language without a named partner is "none".

Items to evaluate:
%s

Respond with a JSON array with EXACTLY one element per input item, in the same order. Each element must have: "index" (the item index), "is_partnership" (boolean), "tier" (string), "confidence" (integer), "reasoning" (string).
Example: [{"index":0,"is_partnership":true,"tier":"tier2","confidence":85,"reasoning":"Named integration with a well-known exchange"}]

Return ONLY the JSON array, no other text.`

// Classifier batch-classifies news items for partnership announcements using
// an LLM. It satisfies the scoring engine's PartnershipClassifier interface;
// any error it returns makes the engine fall back to keyword matching.
type Classifier struct {
	client   *http.Client
	provider string // "openai" or "anthropic"
	model    string
	apiKey   string
	baseURL  string
}

type llmResult struct {
	Index         int     `json:"index"`
	IsPartnership bool    `json:"is_partnership"`
	Tier          string  `json:"tier"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`
}

// New creates a classifier. An empty model selects a provider default.
func New(provider, model, apiKey, baseURL string) *Classifier {
	if model == "" {
		switch provider {
		case "anthropic":
			model = "claude-sonnet-4-20250514"
		default:
			model = "gpt-4o-mini"
		}
	}
	return &Classifier{
		client:   &http.Client{Timeout: 60 * time.Second},
		provider: provider,
		model:    model,
		apiKey:   apiKey,
		baseURL:  baseURL,
	}
}

// AnalyzePartnerships sends all items in one batch and returns one analysis
// per input item, in input order.
func (c *Classifier) AnalyzePartnerships(ctx context.Context, items []types.NewsItem) ([]types.PartnershipAnalysis, error) {
	if len(items) == 0 {
		return nil, nil
	}

	var lines []string
	for i, item := range items {
		line := fmt.Sprintf("- Index: %d | Title: %s", i, item.Title)
		if item.Body != "" {
			body := item.Body
			if len(body) > 300 {
				body = body[:300] + "..."
			}
			line += " | Body: " + body
		}
		lines = append(lines, line)
	}

	prompt := fmt.Sprintf(batchPrompt, strings.Join(lines, "\n"))

	var raw string
	var err error
	switch c.provider {
	case "anthropic":
		raw, err = c.callAnthropic(ctx, prompt)
	default:
		raw, err = c.callOpenAI(ctx, prompt)
	}
	if err != nil {
		return nil, err
	}

	results, err := parseResults(raw)
	if err != nil {
		return nil, err
	}

	// Reassemble positionally so a reordered or partial response still maps
	// each analysis to its item. Unanswered items classify as none.
	analyses := make([]types.PartnershipAnalysis, len(items))
	for i := range analyses {
		analyses[i] = types.PartnershipAnalysis{Tier: types.TierNone}
	}
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(items) {
			continue
		}
		analyses[r.Index] = types.PartnershipAnalysis{
			IsPartnership: r.IsPartnership,
			Tier:          parseTier(r.Tier),
			Confidence:    clampConfidence(r.Confidence),
			Reasoning:     r.Reasoning,
		}
	}
	return analyses, nil
}

func parseResults(raw string) ([]llmResult, error) {
	raw = strings.TrimSpace(raw)
	// Handle markdown code block wrapping.
	if strings.HasPrefix(raw, "```") {
		if idx := strings.Index(raw[3:], "\n"); idx >= 0 {
			raw = raw[3+idx+1:]
		}
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}

	var results []llmResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, fmt.Errorf("parse classifier response: %w\nraw: %s", err, truncate(raw, 500))
	}
	return results, nil
}

func parseTier(s string) types.PartnershipTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tier1":
		return types.TierOne
	case "tier2":
		return types.TierTwo
	case "tier3":
		return types.TierThree
	default:
		return types.TierNone
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

func (c *Classifier) callOpenAI(ctx context.Context, prompt string) (string, error) {
	baseURL := c.baseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.1,
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create openai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("openai status %d: %v", resp.StatusCode, errResp)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return result.Choices[0].Message.Content, nil
}

func (c *Classifier) callAnthropic(ctx context.Context, prompt string) (string, error) {
	baseURL := c.baseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	payload := map[string]any{
		"model":      c.model,
		"max_tokens": 4096,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create anthropic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call anthropic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("anthropic status %d: %v", resp.StatusCode, errResp)
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("anthropic: no content returned")
	}
	return result.Content[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
