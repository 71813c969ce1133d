package discovery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sme-outreach/internal/extract"
	"github.com/sells-group/sme-outreach/internal/model"
	"github.com/sells-group/sme-outreach/pkg/anthropic"
)

// ErrDiscovery marks failures of the discovery exchange, whether from the
// model provider or from parsing its output.
var ErrDiscovery = eris.New("discovery: failed")

const researchSystem = `You are a market researcher identifying small businesses that operate without a website. You may use the search tool to ground your findings, or answer directly from your own knowledge. Focus on real-sounding, plausible businesses that sell through social media, marketplaces, or word of mouth.`

const synthesisSystem = `Respond with a JSON array of business objects and nothing else. No prose, no markdown fences. Each object has the fields: name, industry, product_type, description, location, founded_year, employee_count, monthly_revenue, price_range, social_media (object), followers (object of integers), contact_email, owner_name, products (array), tags (array), languages (array), no_website_reason, opportunity_score (0-100).`

const userPromptTemplate = `Find %d small businesses in %s that have no website of their own.

Useful queries to try:
- "small businesses %s instagram only"
- "%s handmade sellers facebook marketplace"
- "family businesses %s no website"
- "%s local artisans directory"

Return the businesses as a JSON array of objects.`

// Driver obtains candidate businesses for a country through a tool-augmented
// model exchange.
type Driver struct {
	ai        anthropic.Client
	runner    anthropic.ToolRunner
	model     string
	maxTokens int64
	minBatch  int
	maxBatch  int
}

// Config bounds the discovery batch and names the model to use.
type Config struct {
	Model     string
	MaxTokens int64
	MinBatch  int
	MaxBatch  int
}

func NewDriver(ai anthropic.Client, runner anthropic.ToolRunner, cfg Config) *Driver {
	if cfg.MinBatch <= 0 {
		cfg.MinBatch = 8
	}
	if cfg.MaxBatch < cfg.MinBatch {
		cfg.MaxBatch = cfg.MinBatch + 4
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	return &Driver{
		ai:        ai,
		runner:    runner,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		minBatch:  cfg.MinBatch,
		maxBatch:  cfg.MaxBatch,
	}
}

// searchTool is the single capability offered to the model. The schema takes
// one query string; the runner decides whether a real search backs it.
var searchTool = anthropic.ToolDef{
	Name:        "web_search",
	Description: "Search the web for businesses matching a query. Returns a text digest of results.",
	Properties: map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "The search query.",
		},
	},
	Required: []string{"query"},
}

// Discover runs the two-turn exchange for one country and returns the parsed
// candidate batch, clamped to the configured maximum.
func (d *Driver) Discover(ctx context.Context, countryName string) ([]model.Candidate, error) {
	req := anthropic.ToolMessageRequest{
		Model:     d.model,
		MaxTokens: d.maxTokens,
		System: []anthropic.SystemBlock{
			{Text: researchSystem},
		},
		FinalSystem: []anthropic.SystemBlock{
			{Text: synthesisSystem},
		},
		Messages: []anthropic.Message{
			{
				Role: "user",
				Content: fmt.Sprintf(userPromptTemplate,
					d.maxBatch, countryName, countryName, countryName, countryName, countryName),
			},
		},
		Tools: []anthropic.ToolDef{searchTool},
	}

	resp, err := d.ai.CreateMessageWithTools(ctx, req, d.runner)
	if err != nil {
		return nil, eris.Wrapf(ErrDiscovery, "model exchange: %v", err)
	}
	resp.Usage.LogCost(d.model, "discover")

	text := resp.Text()
	if text == "" {
		return nil, eris.Wrap(ErrDiscovery, "no text in final response")
	}

	elements, err := extract.JSONArray(text)
	if err != nil {
		return nil, eris.Wrapf(ErrDiscovery, "parse candidates: %v", err)
	}

	candidates := make([]model.Candidate, 0, len(elements))
	for _, raw := range elements {
		var c model.Candidate
		if err := json.Unmarshal(raw, &c); err != nil {
			zap.L().Warn("skipping malformed candidate", zap.Error(err))
			continue
		}
		if c.Name == "" {
			continue
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return nil, eris.Wrap(ErrDiscovery, "no usable candidates in model output")
	}
	if len(candidates) > d.maxBatch {
		candidates = candidates[:d.maxBatch]
	}
	if len(candidates) < d.minBatch {
		zap.L().Warn("discovery batch below minimum",
			zap.String("country", countryName),
			zap.Int("got", len(candidates)),
			zap.Int("min", d.minBatch),
		)
	}
	return candidates, nil
}
