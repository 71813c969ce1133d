package discovery

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sme-outreach/pkg/websearch"
)

// NoopSearch answers tool invocations with a synthetic acknowledgment. The
// model then falls back to its own knowledge on the synthesis turn.
type NoopSearch struct{}

func (NoopSearch) Run(_ context.Context, name string, _ json.RawMessage) (string, error) {
	zap.L().Debug("acknowledging tool invocation without executing", zap.String("tool", name))
	return "Search is unavailable in this environment. Answer from your own knowledge of the market.", nil
}

// WebSearch executes the model's search queries against a real search backend.
type WebSearch struct {
	client websearch.Client
}

func NewWebSearch(client websearch.Client) *WebSearch {
	return &WebSearch{client: client}
}

func (w *WebSearch) Run(ctx context.Context, name string, input json.RawMessage) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", eris.Wrapf(err, "discovery: tool %s input", name)
	}
	if args.Query == "" {
		return "No query provided.", nil
	}

	digest, err := w.client.Search(ctx, args.Query)
	if err != nil {
		// A failed search should not sink the whole exchange; the model can
		// still synthesize from its own knowledge.
		zap.L().Warn("search tool failed", zap.String("query", args.Query), zap.Error(err))
		return "Search failed. Answer from your own knowledge of the market.", nil
	}
	return digest, nil
}
