package anthropic

import (
	"context"
	"encoding/json"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Client defines the Anthropic API operations used by the pipeline.
type Client interface {
	// CreateMessage issues a single-turn completion.
	CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error)
	// CreateMessageWithTools drives a tool-augmented exchange: a first call
	// that may request tool invocations, then (only if the first response is
	// incomplete) a synthesis call carrying the tool results. The two calls
	// are strictly ordered; there is never a third.
	CreateMessageWithTools(ctx context.Context, req ToolMessageRequest, runner ToolRunner) (*MessageResponse, error)
}

// ToolRunner supplies results for tool invocations the model requests.
// Implementations may execute the capability for real or return a synthetic
// acknowledgment when the capability cannot actually be invoked.
type ToolRunner interface {
	Run(ctx context.Context, name string, input json.RawMessage) (string, error)
}

// MessageRequest is our own request type for CreateMessage.
type MessageRequest struct {
	Model       string
	MaxTokens   int64
	System      []SystemBlock
	Messages    []Message
	Temperature *float64
}

// ToolMessageRequest is the request type for CreateMessageWithTools.
// FinalSystem replaces System on the synthesis turn so the second call can
// demand a bare structured answer.
type ToolMessageRequest struct {
	Model       string
	MaxTokens   int64
	System      []SystemBlock
	FinalSystem []SystemBlock
	Messages    []Message
	Tools       []ToolDef
	Temperature *float64
}

// ToolDef describes one tool offered to the model.
type ToolDef struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
}

// SystemBlock represents a system prompt block, optionally with cache control.
type SystemBlock struct {
	Text         string
	CacheControl *CacheControl
}

// CacheControl configures caching for a content block.
type CacheControl struct {
	TTL string // "5m" or "1h"
}

// Message represents a single conversational message.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// MessageResponse is our own response type from CreateMessage.
type MessageResponse struct {
	ID           string
	Model        string
	Content      []ContentBlock
	StopReason   string
	Usage        TokenUsage
	StopSequence string
}

// ContentBlock represents a block of content in a response. Tool invocation
// blocks carry ToolID/ToolName/ToolInput; plain text blocks carry Text.
type ContentBlock struct {
	Type      string
	Text      string
	ToolID    string
	ToolName  string
	ToolInput json.RawMessage
}

// Text concatenates all plain-text blocks of a response.
func (r *MessageResponse) Text() string {
	if r == nil {
		return ""
	}
	var out string
	for _, b := range r.Content {
		if b.Type == "text" && b.Text != "" {
			if out != "" {
				out += "\n"
			}
			out += b.Text
		}
	}
	return out
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

// modelPricing holds per-million-token pricing for known models.
var modelPricing = map[string][2]float64{
	// model → {input $/MTok, output $/MTok}
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
	"claude-opus-4-6":            {15.00, 75.00},
}

// EstimateCost computes an estimated cost in USD from a TokenUsage and model ID.
// Returns 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	inCost := (float64(u.InputTokens) / 1e6) * pricing[0]
	outCost := (float64(u.OutputTokens) / 1e6) * pricing[1]
	cacheWriteCost := (float64(u.CacheCreationInputTokens) / 1e6) * pricing[0] * 1.25
	cacheReadCost := (float64(u.CacheReadInputTokens) / 1e6) * pricing[0] * 0.1
	return inCost + outCost + cacheWriteCost + cacheReadCost
}

// LogCost logs token usage and estimated cost with structured zap fields.
func (u TokenUsage) LogCost(model, stage string) {
	cost := u.EstimateCost(model)
	zap.L().Info("cost attribution",
		zap.String("model", model),
		zap.String("stage", stage),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Int64("cache_write_tokens", u.CacheCreationInputTokens),
		zap.Int64("cache_read_tokens", u.CacheReadInputTokens),
		zap.Float64("estimated_cost_usd", cost),
	)
}

// Add accumulates usage from another call.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
}

// NewClient creates a new Anthropic client backed by the SDK.
func NewClient(apiKey string) Client {
	return &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
		),
	}
}

func (c *sdkClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  toSDKMessages(req.Messages),
	}

	if len(req.System) > 0 {
		params.System = toSDKSystemBlocks(req.System)
	}

	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: create message")
	}

	return fromSDKMessage(msg), nil
}

func (c *sdkClient) CreateMessageWithTools(ctx context.Context, req ToolMessageRequest, runner ToolRunner) (*MessageResponse, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  toSDKMessages(req.Messages),
		Tools:     toSDKTools(req.Tools),
	}
	if len(req.System) > 0 {
		params.System = toSDKSystemBlocks(req.System)
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	first, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: tool message")
	}

	var toolUses []sdk.ContentBlockUnion
	hasText := false
	for _, b := range first.Content {
		switch b.Type {
		case "tool_use":
			toolUses = append(toolUses, b)
		case "text":
			if b.Text != "" {
				hasText = true
			}
		}
	}

	// Complete in one turn: no tool invocation and a usable text block.
	if len(toolUses) == 0 && hasText {
		return fromSDKMessage(first), nil
	}

	// Incomplete exchange: replay the conversation with tool results (or a
	// plain nudge when the model produced nothing at all) and demand the
	// final answer.
	followup := params
	followup.Messages = append(toSDKMessages(req.Messages), first.ToParam())

	if len(toolUses) > 0 {
		results := make([]sdk.ContentBlockParamUnion, 0, len(toolUses))
		for _, tu := range toolUses {
			out, runErr := runner.Run(ctx, tu.Name, tu.Input)
			if runErr != nil {
				return nil, eris.Wrapf(runErr, "anthropic: tool %s", tu.Name)
			}
			results = append(results, sdk.NewToolResultBlock(tu.ID, out, false))
		}
		followup.Messages = append(followup.Messages, sdk.NewUserMessage(results...))
	} else {
		followup.Messages = append(followup.Messages,
			sdk.NewUserMessage(sdk.NewTextBlock("Provide your final answer now.")))
	}

	if len(req.FinalSystem) > 0 {
		followup.System = toSDKSystemBlocks(req.FinalSystem)
	}
	// The conversation now contains tool blocks, so tool definitions must
	// stay; tool_choice "none" forces a final text answer.
	followup.ToolChoice = sdk.ToolChoiceUnionParam{OfNone: &sdk.ToolChoiceNoneParam{}}

	second, err := c.client.Messages.New(ctx, followup)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: tool synthesis")
	}

	resp := fromSDKMessage(second)
	resp.Usage.Add(fromSDKMessage(first).Usage)
	return resp, nil
}

// --- SDK type conversion helpers ---

func toSDKMessages(msgs []Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, len(msgs))
	for i, m := range msgs {
		block := sdk.NewTextBlock(m.Content)
		switch m.Role {
		case "assistant":
			out[i] = sdk.NewAssistantMessage(block)
		default:
			out[i] = sdk.NewUserMessage(block)
		}
	}
	return out
}

func toSDKSystemBlocks(blocks []SystemBlock) []sdk.TextBlockParam {
	out := make([]sdk.TextBlockParam, len(blocks))
	for i, b := range blocks {
		out[i] = sdk.TextBlockParam{
			Text: b.Text,
		}
		if b.CacheControl != nil {
			cc := sdk.NewCacheControlEphemeralParam()
			if b.CacheControl.TTL != "" {
				cc.TTL = sdk.CacheControlEphemeralTTL(b.CacheControl.TTL)
			}
			out[i].CacheControl = cc
		}
	}
	return out
}

func toSDKTools(tools []ToolDef) []sdk.ToolUnionParam {
	out := make([]sdk.ToolUnionParam, len(tools))
	for i, t := range tools {
		tool := &sdk.ToolParam{
			Name: t.Name,
			InputSchema: sdk.ToolInputSchemaParam{
				Properties: t.Properties,
				Required:   t.Required,
			},
		}
		if t.Description != "" {
			tool.Description = sdk.String(t.Description)
		}
		out[i] = sdk.ToolUnionParam{OfTool: tool}
	}
	return out
}

func fromSDKMessage(msg *sdk.Message) *MessageResponse {
	blocks := make([]ContentBlock, 0, len(msg.Content))
	for _, b := range msg.Content {
		blocks = append(blocks, ContentBlock{
			Type:      b.Type,
			Text:      b.Text,
			ToolID:    b.ID,
			ToolName:  b.Name,
			ToolInput: b.Input,
		})
	}

	return &MessageResponse{
		ID:           msg.ID,
		Model:        string(msg.Model),
		Content:      blocks,
		StopReason:   string(msg.StopReason),
		StopSequence: msg.StopSequence,
		Usage: TokenUsage{
			InputTokens:              msg.Usage.InputTokens,
			OutputTokens:             msg.Usage.OutputTokens,
			CacheCreationInputTokens: msg.Usage.CacheCreationInputTokens,
			CacheReadInputTokens:     msg.Usage.CacheReadInputTokens,
		},
	}
}
