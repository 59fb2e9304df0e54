package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/recall"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ recall.Provider = (*Client)(nil)

// Client implements [recall.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Empty keeps the default.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: missing API key: %w", recall.ErrConfiguration)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w: %w", recall.ErrProviderConnection, err)
	}
	c := &Client{
		client: gc,
		model:  DefaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [recall.Stream] that emits semantic events.
func (c *Client) Stream(ctx context.Context, req recall.Request) (recall.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	model := req.Model
	if model == "" {
		model = c.model
	}
	seq := c.client.Models.GenerateContentStream(ctx, model, ConvertMessages(req.Messages), BuildConfig(req))
	return NewStreamFromIter(ctx, seq), nil
}

// BuildConfig translates request parameters into a generation config.
func BuildConfig(req recall.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Tools:           ConvertTools(req.Tools),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
		},
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertMessages converts recall Messages to genai Contents.
func ConvertMessages(msgs []recall.Message) []*genai.Content {
	var result []*genai.Content
	for _, msg := range msgs {
		switch m := msg.(type) {
		case recall.UserMessage:
			result = append(result, &genai.Content{
				Role:  "user",
				Parts: convertParts(m.Content),
			})
		case recall.AssistantMessage:
			result = append(result, &genai.Content{
				Role:  "model",
				Parts: convertParts(m.Content),
			})
		case recall.ToolResultMessage:
			key := "output"
			if m.IsError {
				key = "error"
			}
			result = append(result, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       m.ToolCallID,
						Name:     m.ToolName,
						Response: map[string]any{key: recall.Text(m.Content)},
					},
				}},
			})
		}
	}
	return result
}

func convertParts(blocks []recall.ContentBlock) []*genai.Part {
	var parts []*genai.Part
	for _, b := range blocks {
		switch bl := b.(type) {
		case recall.TextBlock:
			parts = append(parts, &genai.Part{Text: bl.Text})
		case recall.ThinkingBlock:
			parts = append(parts, &genai.Part{Text: bl.Thinking, Thought: true, ThoughtSignature: bl.Signature})
		case recall.ToolCallBlock:
			var args map[string]any
			if err := json.Unmarshal(bl.Arguments, &args); err != nil {
				// Arguments that were not an object are passed through verbatim.
				args = map[string]any{"input": string(bl.Arguments)}
			}
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   bl.ID,
					Name: bl.Name,
					Args: args,
				},
				ThoughtSignature: bl.Signature,
			})
		}
	}
	return parts
}

// ConvertTools converts tool definitions to genai Tools.
func ConvertTools(tools []recall.ToolDef) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		var schema map[string]any
		_ = json.Unmarshal(t.Parameters, &schema)
		decls[i] = &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: schema,
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}
