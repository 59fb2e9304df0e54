package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/recall"
)

// Interface compliance check.
var _ recall.Provider = (*Client)(nil)

// Client implements [recall.Provider] for an OpenAI-compatible API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL, e.g. "https://api.openai.com/v1".
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithModel sets the model used when a request does not name one.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends a streaming chat completion request and returns a
// [recall.Stream] that emits semantic events.
func (c *Client) Stream(ctx context.Context, req recall.Request) (recall.Stream, error) {
	body, err := c.buildRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	return newStream(ctx, resp.Body), nil
}

func (c *Client) buildRequestBody(req recall.Request) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	apiReq := apiRequest{
		Model:         model,
		Messages:      convertMessages(req.SystemPrompt, req.Messages),
		Tools:         convertTools(req.Tools),
		Stream:        true,
		StreamOptions: &apiStreamOptions{IncludeUsage: true},
		Temperature:   req.Temperature,
		MaxTokens:     req.MaxTokens,
	}
	return json.Marshal(apiReq)
}

func convertMessages(system string, msgs []recall.Message) []apiMessage {
	var result []apiMessage
	if system != "" {
		result = append(result, apiMessage{Role: "system", Content: system})
	}
	for _, msg := range msgs {
		switch m := msg.(type) {
		case recall.UserMessage:
			result = append(result, apiMessage{Role: "user", Content: recall.Text(m.Content)})
		case recall.AssistantMessage:
			am := apiMessage{Role: "assistant", Content: recall.Text(m.Content)}
			for _, b := range m.Content {
				if tc, ok := b.(recall.ToolCallBlock); ok {
					args := string(tc.Arguments)
					if args == "" {
						args = "{}"
					}
					am.ToolCalls = append(am.ToolCalls, apiToolCall{
						ID:       tc.ID,
						Type:     "function",
						Function: apiFunctionCall{Name: tc.Name, Arguments: args},
					})
				}
			}
			result = append(result, am)
		case recall.ToolResultMessage:
			result = append(result, apiMessage{
				Role:       "tool",
				Content:    recall.Text(m.Content),
				ToolCallID: m.ToolCallID,
			})
		}
	}
	return result
}

func convertTools(tools []recall.ToolDef) []apiTool {
	if len(tools) == 0 {
		return nil
	}
	result := make([]apiTool, len(tools))
	for i, t := range tools {
		result[i] = apiTool{
			Type: "function",
			Function: apiFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return result
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openai: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("openai: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("openai: HTTP %d: %s", resp.StatusCode, apiErr.Error.Message)
}
