// Package openai implements [recall.Provider] for OpenAI-compatible chat
// completion endpoints (OpenAI, Volcengine Ark, DeepSeek and friends).
//
// Responses are read as server-sent events and surfaced through the
// pull-based [recall.Stream] interface, one semantic event at a time.
package openai

import "encoding/json"

const (
	DefaultBaseURL  = "https://ark.cn-beijing.volces.com/api/v3"
	DefaultModel    = "deepseek-v3-2-251201"
	completionsPath = "/chat/completions"
	doneSentinel    = "[DONE]"
)

// apiRequest is the JSON body sent to the chat completions endpoint.
type apiRequest struct {
	Model         string            `json:"model"`
	Messages      []apiMessage      `json:"messages"`
	Tools         []apiTool         `json:"tools,omitempty"`
	Stream        bool              `json:"stream"`
	StreamOptions *apiStreamOptions `json:"stream_options,omitempty"`
	Temperature   *float64          `json:"temperature,omitempty"`
	MaxTokens     int               `json:"max_tokens,omitempty"`
}

type apiStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type apiMessage struct {
	Role       string        `json:"role"`
	Content    string        `json:"content"`
	ToolCalls  []apiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

type apiToolCall struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Function apiFunctionCall `json:"function"`
}

type apiFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type apiTool struct {
	Type     string      `json:"type"`
	Function apiFunction `json:"function"`
}

type apiFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// sseChunk is one streamed chat.completion.chunk.
type sseChunk struct {
	ID      string      `json:"id"`
	Choices []sseChoice `json:"choices"`
	Usage   *sseUsage   `json:"usage"`
	Error   *apiError   `json:"error"`
}

type sseChoice struct {
	Index        int      `json:"index"`
	Delta        sseDelta `json:"delta"`
	FinishReason *string  `json:"finish_reason"`
}

type sseDelta struct {
	Role             string             `json:"role"`
	Content          string             `json:"content"`
	ReasoningContent string             `json:"reasoning_content"`
	ToolCalls        []sseToolCallDelta `json:"tool_calls"`
}

type sseToolCallDelta struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type sseUsage struct {
	PromptTokens        int `json:"prompt_tokens"`
	CompletionTokens    int `json:"completion_tokens"`
	PromptTokensDetails *struct {
		CachedTokens int `json:"cached_tokens"`
	} `json:"prompt_tokens_details"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

type apiErrorResponse struct {
	Error apiError `json:"error"`
}
