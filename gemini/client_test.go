package gemini_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingKey(t *testing.T) {
	t.Parallel()
	_, err := gemini.New(context.Background(), "")
	assert.ErrorIs(t, err, recall.ErrConfiguration)
}

func TestConvertMessages_UserMessage(t *testing.T) {
	t.Parallel()
	got := gemini.ConvertMessages([]recall.Message{recall.NewUserMessage("Hello")})
	require.Len(t, got, 1)
	assert.Equal(t, "user", got[0].Role)
	require.Len(t, got[0].Parts, 1)
	assert.Equal(t, "Hello", got[0].Parts[0].Text)
}

func TestConvertMessages_AssistantMessage(t *testing.T) {
	t.Parallel()
	got := gemini.ConvertMessages([]recall.Message{recall.NewAssistantMessage("Let me help.")})
	require.Len(t, got, 1)
	assert.Equal(t, "model", got[0].Role)
	require.Len(t, got[0].Parts, 1)
	assert.Equal(t, "Let me help.", got[0].Parts[0].Text)
}

func TestConvertMessages_ThinkingWithSignature(t *testing.T) {
	t.Parallel()
	msgs := []recall.Message{
		recall.AssistantMessage{Content: []recall.ContentBlock{
			recall.ThinkingBlock{Thinking: "reasoning", Signature: []byte("thought-sig-data")},
			recall.TextBlock{Text: "Answer"},
		}},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 1)
	require.Len(t, got[0].Parts, 2)
	assert.Equal(t, "reasoning", got[0].Parts[0].Text)
	assert.True(t, got[0].Parts[0].Thought)
	assert.Equal(t, []byte("thought-sig-data"), got[0].Parts[0].ThoughtSignature)
	assert.Equal(t, "Answer", got[0].Parts[1].Text)
	assert.Nil(t, got[0].Parts[1].ThoughtSignature)
}

func TestConvertMessages_ToolCallAndResult(t *testing.T) {
	t.Parallel()
	msgs := []recall.Message{
		recall.AssistantMessage{Content: []recall.ContentBlock{
			recall.ToolCallBlock{
				ID:        "call_123",
				Name:      "magic_calculator",
				Arguments: json.RawMessage(`{"a":2,"b":3}`),
				Signature: []byte("call-sig"),
			},
		}},
		recall.ToolResultMessage{
			ToolCallID: "call_123",
			ToolName:   "magic_calculator",
			Content:    []recall.ContentBlock{recall.TextBlock{Text: "10"}},
		},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 2)

	assert.Equal(t, "model", got[0].Role)
	require.Len(t, got[0].Parts, 1)
	call := got[0].Parts[0]
	require.NotNil(t, call.FunctionCall)
	assert.Equal(t, "call_123", call.FunctionCall.ID)
	assert.Equal(t, "magic_calculator", call.FunctionCall.Name)
	assert.Equal(t, float64(2), call.FunctionCall.Args["a"])
	assert.Equal(t, []byte("call-sig"), call.ThoughtSignature)

	assert.Equal(t, "user", got[1].Role)
	require.Len(t, got[1].Parts, 1)
	resp := got[1].Parts[0].FunctionResponse
	require.NotNil(t, resp)
	assert.Equal(t, "call_123", resp.ID)
	assert.Equal(t, "magic_calculator", resp.Name)
	assert.Equal(t, "10", resp.Response["output"])
}

func TestConvertMessages_ToolResultError(t *testing.T) {
	t.Parallel()
	msgs := []recall.Message{
		recall.ToolResultMessage{
			ToolCallID: "call_err",
			ToolName:   "get_weather",
			Content:    []recall.ContentBlock{recall.TextBlock{Text: "city is required"}},
			IsError:    true,
		},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 1)
	resp := got[0].Parts[0].FunctionResponse
	assert.Equal(t, "city is required", resp.Response["error"])
	assert.Nil(t, resp.Response["output"])
}

func TestConvertMessages_NonObjectArguments(t *testing.T) {
	t.Parallel()
	msgs := []recall.Message{
		recall.AssistantMessage{Content: []recall.ContentBlock{
			recall.ToolCallBlock{ID: "c", Name: "get_weather", Arguments: json.RawMessage(`"Paris"`)},
		}},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 1)
	assert.Equal(t, `"Paris"`, got[0].Parts[0].FunctionCall.Args["input"])
}

func TestConvertTools(t *testing.T) {
	t.Parallel()
	tools := []recall.ToolDef{
		{Name: "get_weather", Description: "Weather for a city", Parameters: json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}},"required":["city"]}`)},
		{Name: "list_files", Description: "List files", Parameters: json.RawMessage(`{"type":"object"}`)},
	}
	got := gemini.ConvertTools(tools)
	require.Len(t, got, 1)
	require.Len(t, got[0].FunctionDeclarations, 2)
	assert.Equal(t, "get_weather", got[0].FunctionDeclarations[0].Name)
	assert.Equal(t, "Weather for a city", got[0].FunctionDeclarations[0].Description)
	assert.NotNil(t, got[0].FunctionDeclarations[0].ParametersJsonSchema)
	assert.Equal(t, "list_files", got[0].FunctionDeclarations[1].Name)
}

func TestConvertTools_Empty(t *testing.T) {
	t.Parallel()
	assert.Nil(t, gemini.ConvertTools(nil))
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		cfg := gemini.BuildConfig(recall.Request{})
		assert.Equal(t, int32(65536), cfg.MaxOutputTokens)
		assert.Nil(t, cfg.SystemInstruction)
		assert.Nil(t, cfg.Temperature)
		require.NotNil(t, cfg.ThinkingConfig)
		assert.True(t, cfg.ThinkingConfig.IncludeThoughts)
	})

	t.Run("explicit", func(t *testing.T) {
		t.Parallel()
		temp := 0.0
		cfg := gemini.BuildConfig(recall.Request{
			SystemPrompt: "be brief",
			MaxTokens:    100,
			Temperature:  &temp,
		})
		assert.Equal(t, int32(100), cfg.MaxOutputTokens)
		require.NotNil(t, cfg.SystemInstruction)
		assert.Equal(t, "be brief", cfg.SystemInstruction.Parts[0].Text)
		require.NotNil(t, cfg.Temperature)
		assert.Equal(t, float32(0), *cfg.Temperature)
	})
}
