package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/recall"
)

type weatherArgs struct {
	City string `json:"city"`
}

// WeatherTool returns the get_weather tool. It answers with a fixed forecast.
func WeatherTool() *Tool {
	return &Tool{
		name:        "get_weather",
		description: "Get the current weather for a city.",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"city": {"type": "string", "description": "City name"}
			},
			"required": ["city"]
		}`),
		run: executeWeather,
	}
}

func executeWeather(_ context.Context, args json.RawMessage) (*recall.ToolResult, error) {
	var a weatherArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return recall.ErrorResult(fmt.Sprintf("invalid arguments: %s", err)), nil
	}
	city := strings.TrimSpace(a.City)
	if city == "" {
		return recall.ErrorResult("city is required"), nil
	}
	return recall.TextResult(fmt.Sprintf("The weather in %s is sunny, 25°C.", city)), nil
}
