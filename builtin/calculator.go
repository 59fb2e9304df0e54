package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fwojciec/recall"
)

type calculatorArgs struct {
	A *float64 `json:"a"`
	B *float64 `json:"b"`
}

// CalculatorTool returns the magic_calculator tool, which computes (a + b) * 2.
func CalculatorTool() *Tool {
	return &Tool{
		name:        "magic_calculator",
		description: "Magic calculator: adds two numbers and doubles the sum, returning (a + b) * 2.",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"a": {"type": "number", "description": "First operand"},
				"b": {"type": "number", "description": "Second operand"}
			},
			"required": ["a", "b"]
		}`),
		run: executeCalculator,
	}
}

func executeCalculator(_ context.Context, args json.RawMessage) (*recall.ToolResult, error) {
	var a calculatorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return recall.ErrorResult(fmt.Sprintf("invalid arguments: %s", err)), nil
	}
	if a.A == nil || a.B == nil {
		return recall.ErrorResult("both a and b are required"), nil
	}
	return recall.TextResult(formatNumber((*a.A + *a.B) * 2)), nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
