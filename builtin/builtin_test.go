package builtin_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/builtin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoke(t *testing.T, tool recall.Tool, args string) *recall.ToolResult {
	t.Helper()
	res, err := tool.Invoke(context.Background(), json.RawMessage(args))
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestTools(t *testing.T) {
	t.Parallel()
	var names []string
	for _, tool := range builtin.Tools() {
		names = append(names, tool.Name())
		assert.NotEmpty(t, tool.Description())
		var schema map[string]any
		require.NoError(t, json.Unmarshal(tool.Schema(), &schema), tool.Name())
		assert.Equal(t, "object", schema["type"])
	}
	assert.Equal(t, []string{"magic_calculator", "get_weather", "list_files"}, names)
}

func TestCalculatorTool(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		args    string
		want    string
		isError bool
	}{
		{"two plus three doubled", `{"a": 2, "b": 3}`, "10", false},
		{"negative", `{"a": -4, "b": 1}`, "-6", false},
		{"fractional", `{"a": 0.25, "b": 0.5}`, "1.5", false},
		{"missing operand", `{"a": 1}`, "both a and b are required", true},
		{"malformed", `{"a": "x"}`, "invalid arguments", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := invoke(t, builtin.CalculatorTool(), tt.args)
			assert.Equal(t, tt.isError, res.IsError)
			assert.Contains(t, recall.Text(res.Content), tt.want)
		})
	}
}

func TestWeatherTool(t *testing.T) {
	t.Parallel()

	t.Run("reports a fixed forecast", func(t *testing.T) {
		t.Parallel()
		res := invoke(t, builtin.WeatherTool(), `{"city": "Beijing"}`)
		assert.False(t, res.IsError)
		assert.Equal(t, "The weather in Beijing is sunny, 25°C.", recall.Text(res.Content))
	})

	t.Run("requires a city", func(t *testing.T) {
		t.Parallel()
		res := invoke(t, builtin.WeatherTool(), `{"city": "  "}`)
		assert.True(t, res.IsError)
	})
}

func TestListFilesTool(t *testing.T) {
	t.Parallel()

	t.Run("matches files recursively", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		sub := filepath.Join(dir, "sub")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(sub, "b.go"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), nil, 0o644))

		args, _ := json.Marshal(map[string]any{"pattern": "**/*.go", "path": dir})
		res := invoke(t, builtin.ListFilesTool(), string(args))
		require.False(t, res.IsError)
		text := recall.Text(res.Content)
		assert.Contains(t, text, "a.go")
		assert.Contains(t, text, filepath.Join("sub", "b.go"))
		assert.NotContains(t, text, "c.txt")
	})

	t.Run("no matches", func(t *testing.T) {
		t.Parallel()
		args, _ := json.Marshal(map[string]any{"pattern": "*.rs", "path": t.TempDir()})
		res := invoke(t, builtin.ListFilesTool(), string(args))
		assert.False(t, res.IsError)
		assert.Equal(t, "no matches found", recall.Text(res.Content))
	})

	t.Run("truncates long listings", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		for i := range 205 {
			require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%03d.txt", i)), nil, 0o644))
		}
		args, _ := json.Marshal(map[string]any{"pattern": "*.txt", "path": dir})
		res := invoke(t, builtin.ListFilesTool(), string(args))
		require.False(t, res.IsError)
		text := recall.Text(res.Content)
		assert.Contains(t, text, "truncated at 200 files")
		assert.Equal(t, 201, len(strings.Split(text, "\n")))
	})

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()
		res := invoke(t, builtin.ListFilesTool(), `{"pattern": "[", "path": "."}`)
		assert.True(t, res.IsError)
	})

	t.Run("path is a file", func(t *testing.T) {
		t.Parallel()
		f := filepath.Join(t.TempDir(), "x")
		require.NoError(t, os.WriteFile(f, nil, 0o644))
		args, _ := json.Marshal(map[string]any{"pattern": "*", "path": f})
		res := invoke(t, builtin.ListFilesTool(), string(args))
		assert.True(t, res.IsError)
		assert.Contains(t, recall.Text(res.Content), "directory")
	})
}
