package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/config"
	"github.com/fwojciec/recall/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func intPtr(n int) *int { return &n }

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg := config.Default()

	assert.Equal(t, config.BackendOpenAI, cfg.Backend)
	assert.Equal(t, "user_session_001", cfg.SessionID)
	assert.Equal(t, config.Store{Driver: config.DriverSQLite, DSN: "file:memory.db"}, cfg.Store)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.0, *cfg.Temperature)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 3, cfg.Replay())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Merge(t *testing.T) {
	t.Parallel()

	t.Run("set fields override", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.Merge(&config.Config{
			Model:       "deepseek-chat",
			Temperature: ptr(0.7),
			Store:       config.Store{DSN: "file:other.db"},
			Providers:   []mcp.ProviderSpec{{Name: "fs", Command: "mcp-fs"}},
			Debug:       true,
		})

		assert.Equal(t, "deepseek-chat", cfg.Model)
		assert.Equal(t, 0.7, *cfg.Temperature)
		assert.Equal(t, config.DriverSQLite, cfg.Store.Driver)
		assert.Equal(t, "file:other.db", cfg.Store.DSN)
		assert.Len(t, cfg.Providers, 1)
		assert.True(t, cfg.Debug)
	})

	t.Run("zero values preserve defaults", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.Merge(&config.Config{})
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("zero replay turns disables replay", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.Merge(&config.Config{ReplayTurns: intPtr(0)})
		assert.Equal(t, 0, cfg.Replay())
		assert.NoError(t, cfg.Validate())
	})

	t.Run("temperature is copied", func(t *testing.T) {
		t.Parallel()
		src := &config.Config{Temperature: ptr(1)}
		cfg := config.Default()
		cfg.Merge(src)
		*src.Temperature = 2
		assert.Equal(t, 1.0, *cfg.Temperature)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("yaml file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "recall.yaml")
		content := `
backend: gemini
model: gemini-2.5-pro
temperature: 0.3
session_id: alice
system_prompt: You are terse.
store:
  driver: json
  dsn: ./sessions
providers:
  - name: files
    command: npx
    args: ["-y", "@modelcontextprotocol/server-filesystem", "."]
    env:
      DEBUG: "1"
provider_timeout: 30s
replay_turns: 5
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := config.Load(path, false)
		require.NoError(t, err)
		assert.Equal(t, config.BackendGemini, cfg.Backend)
		assert.Equal(t, "gemini-2.5-pro", cfg.Model)
		assert.Equal(t, 0.3, *cfg.Temperature)
		assert.Equal(t, "alice", cfg.SessionID)
		assert.Equal(t, "You are terse.", cfg.SystemPrompt)
		assert.Equal(t, config.Store{Driver: config.DriverJSON, DSN: "./sessions"}, cfg.Store)
		require.Len(t, cfg.Providers, 1)
		assert.Equal(t, mcp.ProviderSpec{
			Name:    "files",
			Command: "npx",
			Args:    []string{"-y", "@modelcontextprotocol/server-filesystem", "."},
			Env:     map[string]string{"DEBUG": "1"},
		}, cfg.Providers[0])
		assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
		assert.Equal(t, 5, cfg.Replay())
	})

	t.Run("missing optional file yields defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
		require.NoError(t, err)
		assert.Equal(t, config.Default(), *cfg)
	})

	t.Run("missing required file", func(t *testing.T) {
		t.Parallel()
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
		assert.ErrorIs(t, err, recall.ErrConfiguration)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("providers: {not: [a list"), 0o644))
		_, err := config.Load(path, true)
		assert.ErrorIs(t, err, recall.ErrConfiguration)
	})
}

func TestFromEnv(t *testing.T) {
	t.Parallel()

	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()
		got, err := config.FromEnv(env(map[string]string{
			"RECALL_SESSION":     "bob",
			"RECALL_MODEL":       "m",
			"RECALL_BASE_URL":    "http://localhost:8080/v1",
			"RECALL_TEMPERATURE": "0.5",
			"RECALL_DEBUG":       "true",
		}))
		require.NoError(t, err)
		assert.Equal(t, "bob", got.SessionID)
		assert.Equal(t, "m", got.Model)
		assert.Equal(t, "http://localhost:8080/v1", got.BaseURL)
		assert.Equal(t, 0.5, *got.Temperature)
		assert.True(t, got.Debug)
	})

	t.Run("empty environment changes nothing", func(t *testing.T) {
		t.Parallel()
		got, err := config.FromEnv(env(nil))
		require.NoError(t, err)
		cfg := config.Default()
		cfg.Merge(got)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("bad temperature", func(t *testing.T) {
		t.Parallel()
		_, err := config.FromEnv(env(map[string]string{"RECALL_TEMPERATURE": "warm"}))
		assert.ErrorIs(t, err, recall.ErrConfiguration)
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RECALL_TEST_DOTENV=from-file\n"), 0o644))
	t.Setenv("RECALL_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("RECALL_TEST_DOTENV"))

	require.NoError(t, config.LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("RECALL_TEST_DOTENV"))
}

func TestConfig_APIKeyVar(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	assert.Equal(t, "OPENAI_API_KEY", cfg.APIKeyVar())
	cfg.Backend = config.BackendGemini
	assert.Equal(t, "GEMINI_API_KEY", cfg.APIKeyVar())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown backend", func(c *config.Config) { c.Backend = "llama" }},
		{"unknown driver", func(c *config.Config) { c.Store.Driver = "postgres" }},
		{"empty dsn", func(c *config.Config) { c.Store.DSN = "" }},
		{"empty session", func(c *config.Config) { c.SessionID = "" }},
		{"temperature too high", func(c *config.Config) { c.Temperature = ptr(2.5) }},
		{"negative replay", func(c *config.Config) { c.ReplayTurns = intPtr(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), recall.ErrConfiguration)
		})
	}
}
