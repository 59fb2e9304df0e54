// Package config assembles runtime settings from built-in defaults, an
// optional YAML file, a .env file, and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/mcp"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverJSON   = "json"
)

// Defaults.
const (
	DefaultPath        = "recall.yaml"
	DefaultSessionID   = "user_session_001"
	DefaultDSN         = "file:memory.db"
	DefaultReplayTurns = 3
	DefaultTimeout     = 10 * time.Second
)

// Store selects the history backend. DSN is a SQLite connection string for
// the sqlite driver and a directory for the json driver.
type Store struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Config holds everything main needs to wire the application.
type Config struct {
	Backend         string             `yaml:"backend"`
	BaseURL         string             `yaml:"base_url"`
	Model           string             `yaml:"model"`
	Temperature     *float64           `yaml:"temperature"`
	MaxTokens       int                `yaml:"max_tokens"`
	MaxTurns        int                `yaml:"max_turns"`
	SessionID       string             `yaml:"session_id"`
	SystemPrompt    string             `yaml:"system_prompt"`
	Store           Store              `yaml:"store"`
	Providers       []mcp.ProviderSpec `yaml:"providers"`
	ProviderTimeout time.Duration      `yaml:"provider_timeout"`
	ReplayTurns     *int               `yaml:"replay_turns"`
	Debug           bool               `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	temp, turns := 0.0, DefaultReplayTurns
	return Config{
		Backend:         BackendOpenAI,
		Temperature:     &temp,
		SessionID:       DefaultSessionID,
		Store:           Store{Driver: DriverSQLite, DSN: DefaultDSN},
		ProviderTimeout: DefaultTimeout,
		ReplayTurns:     &turns,
	}
}

// Merge applies the set fields of source onto c. Providers are replaced as a
// whole when source lists any.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.Temperature != nil {
		t := *source.Temperature
		c.Temperature = &t
	}
	if source.MaxTokens > 0 {
		c.MaxTokens = source.MaxTokens
	}
	if source.MaxTurns > 0 {
		c.MaxTurns = source.MaxTurns
	}
	if source.SessionID != "" {
		c.SessionID = source.SessionID
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if source.Store.Driver != "" {
		c.Store.Driver = source.Store.Driver
	}
	if source.Store.DSN != "" {
		c.Store.DSN = source.Store.DSN
	}
	if len(source.Providers) > 0 {
		c.Providers = source.Providers
	}
	if source.ProviderTimeout > 0 {
		c.ProviderTimeout = source.ProviderTimeout
	}
	if source.ReplayTurns != nil {
		n := *source.ReplayTurns
		c.ReplayTurns = &n
	}
	if source.Debug {
		c.Debug = true
	}
}

// Load reads the YAML file at path and merges it over the defaults. When
// optional is set a missing file yields the defaults.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w: %w", path, recall.ErrConfiguration, err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w: %w", path, recall.ErrConfiguration, err)
	}
	cfg.Merge(&loaded)
	return &cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables already set. Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		err := godotenv.Load(p)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w: %w", p, recall.ErrConfiguration, err)
		}
	}
	return nil
}

// FromEnv returns the overrides found in the environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	c := &Config{
		Backend:      getenv("RECALL_BACKEND"),
		BaseURL:      getenv("RECALL_BASE_URL"),
		Model:        getenv("RECALL_MODEL"),
		SessionID:    getenv("RECALL_SESSION"),
		SystemPrompt: getenv("RECALL_SYSTEM_PROMPT"),
		Debug:        misc.Truthy(getenv("RECALL_DEBUG")),
	}
	if v := getenv("RECALL_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("config: RECALL_TEMPERATURE: %w: %w", recall.ErrConfiguration, err)
		}
		c.Temperature = &t
	}
	return c, nil
}

// APIKeyVar returns the environment variable holding the backend credential.
func (c *Config) APIKeyVar() string {
	if c.Backend == BackendGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOpenAI, BackendGemini:
	default:
		return fmt.Errorf("config: unknown backend %q: %w", c.Backend, recall.ErrConfiguration)
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverJSON:
	default:
		return fmt.Errorf("config: unknown store driver %q: %w", c.Store.Driver, recall.ErrConfiguration)
	}
	if c.Store.DSN == "" {
		return fmt.Errorf("config: store dsn is empty: %w", recall.ErrConfiguration)
	}
	if c.SessionID == "" {
		return fmt.Errorf("config: session id is empty: %w", recall.ErrConfiguration)
	}
	if t := c.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("config: temperature must be in [0, 2], got %g: %w", *t, recall.ErrConfiguration)
	}
	if n := c.ReplayTurns; n != nil && *n < 0 {
		return fmt.Errorf("config: replay_turns must be non-negative: %w", recall.ErrConfiguration)
	}
	return nil
}

// Replay returns how many past turns to show when a session resumes. Zero
// turns the replay off.
func (c *Config) Replay() int {
	if c.ReplayTurns == nil {
		return DefaultReplayTurns
	}
	return *c.ReplayTurns
}
