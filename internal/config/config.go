package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"
)

// Config is read from STASH_* environment variables.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8742"`
	DBPath   string `envconfig:"DB_PATH"`
	APIKey   string `envconfig:"API_KEY"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogDev   bool   `envconfig:"LOG_DEV" default:"false"`
	// Name suggestion endpoints
	OllamaBaseURL string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	ClaudeAPIURL  string `envconfig:"CLAUDE_API_URL" default:"https://api.anthropic.com/v1/messages"`
	ClaudeModel   string `envconfig:"CLAUDE_MODEL" default:"claude-3-haiku-20240307"`
	// Locale drives the date in default session names.
	Locale string `envconfig:"LOCALE" default:"en-US"`
	// Host browser
	Browser     string `envconfig:"BROWSER" default:"chrome"`
	DevToolsURL string `envconfig:"DEVTOOLS_URL" default:"http://localhost:9222"`
}

// Load reads the environment, fills derived defaults and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("stash", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	cfg.Browser = strings.ToLower(strings.TrimSpace(cfg.Browser))

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("STASH_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("STASH_DB_PATH must not be empty")
	}
	if c.OllamaBaseURL == "" {
		return fmt.Errorf("STASH_OLLAMA_BASE_URL must not be empty")
	}
	if c.ClaudeAPIURL == "" {
		return fmt.Errorf("STASH_CLAUDE_API_URL must not be empty")
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("STASH_LOCALE %q is not a valid language tag: %w", c.Locale, err)
	}
	switch c.Browser {
	case "chrome", "memory":
	default:
		return fmt.Errorf("STASH_BROWSER must be chrome or memory, got %q", c.Browser)
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".stash", "stash.db")
	}
	return filepath.Join(home, ".stash", "stash.db")
}
