package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	DatabaseURL  string `env:"DATABASE_URL,required"`
	GeminiAPIKey string `env:"GEMINI_API_KEY,required"`

	// Server
	Port int `env:"PORT" envDefault:"3000"`

	// Generation backends tried in priority order. Empty means the
	// built-in priority list.
	Models []string `env:"GEMINI_MODELS" envSeparator:","`

	// Title synthesis model (fast, low-token).
	TitleModel string `env:"GEMINI_TITLE_MODEL" envDefault:"gemini-1.5-flash-8b"`

	// API tokens accepted by the auth middleware, as token:userID pairs.
	// Session issuance itself is an external concern.
	APITokens []string `env:"API_TOKENS" envSeparator:","`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// TokenMap splits API_TOKENS into a token -> owner id lookup.
func (c *Config) TokenMap() map[string]string {
	m := make(map[string]string, len(c.APITokens))
	for _, pair := range c.APITokens {
		token, owner, ok := strings.Cut(pair, ":")
		if !ok || token == "" || owner == "" {
			continue
		}
		m[token] = owner
	}
	return m
}
