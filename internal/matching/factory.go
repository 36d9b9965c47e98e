package matching

import (
	"context"
	"strings"
	"time"
)

// Strategy keys accepted by New.
const (
	StrategyOllama = "ollama"
	StrategyGemini = "gemini"
)

// Config selects and parameterizes a matching strategy.
type Config struct {
	Strategy string

	OllamaBaseURL    string
	OllamaChatModel  string
	OllamaEmbedModel string

	GeminiAPIKey     string
	GeminiModel      string
	GeminiEmbedModel string

	// CallTimeout bounds every backend call. Defaults to 120s.
	CallTimeout time.Duration

	Rank RankConfig
}

// New constructs the strategy named by cfg.Strategy. An unknown key returns a
// *ConfigurationError without touching any backend.
func New(ctx context.Context, cfg Config) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Strategy)) {
	case StrategyOllama:
		return NewOllama(cfg), nil
	case StrategyGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, &ConfigurationError{Strategy: cfg.Strategy}
	}
}

func callTimeout(cfg Config) time.Duration {
	if cfg.CallTimeout > 0 {
		return cfg.CallTimeout
	}
	return 120 * time.Second
}
