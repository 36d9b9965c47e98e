package matching

import (
	"context"
	"errors"
	"testing"
)

func TestNewUnknownStrategy(t *testing.T) {
	_, err := New(context.Background(), Config{Strategy: "bedrock"})
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigurationError, got %T", err)
	}
	if cfgErr.Strategy != "bedrock" {
		t.Fatalf("unexpected strategy in error: %q", cfgErr.Strategy)
	}
}

func TestNewOllamaStrategyKeyIsCaseInsensitive(t *testing.T) {
	strategy, err := New(context.Background(), Config{Strategy: " OLLAMA "})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := strategy.(*Ollama); !ok {
		t.Fatalf("expected *Ollama, got %T", strategy)
	}
}

func TestNewGeminiRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{Strategy: "gemini"})
	if err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestRankConfigDefaults(t *testing.T) {
	cfg := RankConfig{}.withDefaults(3, 0.5)
	if cfg.TopK != 3 || cfg.Threshold != 0.5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	cfg = RankConfig{TopK: 7, Threshold: 0.25}.withDefaults(3, 0.5)
	if cfg.TopK != 7 || cfg.Threshold != 0.25 {
		t.Fatalf("overrides ignored: %+v", cfg)
	}
}
