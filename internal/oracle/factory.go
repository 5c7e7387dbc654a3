package oracle

import (
	"context"
	"fmt"
	"os"

	"dreamgate/internal/config"
)

// NewClient resolves a backend identity name to a client. An empty name
// falls back to the config's backend, then to ollama. Gemini reads its
// API key from GEMINI_API_KEY.
func NewClient(ctx context.Context, name string, model config.ModelConfig) (Client, error) {
	if name == "" {
		name = model.Backend
	}
	// The configured model name only applies to the configured backend;
	// an override identity gets that backend's default model.
	configured := ""
	if name == model.Backend {
		configured = model.Name
	}
	switch name {
	case "", "ollama":
		return NewOllamaCLIClient(configured), nil
	case "gemini":
		return NewGeminiClient(ctx, os.Getenv("GEMINI_API_KEY"), configured)
	default:
		return nil, fmt.Errorf("unknown backend %q (supported: ollama, gemini)", name)
	}
}
