// Package provider abstracts the language generation engines the translation
// pipeline can run on.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"polyglot/pkg/config"
	provideranthropic "polyglot/pkg/provider/anthropic"
	provideropenai "polyglot/pkg/provider/openai"
	"polyglot/pkg/provider/opencode"
)

// Client runs one-shot text generation tasks.
type Client interface {
	Health(ctx context.Context) error
	RunTask(ctx context.Context, instructions string, input string) (string, error)
}

// New resolves the configured provider client.
func New(cfg *config.Config) (Client, error) {
	providerID := cfg.Translation.Provider
	if providerID == "" {
		providerID = "openai"
	}

	slog.Default().With("component", "provider.factory").Debug("Resolving provider client", "provider", providerID)

	switch providerID {
	case "openai":
		return provideropenai.New(cfg)
	case "anthropic":
		return provideranthropic.New(cfg)
	case "opencode":
		return opencode.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerID)
	}
}
