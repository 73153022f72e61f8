// Package llm wraps the supported model backends behind one stateless
// generate call. No sessions, no history: every request stands alone.
package llm

import "context"

// Client is a language model backend.
type Client interface {
	// Generate issues one stateless request and returns the model's text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Providers selectable via configuration.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)
