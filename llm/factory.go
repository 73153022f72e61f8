package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/janvogt/notion-qa-mcp/config"
)

// NewFromConfig builds the backend the configuration selects.
func NewFromConfig(ctx context.Context, cfg *config.Config, httpClient *http.Client) (Client, error) {
	switch cfg.Model.Provider {
	case ProviderGemini, "":
		return NewGemini(ctx, cfg.Model.GeminiKey, cfg.Model.Name)
	case ProviderOllama:
		return NewOllama(cfg.Model.OllamaHost, cfg.Model.Name, httpClient)
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}
}
