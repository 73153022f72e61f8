package config

// Config is the full application configuration.
type Config struct {
	Notion NotionConfig `yaml:"notion"`
	Model  ModelConfig  `yaml:"model"`
	Server ServerConfig `yaml:"server"`
	Index  IndexConfig  `yaml:"index"`
}

// NotionConfig holds document store access settings.
type NotionConfig struct {
	// Token is the integration token used for every store call.
	Token string `yaml:"token"`
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string `yaml:"base_url,omitempty"`
}

// ModelConfig selects and configures the language model backend.
type ModelConfig struct {
	// Provider is gemini or ollama.
	Provider string `yaml:"provider"`
	// Name is the model identifier, e.g. gemini-2.0-flash-exp.
	Name string `yaml:"name"`
	// GeminiKey is the Gemini API key.
	GeminiKey string `yaml:"gemini_key,omitempty"`
	// OllamaHost is the Ollama server URL.
	OllamaHost string `yaml:"ollama_host,omitempty"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	// HTTPAddr enables the streamable HTTP transport when set, e.g. ":8080".
	// Empty means stdio.
	HTTPAddr string `yaml:"http_addr,omitempty"`
	// Endpoint is the HTTP endpoint path for MCP and SSE routes.
	Endpoint string `yaml:"endpoint"`
}

// IndexConfig tunes the traversal.
type IndexConfig struct {
	// ClipBookmarks inlines the content of bookmarked web pages into the
	// corpus. Off by default.
	ClipBookmarks bool `yaml:"clip_bookmarks"`
}

// Placeholder credentials used when nothing is configured. Insecure by
// definition; requests made with them will be rejected by the upstream APIs.
const (
	PlaceholderNotionToken = "your-notion-api-key"
	PlaceholderGeminiKey   = "your-gemini-api-key"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Notion: NotionConfig{
			Token: PlaceholderNotionToken,
		},
		Model: ModelConfig{
			Provider:   "gemini",
			Name:       "gemini-2.0-flash-exp",
			GeminiKey:  PlaceholderGeminiKey,
			OllamaHost: "http://localhost:11434",
		},
		Server: ServerConfig{
			Endpoint: "/mcp",
		},
	}
}
