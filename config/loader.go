package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads the configuration file if present and applies environment
// variable overrides. A missing file is not an error: missing credentials
// degrade to placeholder values instead of failing startup.
func Load() (*Config, error) {
	cfg := Default()

	if path := configPath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	loadFromEnv(cfg)
	return cfg, nil
}

func configPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "notion-qa-mcp", "config.yaml")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "notion-qa-mcp", "config.yaml")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if token := os.Getenv("NOTION_TOKEN"); token != "" {
		cfg.Notion.Token = token
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Model.GeminiKey = key
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		cfg.Model.OllamaHost = host
	}
	if provider := os.Getenv("NOTIONQA_PROVIDER"); provider != "" {
		cfg.Model.Provider = provider
	}
	if model := os.Getenv("NOTIONQA_MODEL"); model != "" {
		cfg.Model.Name = model
	}
}
