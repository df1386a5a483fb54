package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is read once at process start. API keys and base URLs fall back to
// empty strings when unset: a missing key is not fatal until the
// collaborator that needs it is actually invoked.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Translator TranslatorConfig `yaml:"translator"`
}

type ServerConfig struct {
	Port          int    `yaml:"port"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
	WorkDir       string `yaml:"work_dir"`
}

type RecognizerConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
}

type TranslatorConfig struct {
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model"`
	APIKey          string `yaml:"api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	BatchSize       int    `yaml:"batch_size"`
}

// Load reads the optional YAML config file, then applies environment
// overrides and defaults. A missing file is not an error; a malformed one
// is.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// env-only configuration
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.Recognizer.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Recognizer.APIKey = v
		if c.Translator.APIKey == "" {
			c.Translator.APIKey = v
		}
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Translator.AnthropicAPIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Translator.GeminiAPIKey = v
	}
	if v := os.Getenv("KAKA_WORK_DIR"); v != "" {
		c.Server.WorkDir = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxUploadSize <= 0 {
		c.Server.MaxUploadSize = 512 << 20
	}
	if c.Server.WorkDir == "" {
		c.Server.WorkDir = "temp"
	}
	if c.Recognizer.Provider == "" {
		c.Recognizer.Provider = "openai"
	}
	if c.Translator.Provider == "" {
		c.Translator.Provider = "openai"
	}
	if c.Translator.BatchSize <= 0 {
		c.Translator.BatchSize = 50
	}
}

// TranslatorKey returns the API key for the configured translation
// provider.
func (c *Config) TranslatorKey() string {
	switch c.Translator.Provider {
	case "anthropic":
		return c.Translator.AnthropicAPIKey
	case "gemini":
		return c.Translator.GeminiAPIKey
	default:
		return c.Translator.APIKey
	}
}
