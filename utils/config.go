package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider names accepted in the config file
const (
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
)

// DefaultModel is used when the config names no model or an unknown one
const DefaultModel = "deepseek-chat"

// ErrMissingAPIKey is returned by Validate when the provider needs a key and none is set
var ErrMissingAPIKey = errors.New("API key is required")

// ModelOption is one entry of the model selector
type ModelOption struct {
	Label string
	ID    string
}

// Models lists the hosted models offered in the settings
var Models = []ModelOption{
	{Label: "DeepSeek-V3", ID: "deepseek-chat"},
	{Label: "DeepSeek-R1", ID: "deepseek-reasoner"},
}

// Config represents the application configuration
type Config struct {
	APIKey       string `json:"api_key"`
	Model        string `json:"model"`
	SystemPrompt string `json:"system_prompt"`

	Provider  string `json:"provider,omitempty"` // "deepseek" (default) or "ollama"
	BaseURL   string `json:"base_url,omitempty"`
	Anonymize bool   `json:"anonymize,omitempty"` // Mask sensitive data before sending

	// Sampling settings; zero leaves the server default
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	Theme        string `json:"theme,omitempty"`
	FontSize     int    `json:"font_size,omitempty"`
	WindowWidth  int    `json:"window_width,omitempty"`
	WindowHeight int    `json:"window_height,omitempty"`
}

// DefaultConfig returns the configuration used on a cold start
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills defaults and maps unknown hosted models to DefaultModel
func (c *Config) Normalize() {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.SystemPrompt = strings.TrimSpace(c.SystemPrompt)
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderDeepSeek
	}

	if c.Provider == ProviderDeepSeek && !IsKnownModel(c.Model) {
		c.Model = DefaultModel
	}

	if c.Temperature < 0 {
		c.Temperature = 0
	}
	if c.MaxTokens < 0 {
		c.MaxTokens = 0
	}

	if c.FontSize < 10 {
		c.FontSize = 14
	}
	if c.WindowWidth <= 0 {
		c.WindowWidth = 1200
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = 800
	}
}

// NeedsAPIKey reports whether the configured provider requires an API key
func (c *Config) NeedsAPIKey() bool {
	return c.Provider != ProviderOllama
}

// Validate checks that the configuration can be used to build an analyzer
func (c *Config) Validate() error {
	if c.NeedsAPIKey() && c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return errors.New("model is required")
	}
	return nil
}

// IsKnownModel reports whether id is one of Models
func IsKnownModel(id string) bool {
	for _, m := range Models {
		if m.ID == id {
			return true
		}
	}
	return false
}

// ModelLabel returns the display label for a model id, or the id itself
func ModelLabel(id string) string {
	for _, m := range Models {
		if m.ID == id {
			return m.Label
		}
	}
	return id
}

// ModelIDForLabel maps a display label back to its model id
func ModelIDForLabel(label string) (string, bool) {
	for _, m := range Models {
		if m.Label == label {
			return m.ID, true
		}
	}
	return "", false
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.Normalize()
	return &config, nil
}

// LoadConfigOrDefault loads configuration and falls back to the defaults when
// the file is missing or unreadable
func LoadConfigOrDefault(configPath string, logger *Logger) *Config {
	config, err := LoadConfig(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("No config at %s, starting with defaults", configPath)
		} else {
			logger.Warn("Failed to load config, starting with defaults: %v", err)
		}
		return DefaultConfig()
	}
	return config
}

// SaveConfig overwrites the configuration file with config
func SaveConfig(configPath string, config *Config) error {
	if err := WriteJSONFileAtomic(configPath, config, "    "); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// expandPath expands ~ and relative paths
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	absPath, err := filepath.Abs(path)
	if err == nil {
		return absPath
	}

	return path
}

// DataPaths locates the files the application reads and writes
type DataPaths struct {
	Dir     string
	Config  string
	History string
	Archive string
	Logs    string
}

// ResolveDataPaths returns the file locations under dataDir. An empty dataDir
// selects the user config directory, or ./data when that is unavailable.
func ResolveDataPaths(dataDir string) DataPaths {
	if dataDir == "" {
		if configDir, err := os.UserConfigDir(); err == nil {
			dataDir = filepath.Join(configDir, "chat-analyzer")
		} else {
			dataDir = filepath.Join(".", "data")
		}
	}
	dataDir = expandPath(dataDir)

	return DataPaths{
		Dir:     dataDir,
		Config:  filepath.Join(dataDir, "config.json"),
		History: filepath.Join(dataDir, "results.json"),
		Archive: filepath.Join(dataDir, "archive.db"),
		Logs:    filepath.Join(dataDir, "logs"),
	}
}
