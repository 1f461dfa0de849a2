package utils

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// EnvOverrides holds settings taken from the environment. Non-empty values
// win over the config file for the current run only.
type EnvOverrides struct {
	APIKey         string `env:"CHAT_ANALYZER_API_KEY"`
	DeepSeekAPIKey string `env:"DEEPSEEK_API_KEY"`
	Model          string `env:"CHAT_ANALYZER_MODEL"`
	Provider       string `env:"CHAT_ANALYZER_PROVIDER"`
	BaseURL        string `env:"CHAT_ANALYZER_BASE_URL"`
	DataDir        string `env:"CHAT_ANALYZER_DATA_DIR"`
}

// LoadEnvOverrides loads dotenvPath when it exists and parses the environment.
// Variables already set in the process take precedence over the file.
func LoadEnvOverrides(dotenvPath string) (EnvOverrides, error) {
	if dotenvPath != "" && FileExists(dotenvPath) {
		if err := godotenv.Load(dotenvPath); err != nil {
			return EnvOverrides{}, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}

	var o EnvOverrides
	if err := env.Parse(&o); err != nil {
		return EnvOverrides{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return o, nil
}

// Effective returns a copy of config with the overrides applied and the
// names of the fields they changed. config keeps the file values and is the
// one to save.
func (o EnvOverrides) Effective(config *Config) (*Config, []string) {
	effective := *config
	applied := o.Apply(&effective)
	return &effective, applied
}

// HasAPIKey reports whether the environment supplies an API key
func (o EnvOverrides) HasAPIKey() bool {
	return o.APIKey != "" || o.DeepSeekAPIKey != ""
}

// Apply copies the non-empty overrides into config and returns the names of
// the fields it changed
func (o EnvOverrides) Apply(config *Config) []string {
	var applied []string

	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = o.DeepSeekAPIKey
	}
	if apiKey != "" {
		config.APIKey = apiKey
		applied = append(applied, "api_key")
	}
	if o.Provider != "" {
		config.Provider = o.Provider
		applied = append(applied, "provider")
	}
	if o.Model != "" {
		config.Model = o.Model
		applied = append(applied, "model")
	}
	if o.BaseURL != "" {
		config.BaseURL = o.BaseURL
		applied = append(applied, "base_url")
	}

	if len(applied) > 0 {
		config.Normalize()
	}
	return applied
}
