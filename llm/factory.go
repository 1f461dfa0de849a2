package llm

import (
	"fmt"
	"strings"
)

// NewProvider builds the provider named by config.Provider. An empty name
// selects DeepSeek.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "", "deepseek":
		return NewOpenAIProvider(config)
	case "openai":
		if config.ProviderName == "" {
			config.ProviderName = "OpenAI Compatible"
		}
		return NewOpenAIProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	default:
		return nil, fmt.Errorf("unknown provider: %s", config.Provider)
	}
}
