package llm

import "context"

// Message roles
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

// Provider interface defines the common interface for all LLM providers
type Provider interface {
	// Chat sends messages and returns the complete response
	Chat(ctx context.Context, messages []Message) (string, error)

	// Name returns the provider name
	Name() string

	// ValidateConfig validates the provider configuration
	ValidateConfig() error
}

// Config represents provider configuration
type Config struct {
	Provider     string // "deepseek", "openai" or "ollama"
	ProviderName string // Display name for the provider
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int     // 0 leaves the server default
	Temperature  float64 // 0 leaves the server default
}
