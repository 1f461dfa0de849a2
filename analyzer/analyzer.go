package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chat-analyzer/history"
	"chat-analyzer/llm"
	"chat-analyzer/utils"
)

// Analyzer turns transcripts into summaries through an LLM provider
type Analyzer struct {
	provider   llm.Provider
	anonymizer *utils.Anonymizer
	logger     *utils.Logger
}

// New creates an analyzer. anonymizer may be nil.
func New(provider llm.Provider, anonymizer *utils.Anonymizer, logger *utils.Logger) *Analyzer {
	return &Analyzer{
		provider:   provider,
		anonymizer: anonymizer,
		logger:     logger,
	}
}

// FromConfig builds an analyzer for the configured provider and model.
// It fails with utils.ErrMissingAPIKey when a hosted provider has no key.
func FromConfig(cfg *utils.Config, logger *utils.Logger) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(ProviderConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	if err := provider.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("invalid %s configuration: %w", provider.Name(), err)
	}

	return New(provider, utils.NewAnonymizer(cfg.Anonymize), logger), nil
}

// ProviderConfig maps the application config onto a provider config
func ProviderConfig(cfg *utils.Config) llm.Config {
	return llm.Config{
		Provider:    cfg.Provider,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
}

// Provider returns the underlying provider
func (a *Analyzer) Provider() llm.Provider {
	return a.provider
}

// Analyze summarizes a transcript. An empty systemPrompt selects
// DefaultSystemPrompt.
func (a *Analyzer) Analyze(ctx context.Context, transcript, systemPrompt string) Result {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: AnalyzeUserMessage(transcript)},
	}
	return a.run(ctx, history.KindAnalysis, messages)
}

// Improve revises a previous summary according to user feedback
func (a *Analyzer) Improve(ctx context.Context, previous, feedback string) Result {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: ImproveSystemPrompt},
		{Role: llm.RoleUser, Content: ImproveUserMessage(previous, feedback)},
	}
	return a.run(ctx, history.KindImprovement, messages)
}

func (a *Analyzer) run(ctx context.Context, kind history.Kind, messages []llm.Message) Result {
	if a.provider == nil {
		return Result{Kind: kind, Err: errors.New("no provider configured")}
	}

	masking := a.anonymizer != nil && a.anonymizer.IsEnabled()
	if masking {
		a.anonymizer.Clear()
		for i := range messages {
			if messages[i].Role == llm.RoleUser {
				messages[i].Content = a.anonymizer.Anonymize(messages[i].Content)
			}
		}
		a.logger.Debug("Masked %d sensitive values before sending", a.anonymizer.GetMappingCount())
	}

	start := time.Now()
	content, err := a.provider.Chat(ctx, messages)
	if err != nil {
		a.logger.Error("%s request to %s failed after %v: %v", kind, a.provider.Name(), time.Since(start), err)
		return Result{Kind: kind, Err: err}
	}
	a.logger.Info("%s request to %s finished in %v (%d chars)", kind, a.provider.Name(), time.Since(start), len(content))

	if masking {
		content = a.anonymizer.Deanonymize(content)
	}
	return Result{Kind: kind, Content: content}
}
