// Package ai provides the language-model extraction path: a chat-completion
// client plus the prompt/response plumbing that turns a raw message into a
// structured event extraction with a self-assessed confidence.
package ai

import (
	"errors"

	"github.com/nasunstar/Agent-App-sub000/internal/profile"
)

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider    string // openai, deepseek
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 1024
	Temperature float32 // default: 0.1, extraction wants determinism
}

// NewConfigFromProfile creates an LLM config from the profile.
func NewConfigFromProfile(p *profile.Profile) *LLMConfig {
	cfg := &LLMConfig{
		Provider:    p.AILLMProvider,
		Model:       p.AILLMModel,
		MaxTokens:   1024,
		Temperature: 0.1,
	}

	switch p.AILLMProvider {
	case "deepseek":
		cfg.APIKey = p.AIDeepSeekAPIKey
		cfg.BaseURL = p.AIDeepSeekBaseURL
	default:
		cfg.APIKey = p.AIOpenAIAPIKey
		cfg.BaseURL = p.AIOpenAIBaseURL
	}

	return cfg
}

// Validate checks that the config is usable.
func (c *LLMConfig) Validate() error {
	if c.Provider == "" {
		return errors.New("llm provider is required")
	}
	if c.APIKey == "" {
		return errors.New("llm api key is required")
	}
	if c.Model == "" {
		return errors.New("llm model is required")
	}
	return nil
}
