package profile

import (
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/nasunstar/Agent-App-sub000/server/timezone"
)

// Profile is the configuration to start the assistant server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where the assistant stores its own data
	DSN string
	// Driver is the database driver (sqlite)
	Driver string
	// Version is the current version of server
	Version string

	// Timezone is the IANA zone all message timestamps are anchored to.
	// The deployment default is Asia/Seoul.
	Timezone string

	// ReviewThreshold is the confidence below which a model-extracted event
	// is flagged for manual review instead of being auto-accepted.
	ReviewThreshold float64

	// AI Configuration
	AIEnabled         bool   // ASSISTANT_AI_ENABLED
	AILLMProvider     string // ASSISTANT_AI_LLM_PROVIDER (default: openai)
	AIOpenAIAPIKey    string // ASSISTANT_AI_OPENAI_API_KEY
	AIOpenAIBaseURL   string // ASSISTANT_AI_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AIDeepSeekAPIKey  string // ASSISTANT_AI_DEEPSEEK_API_KEY
	AIDeepSeekBaseURL string // ASSISTANT_AI_DEEPSEEK_BASE_URL (default: https://api.deepseek.com)
	AILLMModel        string // ASSISTANT_AI_LLM_MODEL (default: gpt-4o-mini)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and at least one API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && (p.AIOpenAIAPIKey != "" || p.AIDeepSeekAPIKey != "")
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from ASSISTANT_* environment variables.
func (p *Profile) FromEnv() {
	p.Timezone = getEnvOrDefault("ASSISTANT_TIMEZONE", timezone.TimezoneAsiaSeoul)

	if raw := os.Getenv("ASSISTANT_REVIEW_THRESHOLD"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			p.ReviewThreshold = v
		}
	}
	if p.ReviewThreshold == 0 {
		p.ReviewThreshold = DefaultReviewThreshold
	}

	p.AIEnabled = os.Getenv("ASSISTANT_AI_ENABLED") == "true"
	p.AILLMProvider = getEnvOrDefault("ASSISTANT_AI_LLM_PROVIDER", "openai")
	p.AIOpenAIAPIKey = os.Getenv("ASSISTANT_AI_OPENAI_API_KEY")
	p.AIOpenAIBaseURL = getEnvOrDefault("ASSISTANT_AI_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.AIDeepSeekAPIKey = os.Getenv("ASSISTANT_AI_DEEPSEEK_API_KEY")
	p.AIDeepSeekBaseURL = getEnvOrDefault("ASSISTANT_AI_DEEPSEEK_BASE_URL", "https://api.deepseek.com")
	p.AILLMModel = getEnvOrDefault("ASSISTANT_AI_LLM_MODEL", "gpt-4o-mini")
}

// DefaultReviewThreshold is the default confidence gate for auto-accepting
// model extractions.
const DefaultReviewThreshold = 0.5

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if !timezone.IsValidTimezone(p.Timezone) {
		return errors.Errorf("invalid timezone %q", p.Timezone)
	}

	if p.ReviewThreshold < 0 || p.ReviewThreshold > 1 {
		return errors.Errorf("review threshold %v out of range [0,1]", p.ReviewThreshold)
	}

	if p.DSN == "" && p.Data != "" {
		p.DSN = p.Data + "/assistant_prod.db"
	}

	return nil
}
