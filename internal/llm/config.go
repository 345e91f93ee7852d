package llm

import (
	"os"
	"strings"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	defaultOpenAIModel   = "gpt-4o-mini"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultGeminiModel   = "gemini-2.0-flash"
)

// Config holds the provider selection and per-provider credentials, resolved
// once at process start and passed into New. No package-level state.
type Config struct {
	// Provider is "openai" or "gemini". Empty means infer from which API key
	// is present (OpenAI wins when both are set).
	Provider string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	GeminiKey     string
	GeminiModel   string
	// GeminiBaseURL overrides the SDK's default endpoint; empty keeps it.
	GeminiBaseURL string
}

// LoadConfig reads the provider configuration from the environment and fills
// in documented defaults. It does not validate credentials; New does.
func LoadConfig() Config {
	cfg := Config{
		Provider:      strings.ToLower(strings.TrimSpace(os.Getenv("AI_PROVIDER"))),
		OpenAIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:   firstNonEmpty(os.Getenv("OPENAI_MODEL"), defaultOpenAIModel),
		OpenAIBaseURL: firstNonEmpty(os.Getenv("OPENAI_BASE_URL"), defaultOpenAIBaseURL),
		GeminiKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:   firstNonEmpty(os.Getenv("GEMINI_MODEL"), defaultGeminiModel),
		GeminiBaseURL: strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
	}
	if cfg.Provider == "" {
		switch {
		case cfg.OpenAIKey != "":
			cfg.Provider = ProviderOpenAI
		case cfg.GeminiKey != "":
			cfg.Provider = ProviderGemini
		}
	}
	return cfg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
