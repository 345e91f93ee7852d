package llm

import "context"

// temperature biases both providers toward repeatable structured output.
const temperature float32 = 0.2

// Client sends one system+user prompt pair to the configured provider and
// returns the raw generated text. No retries happen at this layer; callers
// fall back to deterministic output instead.
type Client interface {
	Send(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// New selects a provider client from cfg. Selection is static per process:
// the returned client never renegotiates its protocol.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, &ConfigError{Reason: "OPENAI_API_KEY is empty"}
		}
		return newOpenAIClient(cfg), nil
	case ProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, &ConfigError{Reason: "GEMINI_API_KEY is empty"}
		}
		return newGeminiClient(ctx, cfg)
	case "":
		return nil, &ConfigError{Reason: "no API key present for any supported provider"}
	default:
		return nil, &ConfigError{Reason: "unknown provider " + cfg.Provider}
	}
}
