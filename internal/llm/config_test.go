package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AI_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearProviderEnv(t)

	cfg := LoadConfig()
	assert.Equal(t, "", cfg.Provider)
	assert.Equal(t, defaultOpenAIModel, cfg.OpenAIModel)
	assert.Equal(t, defaultOpenAIBaseURL, cfg.OpenAIBaseURL)
	assert.Equal(t, defaultGeminiModel, cfg.GeminiModel)
	assert.Equal(t, "", cfg.GeminiBaseURL)
}

func TestLoadConfig_ProviderInference(t *testing.T) {
	t.Run("openai key selects openai", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-test")

		cfg := LoadConfig()
		assert.Equal(t, ProviderOpenAI, cfg.Provider)
	})

	t.Run("gemini key selects gemini", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("GEMINI_API_KEY", "g-test")

		cfg := LoadConfig()
		assert.Equal(t, ProviderGemini, cfg.Provider)
	})

	t.Run("openai wins when both keys present", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("GEMINI_API_KEY", "g-test")

		cfg := LoadConfig()
		assert.Equal(t, ProviderOpenAI, cfg.Provider)
	})

	t.Run("explicit selector overrides inference", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("AI_PROVIDER", "gemini")
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("GEMINI_API_KEY", "g-test")

		cfg := LoadConfig()
		assert.Equal(t, ProviderGemini, cfg.Provider)
	})
}

func TestLoadConfig_ModelAndBaseURLOverrides(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_BASE_URL", "https://proxy.internal/v1")

	cfg := LoadConfig()
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, "https://proxy.internal/v1", cfg.OpenAIBaseURL)
}

func TestNew_NoCredentialsIsConfigError(t *testing.T) {
	clearProviderEnv(t)

	_, err := New(context.Background(), LoadConfig())
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestNew_SelectedProviderWithoutKeyIsConfigError(t *testing.T) {
	clearProviderEnv(t)

	_, err := New(context.Background(), Config{Provider: ProviderOpenAI})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Error(), "OPENAI_API_KEY")
}

func TestNew_UnknownProviderIsConfigError(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "oracle"})
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestNew_OpenAISelectionIsStatic(t *testing.T) {
	client, err := New(context.Background(), Config{
		Provider:      ProviderOpenAI,
		OpenAIKey:     "sk-test",
		OpenAIModel:   defaultOpenAIModel,
		OpenAIBaseURL: defaultOpenAIBaseURL,
	})
	require.NoError(t, err)
	_, ok := client.(*openAIClient)
	assert.True(t, ok)
}
