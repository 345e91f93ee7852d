package llm

import (
	"context"

	genai "google.golang.org/genai"
)

// geminiClient speaks the generate-content protocol through the official
// genai SDK: the system prompt maps to system_instruction, the user prompt to
// a single user content, and the reply is candidates[0].content.parts[0].text.
type geminiClient struct {
	cli   *genai.Client
	model string
}

func newGeminiClient(ctx context.Context, cfg Config) (*geminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.GeminiBaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.GeminiBaseURL
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderGemini, Message: err.Error(), Err: err}
	}
	return &geminiClient{cli: cli, model: cfg.GeminiModel}, nil
}

func (g *geminiClient) Send(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	temp := temperature
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: userPrompt}}}},
		&genai.GenerateContentConfig{
			Temperature:       &temp,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		},
	)
	if err != nil {
		return "", &ProviderError{Provider: ProviderGemini, Message: err.Error(), Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 || resp.Candidates[0].Content.Parts[0].Text == "" {
		return "", &ProviderError{Provider: ProviderGemini, Message: "response missing candidate text"}
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
