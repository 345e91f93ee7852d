package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// openAIClient speaks the chat-completion protocol: POST {base}/chat/completions
// with bearer auth, reading choices[0].message.content on success. Any
// OpenAI-compatible endpoint works via OPENAI_BASE_URL.
type openAIClient struct {
	client *openai.Client
	model  string
}

func newOpenAIClient(cfg Config) *openAIClient {
	oc := openai.DefaultConfig(cfg.OpenAIKey)
	oc.BaseURL = cfg.OpenAIBaseURL
	return &openAIClient{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.OpenAIModel,
	}
}

func (c *openAIClient) Send(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &ProviderError{Provider: ProviderOpenAI, Status: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
		}
		return "", &ProviderError{Provider: ProviderOpenAI, Message: err.Error(), Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &ProviderError{Provider: ProviderOpenAI, Message: "response missing message content"}
	}
	return resp.Choices[0].Message.Content, nil
}
