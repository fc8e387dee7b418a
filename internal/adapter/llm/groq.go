// Package llm provides the hosted chat-completion adapter used for
// answer generation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/thebraudalf/fnb-docbot/internal/domain"
)

// GroqClient generates answers through Groq's OpenAI-compatible chat
// completion API. Any OpenAI-compatible endpoint works via BaseURL.
type GroqClient struct {
	client *openai.Client
	model  string
}

// NewGroqClient creates a client for the given model. The API key is
// read from the environment variable named by apiKeyEnv.
func NewGroqClient(model, baseURL, apiKeyEnv string) (*GroqClient, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &GroqClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Complete sends a single-turn prompt and returns the response text.
// Deadline expiry maps to a timeout error; every other failure is a
// generation failure. Calls are never retried.
func (c *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", domain.Wrap(domain.KindTimeout, err, "generation call timed out")
		}
		return "", domain.Wrap(domain.KindGenerationFailed, err, "chat completion failed")
	}

	if len(resp.Choices) == 0 {
		return "", domain.E(domain.KindGenerationFailed, "chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the model.
func (c *GroqClient) ModelName() string {
	return c.model
}
