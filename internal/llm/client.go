package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todo-api/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

// Client sends single-prompt requests to an OpenAI-compatible chat completion endpoint
// (Gemini's compatibility endpoint by default).
type Client struct {
	client *openai.Client
	model  string
}

// NewClient builds the client from config. An empty API key is accepted here; the
// upstream rejects the call when a recommendation is requested.
func NewClient(cfg *config.Config) *Client {
	oc := openai.DefaultConfig(cfg.LLMAPIKey)
	oc.BaseURL = strings.TrimRight(cfg.LLMBaseURL, "/")
	return &Client{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.LLMModel,
	}
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt as one user message and returns the raw text of the first choice.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("generate content: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
