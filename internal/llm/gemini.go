package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// ErrNoAPIKey is returned when no Gemini API key is configured.
var ErrNoAPIKey = errors.New("no Gemini API key configured (set GEMINI_API_KEY)")

// GeminiClient implements Generator using the Gemini API.
//
// The underlying client is created on first use, so archives that never
// need a password never need an API key either.
type GeminiClient struct {
	apiKey string

	once   sync.Once
	client *genai.Client
	err    error
}

// NewGeminiClient creates a GeminiClient for apiKey.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{apiKey: apiKey}
}

func (c *GeminiClient) init(ctx context.Context) (*genai.Client, error) {
	c.once.Do(func() {
		if c.apiKey == "" {
			c.err = ErrNoAPIKey
			return
		}
		c.client, c.err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if c.err != nil {
			c.err = fmt.Errorf("failed to create GenAI client: %w", c.err)
		}
	})
	return c.client, c.err
}

// Generate sends prompt to model and returns the reply text.
func (c *GeminiClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	client, err := c.init(ctx)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
