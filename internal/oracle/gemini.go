package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"dreamgate/internal/logging"
)

// GeminiClient implements Client against the Google Gemini API. Used as
// the second backend identity in multi-backend comparison runs.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Name identifies this backend.
func (c *GeminiClient) Name() string {
	return "gemini/" + c.model
}

// Generate sends the prompt and returns the completion text. A deadline
// on the derived context bounds the call.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	logging.OracleDebug("%s call took %v (err=%v)", c.Name(), time.Since(start), err)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &TimeoutError{Backend: c.Name(), Limit: timeout}
		}
		return "", &ProcessError{Backend: c.Name(), Message: truncate(err.Error(), 500)}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &ProcessError{Backend: c.Name(), Message: "no completion returned"}
	}
	return text, nil
}
