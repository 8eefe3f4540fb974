package assistant

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"finance-sync/internal/errors"
)

// GeminiGenerator generates replies with a Gemini model. Credentials come
// from the environment (GEMINI_API_KEY or the Vertex AI variables).
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{})
	if err != nil {
		return nil, errors.Wrap(errors.ConfigError, "failed to create genai client", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, system, question string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(question), config)
	if err != nil {
		return "", errors.Wrap(errors.UpstreamError, "failed to generate content", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.NewAppError(errors.UpstreamError, "empty response from model")
	}
	return text, nil
}
