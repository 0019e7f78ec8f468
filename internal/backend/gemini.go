package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/maricastroc/minerva-ai/internal/config"
	"github.com/maricastroc/minerva-ai/internal/domain"
	"google.golang.org/genai"
)

// NewClient creates the shared Gemini API client.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

// Gemini is one model variant in the dispatcher's priority list.
type Gemini struct {
	client *genai.Client
	model  string
	cfg    *genai.GenerateContentConfig
}

func NewGemini(client *genai.Client, model string) *Gemini {
	temp := float32(config.Temperature)
	topP := float32(config.TopP)
	topK := float32(config.TopK)

	return &Gemini{
		client: client,
		model:  model,
		cfg: &genai.GenerateContentConfig{
			Temperature:     &temp,
			TopP:            &topP,
			TopK:            &topK,
			MaxOutputTokens: int32(config.MaxOutputTokens),
		},
	}
}

// NewTitleGemini builds the fast low-token variant used only for
// title synthesis.
func NewTitleGemini(client *genai.Client, model string) *Gemini {
	temp := float32(config.TitleTemperature)

	return &Gemini{
		client: client,
		model:  model,
		cfg: &genai.GenerateContentConfig{
			Temperature:     &temp,
			MaxOutputTokens: int32(config.TitleMaxOutputTokens),
		},
	}
}

func (g *Gemini) Name() string { return g.model }

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.cfg)
	if err != nil {
		return "", classify(err)
	}

	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", fmt.Errorf("%w: %s returned empty text", domain.ErrUnavailable, g.model)
	}
	return text, nil
}

// classify maps a backend error onto the dispatcher's taxonomy.
func classify(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	case strings.Contains(msg, "503") || strings.Contains(msg, "UNAVAILABLE") ||
		strings.Contains(msg, "overloaded"):
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	default:
		return err
	}
}
