package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maricastroc/minerva-ai/internal/config"
	"github.com/maricastroc/minerva-ai/internal/domain"
)

// TitleSynthesizer labels a brand-new conversation with one fast,
// low-token generation call. Best effort only: any failure falls back
// to a prefix of the user message.
type TitleSynthesizer struct {
	gen domain.Generator
}

func NewTitleSynthesizer(gen domain.Generator) *TitleSynthesizer {
	return &TitleSynthesizer{gen: gen}
}

func (t *TitleSynthesizer) Synthesize(ctx context.Context, message string) string {
	if t.gen == nil {
		return fallbackTitle(message)
	}

	prompt := fmt.Sprintf(
		"Generate a very short title (max %d words) for this message: %q. Reply with title only, no quotes or explanations.",
		config.TitleMaxWords, message,
	)

	text, err := t.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Debug("title synthesis failed", "error", err)
		return fallbackTitle(message)
	}

	title := cleanTitle(text)
	if title == "" {
		return fallbackTitle(message)
	}
	return title
}

func cleanTitle(text string) string {
	text = strings.TrimSpace(text)
	text = strings.NewReplacer(`"`, "", "'", "", ".", "").Replace(text)

	words := strings.Fields(text)
	if len(words) > config.TitleMaxWords {
		words = words[:config.TitleMaxWords]
	}
	return strings.Join(words, " ")
}

func fallbackTitle(message string) string {
	runes := []rune(strings.TrimSpace(message))
	if len(runes) <= config.TitleFallbackChars {
		return string(runes)
	}
	return string(runes[:config.TitleFallbackChars]) + "..."
}
