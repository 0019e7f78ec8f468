package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/maricastroc/minerva-ai/internal/config"
	"github.com/maricastroc/minerva-ai/internal/domain"
)

var roleEcho = regexp.MustCompile(`(?i)^assistant:?\s*`)

// Dispatcher tries generation backends in priority order. Every
// per-backend failure means "continue": rate limits and outages are
// expected, anything else is logged and skipped too, so a single
// misbehaving variant never takes the feature down. The overall time
// budget keeps a misconfigured list from retrying forever.
type Dispatcher struct {
	backends []domain.Generator
	budget   time.Duration
}

func NewDispatcher(backends []domain.Generator) *Dispatcher {
	return &Dispatcher{
		backends: backends,
		budget:   config.DispatchTimeBudget,
	}
}

func (d *Dispatcher) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.budget)
	defer cancel()

	for _, b := range d.backends {
		if ctx.Err() != nil {
			slog.Warn("dispatch time budget exhausted")
			break
		}

		text, err := b.Generate(ctx, prompt)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRateLimited):
				slog.Warn("backend rate limited", "backend", b.Name())
			case errors.Is(err, domain.ErrUnavailable):
				slog.Warn("backend unavailable", "backend", b.Name())
			default:
				slog.Error("backend failed", "backend", b.Name(), "error", err)
			}
			continue
		}

		return stripRoleEcho(text), nil
	}

	return "", fmt.Errorf("%w: tried %d backends", domain.ErrAllBackendsFailed, len(d.backends))
}

// stripRoleEcho removes a leading "Assistant:" some models prepend
// when the prompt ends with that cue.
func stripRoleEcho(text string) string {
	return roleEcho.ReplaceAllString(text, "")
}
