// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package capability wraps a text-generation service in the three roles the
// synthesizer consumes: outline planner, writer, and reviewer.
//
// Two variants exist. Remote renders role prompts and sends them through an
// llm.Completer. Offline returns tagged placeholders that embed the prompt,
// which keeps the pipeline runnable without network access or credentials.
// Malformed replies never surface as errors; they come back as a fallback
// Outcome carrying the raw text.
package capability

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/qa-synth/internal/llm"
	"github.com/pdiddy/qa-synth/pkg/types"
)

// Outcome is the result of parsing a reply: either a parsed value or the raw
// reply text the parser could not interpret.
type Outcome[T any] struct {
	Value T
	Raw   string
	ok    bool
}

// Parsed returns a successful outcome.
func Parsed[T any](v T, raw string) Outcome[T] {
	return Outcome[T]{Value: v, Raw: raw, ok: true}
}

// Fallback returns an outcome holding only raw text.
func Fallback[T any](raw string) Outcome[T] {
	return Outcome[T]{Raw: raw}
}

// Ok reports whether the reply was parsed.
func (o Outcome[T]) Ok() bool { return o.ok }

// QARequest asks the writer for one question/answer pair.
type QARequest struct {
	Topic      string
	Bullets    []string
	Difficulty types.Difficulty
	Variant    int
}

// QAPair is a generated question and its reference answer.
type QAPair struct {
	Question string
	Answer   string
}

// Review is the reviewer's verdict on a pair.
type Review struct {
	Score float64
	Text  string
}

// Outliner breaks a topic into outline nodes.
type Outliner interface {
	Outline(ctx context.Context, topic string) (Outcome[[]types.OutlineNode], error)
}

// Writer produces teaching notes, QA pairs, and direct answers.
type Writer interface {
	Note(ctx context.Context, heading string, bullets []string) (string, error)
	QA(ctx context.Context, req QARequest) (Outcome[QAPair], error)
	Answer(ctx context.Context, question string) (string, error)
}

// Reviewer scores a QA pair on a 0-10 scale.
type Reviewer interface {
	Review(ctx context.Context, question, answer string) (Outcome[Review], error)
}

// Provider bundles the three roles.
type Provider interface {
	Outliner
	Writer
	Reviewer

	// Name identifies the variant for logs ("offline", "openai", "gemini").
	Name() string
}

// New selects the provider variant once from configuration: Remote when
// credentials are present, Offline otherwise.
func New(ctx context.Context, cfg *types.AIConfig, log *zap.Logger) (Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if !cfg.Remote() {
		log.Info("no API credentials configured, using offline placeholders")
		return NewOffline(), nil
	}

	var c llm.Completer
	switch cfg.Provider {
	case types.ProviderGemini:
		g, err := llm.NewGemini(ctx, *cfg)
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		c = g
	case types.ProviderOpenAI, "":
		c = llm.NewOpenAI(*cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q (want openai or gemini)", cfg.Provider)
	}

	provider := string(cfg.Provider)
	if provider == "" {
		provider = string(types.ProviderOpenAI)
	}
	log.Info("using remote provider", zap.String("provider", provider), zap.String("model", cfg.Model))
	return NewRemote(llm.WithRetry(c, cfg.MaxRetries), provider, cfg.Persona, log), nil
}
