// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package capability

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/qa-synth/internal/llm"
	"github.com/pdiddy/qa-synth/pkg/types"
)

// Sampling temperatures per role. The writer runs hotter so repeated visits
// to a slot produce different questions.
const (
	plannerTemperature  = 0.2
	writerTemperature   = 0.7
	reviewerTemperature = 0.2
)

// Remote implements Provider on top of a text-generation service.
type Remote struct {
	completer llm.Completer
	name      string
	persona   string
	log       *zap.Logger
}

// NewRemote builds a Remote provider. An empty persona uses DefaultPersona.
func NewRemote(c llm.Completer, name, persona string, log *zap.Logger) *Remote {
	if persona == "" {
		persona = DefaultPersona
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Remote{completer: c, name: name, persona: persona, log: log.Named("capability")}
}

// Name returns the transport name.
func (r *Remote) Name() string { return r.name }

func (r *Remote) complete(ctx context.Context, role string, p rolePrompt, data any, temperature float64) (string, error) {
	prompt, err := p.render(data, temperature)
	if err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", role, err)
	}
	text, err := r.completer.Complete(ctx, prompt)
	if errors.Is(err, llm.ErrEmptyReply) {
		// A blank reply parses as a fallback: empty pair, zero score.
		r.log.Warn("empty reply", zap.String("role", role))
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s request: %w", role, err)
	}
	return text, nil
}

// Outline asks the planner for a sectioned outline of topic.
func (r *Remote) Outline(ctx context.Context, topic string) (Outcome[[]types.OutlineNode], error) {
	raw, err := r.complete(ctx, "outline", outlinePrompt, outlineData{Persona: r.persona, Topic: topic}, plannerTemperature)
	if err != nil {
		return Outcome[[]types.OutlineNode]{}, err
	}
	out := parseOutline(raw)
	if !out.Ok() {
		r.log.Warn("outline reply is not a valid outline, using raw text", zap.String("topic", topic))
	}
	return out, nil
}

// Note writes a short teaching note for a section.
func (r *Remote) Note(ctx context.Context, heading string, bullets []string) (string, error) {
	return r.complete(ctx, "note", notePrompt, noteData{Persona: r.persona, Heading: heading, Bullets: bullets}, writerTemperature)
}

// QA writes one question/answer pair.
func (r *Remote) QA(ctx context.Context, req QARequest) (Outcome[QAPair], error) {
	raw, err := r.complete(ctx, "qa", qaPrompt, qaData{
		Persona:    r.persona,
		Topic:      req.Topic,
		Bullets:    req.Bullets,
		Difficulty: string(req.Difficulty),
		Variant:    req.Variant,
	}, writerTemperature)
	if err != nil {
		return Outcome[QAPair]{}, err
	}
	out := parseQA(raw)
	if !out.Ok() {
		r.log.Debug("qa reply has no answer marker", zap.String("topic", req.Topic), zap.Int("variant", req.Variant))
	}
	return out, nil
}

// Answer responds to a free-form student question.
func (r *Remote) Answer(ctx context.Context, question string) (string, error) {
	return r.complete(ctx, "answer", answerPrompt, answerData{Persona: r.persona, Question: question}, writerTemperature)
}

// Review scores a question/answer pair.
func (r *Remote) Review(ctx context.Context, question, answer string) (Outcome[Review], error) {
	raw, err := r.complete(ctx, "review", reviewPrompt, reviewData{Persona: r.persona, Question: question, Answer: answer}, reviewerTemperature)
	if err != nil {
		return Outcome[Review]{}, err
	}
	out := parseReview(raw)
	if !out.Ok() {
		r.log.Debug("review reply is not valid JSON, scoring 0")
	}
	return out, nil
}
