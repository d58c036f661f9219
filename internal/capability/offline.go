// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/qa-synth/pkg/types"
)

// OfflineScore is the constant score the offline reviewer assigns.
const OfflineScore = 5.0

const offlineHint = "(configure an API key and base URL for real generation)"

// Offline implements Provider without any network access. Every reply is a
// tagged placeholder embedding the rendered user prompt, so distinct
// requests yield distinct text.
type Offline struct {
	persona string
}

// NewOffline returns the offline provider.
func NewOffline() *Offline {
	return &Offline{persona: DefaultPersona}
}

// Name returns "offline".
func (o *Offline) Name() string { return "offline" }

func (o *Offline) placeholder(tag string, p rolePrompt, data any) string {
	prompt, err := p.render(data, 0)
	text := prompt.User
	if err != nil {
		text = fmt.Sprintf("%+v", data)
	}
	return fmt.Sprintf("[%s] %s %s", tag, strings.Join(strings.Fields(text), " "), offlineHint)
}

// Outline returns a fallback carrying the placeholder, which the expander
// turns into a single node.
func (o *Offline) Outline(_ context.Context, topic string) (Outcome[[]types.OutlineNode], error) {
	return Fallback[[]types.OutlineNode](o.placeholder("Planner", outlinePrompt, outlineData{Persona: o.persona, Topic: topic})), nil
}

// Note returns a placeholder note.
func (o *Offline) Note(_ context.Context, heading string, bullets []string) (string, error) {
	return o.placeholder("TeachingNote", notePrompt, noteData{Persona: o.persona, Heading: heading, Bullets: bullets}), nil
}

// QA returns the placeholder as both question and answer.
func (o *Offline) QA(_ context.Context, req QARequest) (Outcome[QAPair], error) {
	p := o.placeholder("QA", qaPrompt, qaData{
		Persona:    o.persona,
		Topic:      req.Topic,
		Bullets:    req.Bullets,
		Difficulty: string(req.Difficulty),
		Variant:    req.Variant,
	})
	return Parsed(QAPair{Question: p, Answer: p}, p), nil
}

// Answer returns a placeholder answer.
func (o *Offline) Answer(_ context.Context, question string) (string, error) {
	return o.placeholder("TeacherAnswer", answerPrompt, answerData{Persona: o.persona, Question: question}), nil
}

// Review scores every pair OfflineScore.
func (o *Offline) Review(_ context.Context, question, answer string) (Outcome[Review], error) {
	p := o.placeholder("Review", reviewPrompt, reviewData{Persona: o.persona, Question: question, Answer: answer})
	return Parsed(Review{Score: OfflineScore, Text: p}, p), nil
}
