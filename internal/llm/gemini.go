// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"strings"

	genai "google.golang.org/genai"

	"github.com/pdiddy/qa-synth/pkg/types"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini calls the Google Gemini API through the genai SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini completer. The model defaults to gemini-2.5-flash.
func NewGemini(ctx context.Context, cfg types.AIConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Gemini{client: c, model: model}, nil
}

// Complete sends one GenerateContent request.
func (g *Gemini) Complete(ctx context.Context, p Prompt) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if p.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}
	if p.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(p.Temperature))
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(p.User, genai.RoleUser),
	}, cfg)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}
