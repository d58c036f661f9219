// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package capability

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/qa-synth/internal/llm"
	"github.com/pdiddy/qa-synth/pkg/types"
)

// scriptedCompleter returns canned replies in order and records prompts.
type scriptedCompleter struct {
	replies []string
	err     error
	prompts []llm.Prompt
}

func (s *scriptedCompleter) Complete(_ context.Context, p llm.Prompt) (string, error) {
	s.prompts = append(s.prompts, p)
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return "", nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func TestParseOutline(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantOk  bool
		wantLen int
	}{
		{
			name:    "json array",
			raw:     `[{"section":"WACC","bullet_points":["debt cost","equity cost"]},{"section":"CAPM","bullet_points":["beta"]}]`,
			wantOk:  true,
			wantLen: 2,
		},
		{
			name:    "fenced json",
			raw:     "```json\n[{\"section\":\"WACC\",\"bullet_points\":[\"a\"]}]\n```",
			wantOk:  true,
			wantLen: 1,
		},
		{name: "empty array", raw: `[]`, wantOk: true, wantLen: 0},
		{name: "prose", raw: "Here is an outline: 1. WACC", wantOk: false},
		{name: "missing section", raw: `[{"bullet_points":["a"]}]`, wantOk: false},
		{name: "object instead of array", raw: `{"section":"x"}`, wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := parseOutline(tt.raw)
			assert.Equal(t, tt.wantOk, out.Ok())
			assert.Equal(t, tt.raw, out.Raw)
			if tt.wantOk {
				assert.Len(t, out.Value, tt.wantLen)
			}
		})
	}
}

func TestParseQA(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantOk bool
		want   QAPair
	}{
		{
			name:   "english markers",
			raw:    "Question: What is WACC?\nAnswer: A weighted average.",
			wantOk: true,
			want:   QAPair{Question: "What is WACC?", Answer: "A weighted average."},
		},
		{
			name:   "chinese markers",
			raw:    "问：什么是资本成本？\n答：投资者要求的回报率。",
			wantOk: true,
			want:   QAPair{Question: "什么是资本成本？", Answer: "投资者要求的回报率。"},
		},
		{
			name:   "earliest marker wins",
			raw:    "Question: q\nAnswer: first 答：second",
			wantOk: true,
			want:   QAPair{Question: "q", Answer: "first 答：second"},
		},
		{
			name:   "no answer marker",
			raw:    "Question: only a question",
			wantOk: false,
			want:   QAPair{Question: "Question: only a question"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := parseQA(tt.raw)
			assert.Equal(t, tt.wantOk, out.Ok())
			assert.Equal(t, tt.want, PairOf(out))
		})
	}
}

func TestParseReview(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantOk    bool
		wantScore float64
		wantText  string
	}{
		{name: "number", raw: `{"score": 8.5, "review": "clear"}`, wantOk: true, wantScore: 8.5, wantText: "clear"},
		{name: "numeric string", raw: `{"score": "7", "review": "ok"}`, wantOk: true, wantScore: 7, wantText: "ok"},
		{name: "fenced", raw: "```json\n{\"score\": 9, \"review\": \"good\"}\n```", wantOk: true, wantScore: 9, wantText: "good"},
		{name: "missing score", raw: `{"review": "no score"}`, wantOk: true, wantScore: 0, wantText: "no score"},
		{name: "clamped high", raw: `{"score": 42, "review": ""}`, wantOk: true, wantScore: 10},
		{name: "clamped low", raw: `{"score": -3, "review": ""}`, wantOk: true, wantScore: 0},
		{name: "prose", raw: "Score: 8/10, nice", wantOk: false, wantScore: 0, wantText: "Score: 8/10, nice"},
		{name: "bad score string", raw: `{"score": "eight", "review": "x"}`, wantOk: false, wantScore: 0, wantText: `{"score": "eight", "review": "x"}`},
		{name: "null", raw: `null`, wantOk: false, wantScore: 0, wantText: "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := parseReview(tt.raw)
			assert.Equal(t, tt.wantOk, out.Ok())
			r := ReviewOf(out)
			assert.InDelta(t, tt.wantScore, r.Score, 1e-9)
			assert.Equal(t, tt.wantText, r.Text)
		})
	}
}

func TestRemoteRoles(t *testing.T) {
	c := &scriptedCompleter{replies: []string{
		`[{"section":"WACC","bullet_points":["debt"]}]`,
		"A short note.",
		"Question: q1\nAnswer: a1",
		`{"score": 6, "review": "fine"}`,
		"Direct answer.",
	}}
	r := NewRemote(c, "openai", "", nil)
	ctx := context.Background()

	outline, err := r.Outline(ctx, "Cost of Capital")
	require.NoError(t, err)
	require.True(t, outline.Ok())
	assert.Equal(t, []types.OutlineNode{{Section: "WACC", BulletPoints: []string{"debt"}}}, outline.Value)

	note, err := r.Note(ctx, "WACC", []string{"debt", "equity"})
	require.NoError(t, err)
	assert.Equal(t, "A short note.", note)

	qa, err := r.QA(ctx, QARequest{Topic: "WACC", Bullets: []string{"debt"}, Difficulty: types.DifficultyHard, Variant: 3})
	require.NoError(t, err)
	assert.Equal(t, QAPair{Question: "q1", Answer: "a1"}, PairOf(qa))

	rev, err := r.Review(ctx, "q1", "a1")
	require.NoError(t, err)
	assert.Equal(t, Review{Score: 6, Text: "fine"}, ReviewOf(rev))

	ans, err := r.Answer(ctx, "What is beta?")
	require.NoError(t, err)
	assert.Equal(t, "Direct answer.", ans)

	require.Len(t, c.prompts, 5)
	assert.Contains(t, c.prompts[0].User, "Subject: Cost of Capital")
	assert.Contains(t, c.prompts[1].User, "Points: debt; equity")
	assert.Contains(t, c.prompts[2].User, "Difficulty: hard")
	assert.Contains(t, c.prompts[2].User, "Variant: 3")
	assert.Contains(t, c.prompts[2].System, DefaultPersona)
	assert.InDelta(t, writerTemperature, c.prompts[2].Temperature, 1e-9)
	assert.InDelta(t, reviewerTemperature, c.prompts[3].Temperature, 1e-9)
	assert.Contains(t, c.prompts[4].User, "Question: What is beta?")
}

func TestRemoteTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewRemote(&scriptedCompleter{err: boom}, "openai", "", nil)

	_, err := r.QA(context.Background(), QARequest{Topic: "x", Bullets: []string{"x"}, Difficulty: types.DifficultyEasy, Variant: 1})
	assert.ErrorIs(t, err, boom)

	_, err = r.Review(context.Background(), "q", "a")
	assert.ErrorIs(t, err, boom)
}

func TestRemoteEmptyReplyFallsBack(t *testing.T) {
	r := NewRemote(&scriptedCompleter{err: llm.ErrEmptyReply}, "openai", "", nil)
	ctx := context.Background()

	qa, err := r.QA(ctx, QARequest{Topic: "x", Bullets: []string{"x"}, Difficulty: types.DifficultyEasy, Variant: 1})
	require.NoError(t, err)
	assert.False(t, qa.Ok())
	assert.Equal(t, QAPair{}, PairOf(qa))

	rev, err := r.Review(ctx, "q", "a")
	require.NoError(t, err)
	assert.False(t, rev.Ok())
	assert.Equal(t, Review{}, ReviewOf(rev))

	outline, err := r.Outline(ctx, "x")
	require.NoError(t, err)
	assert.False(t, outline.Ok())

	note, err := r.Note(ctx, "h", []string{"b"})
	require.NoError(t, err)
	assert.Empty(t, note)
}

func TestOffline(t *testing.T) {
	o := NewOffline()
	ctx := context.Background()

	outline, err := o.Outline(ctx, "Cost of Capital")
	require.NoError(t, err)
	assert.False(t, outline.Ok())
	assert.True(t, strings.HasPrefix(outline.Raw, "[Planner] "))
	assert.Contains(t, outline.Raw, "Cost of Capital")

	a, err := o.QA(ctx, QARequest{Topic: "Cost of Capital", Bullets: []string{"Cost of Capital"}, Difficulty: types.DifficultyEasy, Variant: 1})
	require.NoError(t, err)
	b, err := o.QA(ctx, QARequest{Topic: "Cost of Capital", Bullets: []string{"Cost of Capital"}, Difficulty: types.DifficultyMedium, Variant: 2})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.Value.Question, "[QA] "))
	assert.Equal(t, a.Value.Question, a.Value.Answer)
	assert.NotEqual(t, a.Value.Question, b.Value.Question)

	rev, err := o.Review(ctx, "q", "a")
	require.NoError(t, err)
	assert.InDelta(t, OfflineScore, ReviewOf(rev).Score, 1e-9)
	assert.True(t, strings.HasPrefix(ReviewOf(rev).Text, "[Review] "))

	note, err := o.Note(ctx, "WACC", []string{"debt"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(note, "[TeachingNote] "))

	ans, err := o.Answer(ctx, "What is beta?")
	require.NoError(t, err)
	assert.Contains(t, ans, "What is beta?")
}

func TestNewSelectsVariant(t *testing.T) {
	tests := []struct {
		name     string
		cfg      types.AIConfig
		wantName string
		wantErr  bool
	}{
		{name: "no credentials", cfg: types.AIConfig{}, wantName: "offline"},
		{name: "key without base url", cfg: types.AIConfig{APIKey: "k"}, wantName: "offline"},
		{name: "openai compatible", cfg: types.AIConfig{APIKey: "k", BaseURL: "https://api.deepseek.com/v1"}, wantName: "openai"},
		{name: "unknown provider", cfg: types.AIConfig{Provider: "bard", APIKey: "k", BaseURL: "http://x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(context.Background(), &tt.cfg, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}
