// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/qa-synth/internal/capability"
	"github.com/pdiddy/qa-synth/pkg/types"
)

// --- mock capabilities ---

type mockOutliner struct {
	out   capability.Outcome[[]types.OutlineNode]
	err   error
	calls int
}

func (m *mockOutliner) Outline(_ context.Context, _ string) (capability.Outcome[[]types.OutlineNode], error) {
	m.calls++
	return m.out, m.err
}

type mockWriter struct {
	notes []string // headings seen by Note
	err   error
}

func (m *mockWriter) Note(_ context.Context, heading string, _ []string) (string, error) {
	m.notes = append(m.notes, heading)
	if m.err != nil {
		return "", m.err
	}
	return "note:" + heading, nil
}

func (m *mockWriter) QA(_ context.Context, _ capability.QARequest) (capability.Outcome[capability.QAPair], error) {
	return capability.Outcome[capability.QAPair]{}, nil
}

func (m *mockWriter) Answer(_ context.Context, _ string) (string, error) { return "", nil }

func TestExpandWithoutOutline(t *testing.T) {
	o := &mockOutliner{}
	w := &mockWriter{}
	slots, err := NewExpander(o, w).Expand(context.Background(), "Cost of Capital", false)
	require.NoError(t, err)

	assert.Equal(t, []types.Slot{{Section: "Cost of Capital", Note: "", Focus: "Cost of Capital"}}, slots)
	assert.Zero(t, o.calls, "planner must not be called")
	assert.Empty(t, w.notes, "notes must not be written")
}

func TestExpandWithOutline(t *testing.T) {
	o := &mockOutliner{out: capability.Parsed([]types.OutlineNode{
		{Section: "WACC", BulletPoints: []string{"debt", "equity", "weights"}},
		{Section: "CAPM", BulletPoints: nil},
		{Section: "Leverage", BulletPoints: []string{"operating"}},
	}, "raw")}
	w := &mockWriter{}

	slots, err := NewExpander(o, w).Expand(context.Background(), "Cost of Capital", true)
	require.NoError(t, err)

	want := []types.Slot{
		{Section: "WACC", Note: "note:WACC", Focus: "debt"},
		{Section: "WACC", Note: "note:WACC", Focus: "equity"},
		{Section: "WACC", Note: "note:WACC", Focus: "weights"},
		{Section: "CAPM", Note: "note:CAPM", Focus: "CAPM"},
		{Section: "Leverage", Note: "note:Leverage", Focus: "operating"},
	}
	assert.Equal(t, want, slots)
	// One note per node, not per bullet.
	assert.Equal(t, []string{"WACC", "CAPM", "Leverage"}, w.notes)
}

func TestExpandFallbackOutline(t *testing.T) {
	o := &mockOutliner{out: capability.Fallback[[]types.OutlineNode]("not json at all")}
	w := &mockWriter{}

	slots, err := NewExpander(o, w).Expand(context.Background(), "Cost of Capital", true)
	require.NoError(t, err)
	assert.Equal(t, []types.Slot{{Section: "Cost of Capital", Note: "note:Cost of Capital", Focus: "not json at all"}}, slots)
}

func TestExpandEmptyOutline(t *testing.T) {
	o := &mockOutliner{out: capability.Parsed([]types.OutlineNode{}, "[]")}
	w := &mockWriter{}

	slots, err := NewExpander(o, w).Expand(context.Background(), "Cost of Capital", true)
	require.NoError(t, err)
	assert.Equal(t, []types.Slot{{Section: "Cost of Capital", Note: "note:Cost of Capital", Focus: "Cost of Capital"}}, slots)
}

func TestExpandErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewExpander(&mockOutliner{err: boom}, &mockWriter{}).Expand(context.Background(), "t", true)
	assert.ErrorIs(t, err, boom)

	o := &mockOutliner{out: capability.Parsed([]types.OutlineNode{{Section: "A", BulletPoints: []string{"a"}}}, "")}
	_, err = NewExpander(o, &mockWriter{err: boom}).Expand(context.Background(), "t", true)
	assert.ErrorIs(t, err, boom)
}

func TestSlotsOrderIsStable(t *testing.T) {
	nodes := []types.OutlineNode{
		{Section: "A", BulletPoints: []string{"a1", "a2"}},
		{Section: "B", BulletPoints: []string{"b1"}},
	}
	e := NewExpander(&mockOutliner{}, &mockWriter{})
	first, err := e.Slots(context.Background(), "t", nodes, false)
	require.NoError(t, err)
	second, err := e.Slots(context.Background(), "t", nodes, false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantCount int
		wantErr   bool
	}{
		{
			name: "valid outline",
			yaml: `sections:
  - section: Weighted average cost of capital
    bullet_points:
      - cost of debt
      - cost of equity
  - section: Capital structure
    bullet_points: [leverage]
`,
			wantCount: 2,
		},
		{name: "empty sections", yaml: "sections: []\n", wantCount: 0},
		{name: "invalid yaml", yaml: ":::bad\n", wantErr: true},
		{name: "missing heading", yaml: "sections:\n  - bullet_points: [x]\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "outline.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			nodes, err := LoadFile(path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, nodes, tt.wantCount)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
