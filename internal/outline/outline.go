// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline turns a topic into the ordered generation slots the
// synthesizer cycles through.
package outline

import (
	"context"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/qa-synth/internal/capability"
	"github.com/pdiddy/qa-synth/pkg/types"
)

// Expander plans outlines and fans them out into slots.
type Expander struct {
	outliner capability.Outliner
	writer   capability.Writer
}

// NewExpander returns an Expander backed by the given capabilities.
func NewExpander(o capability.Outliner, w capability.Writer) *Expander {
	return &Expander{outliner: o, writer: w}
}

// Plan returns the outline for topic. Without useOutline the outline is a
// single node whose only point is the topic itself, and no capability is
// called. A planner reply that cannot be parsed becomes one node holding
// the raw text as its point.
func (e *Expander) Plan(ctx context.Context, topic string, useOutline bool) ([]types.OutlineNode, error) {
	if !useOutline {
		return []types.OutlineNode{{Section: topic, BulletPoints: []string{topic}}}, nil
	}
	out, err := e.outliner.Outline(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("planning outline: %w", err)
	}
	if !out.Ok() {
		return []types.OutlineNode{{Section: topic, BulletPoints: []string{out.Raw}}}, nil
	}
	return out.Value, nil
}

// Slots fans nodes out into one slot per bullet point, in order. With
// withNotes, one teaching note is written per node and shared by its slots.
// A node without bullets contributes its section as the single point. The
// result is never empty: an empty outline yields one slot for topic.
func (e *Expander) Slots(ctx context.Context, topic string, nodes []types.OutlineNode, withNotes bool) ([]types.Slot, error) {
	var slots []types.Slot
	for _, n := range nodes {
		bullets := n.BulletPoints
		if len(bullets) == 0 {
			bullets = []string{n.Section}
		}
		note, err := e.note(ctx, n.Section, bullets, withNotes)
		if err != nil {
			return nil, err
		}
		for _, b := range bullets {
			slots = append(slots, types.Slot{Section: n.Section, Note: note, Focus: b})
		}
	}

	if len(slots) == 0 {
		note, err := e.note(ctx, topic, []string{topic}, withNotes)
		if err != nil {
			return nil, err
		}
		slots = append(slots, types.Slot{Section: topic, Note: note, Focus: topic})
	}
	return slots, nil
}

// Expand runs Plan then Slots, writing notes only when useOutline is set.
func (e *Expander) Expand(ctx context.Context, topic string, useOutline bool) ([]types.Slot, error) {
	nodes, err := e.Plan(ctx, topic, useOutline)
	if err != nil {
		return nil, err
	}
	return e.Slots(ctx, topic, nodes, useOutline)
}

func (e *Expander) note(ctx context.Context, heading string, bullets []string, withNotes bool) (string, error) {
	if !withNotes {
		return "", nil
	}
	note, err := e.writer.Note(ctx, heading, bullets)
	if err != nil {
		return "", fmt.Errorf("writing note for %q: %w", heading, err)
	}
	return note, nil
}

// LoadFile reads a YAML outline of the form
//
//	sections:
//	  - section: Weighted average cost of capital
//	    bullet_points: [cost of debt, cost of equity]
func LoadFile(path string) ([]types.OutlineNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading outline: %w", err)
	}
	var f types.OutlineFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing outline: %w", err)
	}
	for i, n := range f.Sections {
		if n.Section == "" {
			return nil, fmt.Errorf("parsing outline: section %d has no heading", i+1)
		}
	}
	return f.Sections, nil
}
