// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model and configuration shared across stages.
package types

import (
	"fmt"
	"strings"
)

// Difficulty labels how hard a generated question is meant to be.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultDifficulties is the cycle used when the caller supplies none.
var DefaultDifficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty converts a label into a Difficulty. Matching ignores case
// and surrounding whitespace.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q (want easy, medium, or hard)", s)
	}
	return d, nil
}

// ParseDifficulties parses a list of labels, rejecting empty input.
func ParseDifficulties(labels []string) ([]Difficulty, error) {
	var out []Difficulty
	for _, l := range labels {
		if strings.TrimSpace(l) == "" {
			continue
		}
		d, err := ParseDifficulty(l)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one difficulty is required")
	}
	return out, nil
}

// Valid reports whether d is one of the known difficulty labels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// OutlineNode is one section of a topic outline with its teachable points.
type OutlineNode struct {
	// Section is the section heading.
	Section string `json:"section" yaml:"section"`

	// BulletPoints lists the focus points taught under this section, in order.
	BulletPoints []string `json:"bullet_points" yaml:"bullet_points"`
}

// OutlineFile is the on-disk shape of a user-supplied outline.
type OutlineFile struct {
	Sections []OutlineNode `json:"sections" yaml:"sections"`
}

// Slot is one generation target: a focus point under a section, together
// with the section's teaching note (empty when notes were skipped).
type Slot struct {
	Section string `json:"section" yaml:"section"`
	Note    string `json:"note" yaml:"note"`
	Focus   string `json:"focus" yaml:"focus"`
}

// QAItem is one accepted question/answer record. Optional fields are nil
// when unset and serialize as null.
type QAItem struct {
	ID           int        `json:"id" yaml:"id"`
	Topic        string     `json:"topic" yaml:"topic"`
	Difficulty   Difficulty `json:"difficulty" yaml:"difficulty"`
	Input        string     `json:"input" yaml:"input"`
	Output       string     `json:"output" yaml:"output"`
	TeachingNote *string    `json:"teaching_note" yaml:"teaching_note"`
	Review       *string    `json:"review" yaml:"review"`
	Score        *float64   `json:"score" yaml:"score"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 {
	return &f
}
