// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"github.com/pdiddy/qa-synth/internal/capability"
	"github.com/pdiddy/qa-synth/pkg/types"
)

// Verdict is the acceptance decision for one attempt.
type Verdict string

const (
	VerdictAccepted  Verdict = "accepted"
	VerdictLowScore  Verdict = "rejected_low_score"
	VerdictDuplicate Verdict = "rejected_duplicate"
)

// attempt is one planned generation request and, once run, its results.
type attempt struct {
	index      int
	slot       types.Slot
	difficulty types.Difficulty
	variant    int

	pair   capability.QAPair
	review capability.Review
}

// planAttempt picks the slot, difficulty, and variant for attempt index i.
// Slots and difficulties cycle on independent moduli; the variant counts
// completed passes over the slot list.
func planAttempt(i int, slots []types.Slot, difficulties []types.Difficulty) attempt {
	return attempt{
		index:      i,
		slot:       slots[i%len(slots)],
		difficulty: difficulties[i%len(difficulties)],
		variant:    i/len(slots) + 1,
	}
}

// runState is everything one Build call accumulates. It performs no I/O:
// apply is the state transition and drain hands buffered items to the
// caller, which owns the side effects.
type runState struct {
	accepted []types.QAItem
	seen     map[string]struct{}
	attempts int
	nextID   int
	minScore *float64
	pending  []types.QAItem
}

func newRunState(startID int, minScore *float64) *runState {
	return &runState{
		seen:     make(map[string]struct{}),
		nextID:   startID,
		minScore: minScore,
	}
}

// apply records a finished attempt. Checks run in order: score threshold,
// then exact-text duplicate of an accepted question. An accepted item takes
// the next id and joins both the dataset and the unflushed buffer.
func (s *runState) apply(a attempt) (types.QAItem, Verdict) {
	s.attempts++

	if s.minScore != nil && a.review.Score < *s.minScore {
		return types.QAItem{}, VerdictLowScore
	}
	if _, dup := s.seen[a.pair.Question]; dup {
		return types.QAItem{}, VerdictDuplicate
	}

	item := types.QAItem{
		ID:           s.nextID,
		Topic:        a.slot.Section,
		Difficulty:   a.difficulty,
		Input:        a.pair.Question,
		Output:       a.pair.Answer,
		TeachingNote: types.StringPtr(a.slot.Note),
		Review:       types.StringPtr(a.review.Text),
		Score:        types.Float64Ptr(a.review.Score),
	}
	s.nextID++
	s.seen[a.pair.Question] = struct{}{}
	s.accepted = append(s.accepted, item)
	s.pending = append(s.pending, item)
	return item, VerdictAccepted
}

// drain returns and clears the buffer once it holds at least threshold
// items. A threshold <= 0 drains whatever is buffered.
func (s *runState) drain(threshold int) []types.QAItem {
	if len(s.pending) == 0 || len(s.pending) < threshold {
		return nil
	}
	chunk := s.pending
	s.pending = nil
	return chunk
}

// done reports whether the target or the attempt cap has been reached.
func (s *runState) done(target, maxAttempts int) bool {
	return len(s.accepted) >= target || s.attempts >= maxAttempts
}
