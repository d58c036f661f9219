// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import "github.com/pdiddy/qa-synth/pkg/types"

// EventKind names a lifecycle point of a Build call.
type EventKind string

const (
	EventOutlineReady EventKind = "outline_ready"
	EventSlotsReady   EventKind = "slots_ready"
	EventAttempt      EventKind = "attempt"
	EventFlushed      EventKind = "flushed"
	EventFinished     EventKind = "finished"
)

// Event is a structured progress notification. Fields not relevant to Kind
// are zero.
type Event struct {
	Kind  EventKind
	Topic string

	// Outline and slot expansion.
	Nodes int
	Slots int

	// Attempts made so far (1-based after the first attempt) and the cap.
	Attempts    int
	MaxAttempts int

	// Accepted items so far and the requested count.
	Accepted int
	Target   int

	// Per-attempt detail.
	Verdict    Verdict
	Section    string
	Focus      string
	Difficulty types.Difficulty
	Variant    int
	Score      float64
	ItemID     int

	// Items handed to the flush callback.
	Flushed int
}

// ProgressFunc receives events synchronously from the loop.
type ProgressFunc func(Event)

// FlushFunc receives newly accepted items, in acceptance order, for durable
// append. It runs synchronously inside the loop and must not block
// indefinitely. A returned error stops the run.
type FlushFunc func(items []types.QAItem) error
