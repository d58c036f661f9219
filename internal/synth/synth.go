// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth builds a question/answer dataset for a topic by cycling
// through outline slots, asking the writer for a pair, asking the reviewer
// for a score, and keeping the pairs that pass the acceptance checks.
//
// Attempts run strictly in sequence so slot, difficulty, and variant
// selection is reproducible, and ids stay contiguous from the caller's
// start offset across resumed runs.
package synth

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/qa-synth/internal/capability"
	"github.com/pdiddy/qa-synth/internal/outline"
	"github.com/pdiddy/qa-synth/pkg/types"
)

// DefaultAttemptFactor sets the attempt cap to NumQuestions times this
// value when MaxAttempts is unset.
const DefaultAttemptFactor = 5

// ErrInvalidOptions marks a Build call rejected before any generation work.
var ErrInvalidOptions = errors.New("invalid options")

// Options controls one Build call.
type Options struct {
	// NumQuestions is the target count of accepted items (>= 1).
	NumQuestions int

	// Difficulties is the difficulty cycle; nil means easy, medium, hard.
	Difficulties []types.Difficulty

	// MinScore, when set, rejects items scored strictly below it.
	MinScore *float64

	// MaxAttempts caps total attempts; 0 means NumQuestions*DefaultAttemptFactor.
	MaxAttempts int

	// UseOutline plans a multi-section outline with teaching notes.
	UseOutline bool

	// Outline, when non-nil, replaces the planner. Notes are still written.
	Outline []types.OutlineNode

	// StartID is the first id assigned; 0 means 1.
	StartID int

	// FlushEvery hands accepted items to Flush in chunks of this size.
	// With Flush set and FlushEvery <= 0, everything is flushed once at exit.
	FlushEvery int
	Flush      FlushFunc

	// Progress receives lifecycle events. Optional.
	Progress ProgressFunc
}

// normalize fills defaults and validates o.
func (o Options) normalize() (Options, error) {
	if o.NumQuestions < 1 {
		return o, fmt.Errorf("%w: num questions must be at least 1, got %d", ErrInvalidOptions, o.NumQuestions)
	}
	if o.Difficulties == nil {
		o.Difficulties = types.DefaultDifficulties
	}
	if len(o.Difficulties) == 0 {
		return o, fmt.Errorf("%w: difficulties must not be empty", ErrInvalidOptions)
	}
	for _, d := range o.Difficulties {
		if !d.Valid() {
			return o, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidOptions, d)
		}
	}
	switch {
	case o.MaxAttempts == 0:
		o.MaxAttempts = o.NumQuestions * DefaultAttemptFactor
	case o.MaxAttempts < 0:
		return o, fmt.Errorf("%w: max attempts must be positive, got %d", ErrInvalidOptions, o.MaxAttempts)
	}
	switch {
	case o.StartID == 0:
		o.StartID = 1
	case o.StartID < 0:
		return o, fmt.Errorf("%w: start id must be positive, got %d", ErrInvalidOptions, o.StartID)
	}
	return o, nil
}

// Synthesizer orchestrates the outline expander, writer, and reviewer.
type Synthesizer struct {
	expander *outline.Expander
	writer   capability.Writer
	reviewer capability.Reviewer
}

// New returns a Synthesizer over the three roles.
func New(o capability.Outliner, w capability.Writer, r capability.Reviewer) *Synthesizer {
	return &Synthesizer{
		expander: outline.NewExpander(o, w),
		writer:   w,
		reviewer: r,
	}
}

// NewFromProvider returns a Synthesizer whose roles all come from p.
func NewFromProvider(p capability.Provider) *Synthesizer {
	return New(p, p, p)
}

// Build generates up to opts.NumQuestions accepted items for topic.
//
// The loop stops when the target is met or opts.MaxAttempts attempts have
// run; a result shorter than requested is not an error. Buffered items are
// always flushed before Build returns. Errors come only from invalid
// options, cancellation of ctx (checked before each attempt), a capability
// transport failure, or the flush callback; the items accepted so far are
// returned alongside them.
func (s *Synthesizer) Build(ctx context.Context, topic string, opts Options) ([]types.QAItem, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	emit := func(e Event) {
		if opts.Progress != nil {
			e.Topic = topic
			e.Target = opts.NumQuestions
			e.MaxAttempts = opts.MaxAttempts
			opts.Progress(e)
		}
	}

	nodes := opts.Outline
	withNotes := opts.UseOutline || nodes != nil
	if nodes == nil {
		nodes, err = s.expander.Plan(ctx, topic, opts.UseOutline)
		if err != nil {
			return nil, err
		}
	}
	emit(Event{Kind: EventOutlineReady, Nodes: len(nodes)})

	slots, err := s.expander.Slots(ctx, topic, nodes, withNotes)
	if err != nil {
		return nil, err
	}
	emit(Event{Kind: EventSlotsReady, Nodes: len(nodes), Slots: len(slots)})

	st := newRunState(opts.StartID, opts.MinScore)
	runErr := s.run(ctx, st, slots, opts, emit)

	var sinkErr *flushError
	if !errors.As(runErr, &sinkErr) {
		if err := s.flush(st, 0, opts, emit); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}

	emit(Event{Kind: EventFinished, Attempts: st.attempts, Accepted: len(st.accepted)})
	return st.accepted, runErr
}

func (s *Synthesizer) run(ctx context.Context, st *runState, slots []types.Slot, opts Options, emit func(Event)) error {
	for !st.done(opts.NumQuestions, opts.MaxAttempts) {
		if err := ctx.Err(); err != nil {
			return err
		}

		a := planAttempt(st.attempts, slots, opts.Difficulties)

		qa, err := s.writer.QA(ctx, capability.QARequest{
			Topic:      a.slot.Section,
			Bullets:    []string{a.slot.Focus},
			Difficulty: a.difficulty,
			Variant:    a.variant,
		})
		if err != nil {
			return fmt.Errorf("attempt %d: %w", a.index+1, err)
		}
		a.pair = capability.PairOf(qa)

		rv, err := s.reviewer.Review(ctx, a.pair.Question, a.pair.Answer)
		if err != nil {
			return fmt.Errorf("attempt %d: %w", a.index+1, err)
		}
		a.review = capability.ReviewOf(rv)

		item, verdict := st.apply(a)
		emit(Event{
			Kind:       EventAttempt,
			Attempts:   st.attempts,
			Accepted:   len(st.accepted),
			Verdict:    verdict,
			Section:    a.slot.Section,
			Focus:      a.slot.Focus,
			Difficulty: a.difficulty,
			Variant:    a.variant,
			Score:      a.review.Score,
			ItemID:     item.ID,
		})

		if opts.FlushEvery > 0 {
			if err := s.flush(st, opts.FlushEvery, opts, emit); err != nil {
				return err
			}
		}
	}
	return nil
}

// flushError wraps a failure returned by the flush callback.
type flushError struct{ err error }

func (e *flushError) Error() string { return "flushing checkpoint: " + e.err.Error() }
func (e *flushError) Unwrap() error { return e.err }

func (s *Synthesizer) flush(st *runState, threshold int, opts Options, emit func(Event)) error {
	if opts.Flush == nil {
		return nil
	}
	chunk := st.drain(threshold)
	if chunk == nil {
		return nil
	}
	if err := opts.Flush(chunk); err != nil {
		return &flushError{err: err}
	}
	emit(Event{Kind: EventFlushed, Attempts: st.attempts, Accepted: len(st.accepted), Flushed: len(chunk)})
	return nil
}
