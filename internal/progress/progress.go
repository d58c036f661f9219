// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress turns synthesizer events into structured log entries
// and run tallies.
package progress

import (
	"go.uber.org/zap"

	"github.com/pdiddy/qa-synth/internal/synth"
)

// Logger returns a ProgressFunc that logs lifecycle events at info and
// individual attempts at debug.
func Logger(log *zap.Logger) synth.ProgressFunc {
	return func(e synth.Event) {
		switch e.Kind {
		case synth.EventOutlineReady:
			log.Info("outline ready", zap.String("topic", e.Topic), zap.Int("sections", e.Nodes))
		case synth.EventSlotsReady:
			log.Info("slots ready", zap.Int("sections", e.Nodes), zap.Int("slots", e.Slots))
		case synth.EventAttempt:
			fields := []zap.Field{
				zap.Int("attempt", e.Attempts),
				zap.Int("max_attempts", e.MaxAttempts),
				zap.Int("accepted", e.Accepted),
				zap.Int("target", e.Target),
				zap.String("verdict", string(e.Verdict)),
				zap.String("section", e.Section),
				zap.String("difficulty", string(e.Difficulty)),
				zap.Int("variant", e.Variant),
				zap.Float64("score", e.Score),
			}
			if e.Verdict == synth.VerdictAccepted {
				fields = append(fields, zap.Int("id", e.ItemID))
			}
			log.Debug("attempt", fields...)
		case synth.EventFlushed:
			log.Info("checkpoint flushed", zap.Int("items", e.Flushed), zap.Int("accepted", e.Accepted))
		case synth.EventFinished:
			log.Info("generation finished",
				zap.Int("accepted", e.Accepted),
				zap.Int("target", e.Target),
				zap.Int("attempts", e.Attempts),
			)
		}
	}
}

// Counter tallies attempt verdicts.
type Counter struct {
	Attempts          int
	Accepted          int
	RejectedScore     int
	RejectedDuplicate int
	Flushed           int
}

// Observe records e. It is a synth.ProgressFunc.
func (c *Counter) Observe(e synth.Event) {
	switch e.Kind {
	case synth.EventAttempt:
		c.Attempts++
		switch e.Verdict {
		case synth.VerdictAccepted:
			c.Accepted++
		case synth.VerdictLowScore:
			c.RejectedScore++
		case synth.VerdictDuplicate:
			c.RejectedDuplicate++
		}
	case synth.EventFlushed:
		c.Flushed += e.Flushed
	}
}

// KeptPercent is the accepted count as a share of target, capped at 100.
func (c *Counter) KeptPercent(target int) float64 {
	d := max(c.Accepted, target)
	if d == 0 {
		return 0
	}
	return 100 * float64(c.Accepted) / float64(d)
}

// Tee fans one event out to several receivers in order.
func Tee(fns ...synth.ProgressFunc) synth.ProgressFunc {
	return func(e synth.Event) {
		for _, fn := range fns {
			if fn != nil {
				fn(e)
			}
		}
	}
}
