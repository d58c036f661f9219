// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides text-completion transports for remote
// text-generation services.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pdiddy/qa-synth/internal/httputil"
)

// Prompt is a single request to a text-generation service.
type Prompt struct {
	// System carries the role instructions.
	System string

	// User carries the rendered request.
	User string

	// Temperature controls sampling; 0 means the provider default.
	Temperature float64
}

// Completer abstracts the remote service so capabilities and tests can swap
// transports. Implementations return the raw reply text.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// ErrEmptyReply is returned when the service answers without any text.
var ErrEmptyReply = errors.New("empty reply")

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

const defaultMaxRetries = 3

func retriesOrDefault(n int) int {
	if n <= 0 {
		return defaultMaxRetries
	}
	return n
}

type retrying struct {
	next       Completer
	maxRetries int
}

// WithRetry wraps c so failed calls are retried with exponential backoff,
// up to maxRetries extra attempts (default 3 when maxRetries <= 0).
func WithRetry(c Completer, maxRetries int) Completer {
	return &retrying{next: c, maxRetries: retriesOrDefault(maxRetries)}
}

func (r *retrying) Complete(ctx context.Context, p Prompt) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := r.next.Complete(ctx, p)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if permanent(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", r.maxRetries, lastErr)
}

// permanent reports whether retrying err is pointless: an empty reply, a
// client-side HTTP error (bad credentials, malformed request), or a rate-limit
// or gateway status the transport already retried.
func permanent(err error) bool {
	if errors.Is(err, ErrEmptyReply) {
		return true
	}
	var he *HTTPError
	if !errors.As(err, &he) {
		return false
	}
	if httputil.Retryable(he.StatusCode) {
		return true
	}
	return he.StatusCode >= 400 && he.StatusCode < 500
}
