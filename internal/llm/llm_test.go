// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/qa-synth/internal/httputil"
	"github.com/pdiddy/qa-synth/pkg/types"
)

func TestMain(m *testing.M) {
	backoffBase = time.Millisecond
	httputil.RetryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

// failNTimes fails the first n calls, then returns reply.
type failNTimes struct {
	n     int
	calls int
	reply string
	err   error
}

func (f *failNTimes) Complete(_ context.Context, _ Prompt) (string, error) {
	f.calls++
	if f.calls <= f.n {
		if f.err != nil {
			return "", f.err
		}
		return "", fmt.Errorf("transient error (call %d)", f.calls)
	}
	return f.reply, nil
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		err       error
		retries   int
		wantCalls int
		wantErr   bool
	}{
		{name: "first call succeeds", failures: 0, retries: 3, wantCalls: 1},
		{name: "succeeds after two failures", failures: 2, retries: 3, wantCalls: 3},
		{name: "exhausts retries", failures: 10, retries: 2, wantCalls: 3, wantErr: true},
		{name: "default retries", failures: 10, retries: 0, wantCalls: 4, wantErr: true},
		{
			name:      "permanent http error is not retried",
			failures:  10,
			err:       &HTTPError{StatusCode: http.StatusUnauthorized, Body: "bad key"},
			retries:   3,
			wantCalls: 1,
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &failNTimes{n: tt.failures, err: tt.err, reply: "ok"}
			got, err := WithRetry(f, tt.retries).Complete(context.Background(), Prompt{User: "hi"})
			assert.Equal(t, tt.wantCalls, f.calls)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", got)
		})
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &failNTimes{n: 10}
	_, err := WithRetry(f, 3).Complete(ctx, Prompt{User: "hi"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenAIComplete(t *testing.T) {
	requests := make(chan chatRequest, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "qa-synth/test", r.Header.Get("User-Agent"))
		var cr chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&cr))
		requests <- cr
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"  Question: a\nAnswer: b  "}}]}`)
	}))
	defer ts.Close()

	o := NewOpenAI(types.AIConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "qa-synth/test"},
		BaseURL:    ts.URL + "/v1/",
		APIKey:     "sk-test",
		Model:      "deepseek-chat",
	})

	text, err := o.Complete(context.Background(), Prompt{System: "sys", User: "usr", Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "Question: a\nAnswer: b", text)

	got := <-requests
	assert.Equal(t, "deepseek-chat", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "sys"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "usr"}, got.Messages[1])
}

func TestOpenAICompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error":"bad key"}`,
			wantErr: func(t *testing.T, err error) {
				var he *HTTPError
				require.True(t, errors.As(err, &he))
				assert.Equal(t, http.StatusUnauthorized, he.StatusCode)
			},
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyReply)
			},
		},
		{
			name:   "invalid json",
			status: http.StatusOK,
			body:   `not json`,
			wantErr: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "decoding chat response")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			o := &OpenAI{BaseURL: ts.URL, APIKey: "k", Model: "m", Client: ts.Client()}
			_, err := o.Complete(context.Background(), Prompt{User: "x"})
			require.Error(t, err)
			tt.wantErr(t, err)
		})
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), types.AIConfig{Provider: types.ProviderGemini})
	require.Error(t, err)
}

func TestOpenAIRetryBudget(t *testing.T) {
	tests := []struct {
		name     string
		retries  int
		wantHits int32
	}{
		{name: "one retry", retries: 1, wantHits: 2},
		{name: "configured retries", retries: 3, wantHits: 4},
		{name: "default retries", retries: 0, wantHits: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer ts.Close()

			cfg := types.AIConfig{
				HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second},
				BaseURL:    ts.URL,
				APIKey:     "k",
				MaxRetries: tt.retries,
			}
			_, err := WithRetry(NewOpenAI(cfg), cfg.MaxRetries).Complete(context.Background(), Prompt{User: "x"})

			var he *HTTPError
			require.True(t, errors.As(err, &he))
			assert.Equal(t, http.StatusServiceUnavailable, he.StatusCode)
			assert.Equal(t, tt.wantHits, hits.Load())
		})
	}
}

func TestWithRetryRetriesServerErrors(t *testing.T) {
	f := &failNTimes{n: 1, err: &HTTPError{StatusCode: http.StatusInternalServerError}, reply: "ok"}
	got, err := WithRetry(f, 2).Complete(context.Background(), Prompt{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, f.calls)
}

func TestWithRetryDoesNotRetryEmptyReply(t *testing.T) {
	f := &failNTimes{n: 5, err: ErrEmptyReply}
	_, err := WithRetry(f, 3).Complete(context.Background(), Prompt{User: "x"})
	assert.ErrorIs(t, err, ErrEmptyReply)
	assert.Equal(t, 1, f.calls)
}
