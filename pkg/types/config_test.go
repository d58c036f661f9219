// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		AI: AIConfig{Provider: ProviderOpenAI, MaxRetries: 3},
		Generation: GenerationConfig{
			NumQuestions: 200,
			MinScore:     Float64Ptr(7),
			Difficulties: DefaultDifficulties,
			FlushEvery:   50,
		},
		Output: OutputConfig{Format: FormatJSONL, Dir: "data/generated"},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty provider allowed", mutate: func(c *Config) { c.AI.Provider = "" }},
		{name: "nil min score allowed", mutate: func(c *Config) { c.Generation.MinScore = nil }},
		{name: "negative min score disables filter", mutate: func(c *Config) { c.Generation.MinScore = Float64Ptr(-1) }},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.AI.Provider = "anthropic" },
			wantErr: "ai.provider: anthropic is not one of openai gemini",
		},
		{
			name:    "zero questions",
			mutate:  func(c *Config) { c.Generation.NumQuestions = 0 },
			wantErr: "generation.num_questions: must be at least 1",
		},
		{
			name:    "min score above scale",
			mutate:  func(c *Config) { c.Generation.MinScore = Float64Ptr(11) },
			wantErr: "generation.min_score: must be at most 10",
		},
		{
			name:    "empty difficulties",
			mutate:  func(c *Config) { c.Generation.Difficulties = []Difficulty{} },
			wantErr: "generation.difficulties: must have at least 1 entries",
		},
		{
			name:    "unknown difficulty",
			mutate:  func(c *Config) { c.Generation.Difficulties = []Difficulty{DifficultyEasy, "expert"} },
			wantErr: "generation.difficulties[1]: expert is not one of easy medium hard",
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Output.Format = "csv" },
			wantErr: "output.format: csv is not one of json jsonl sqlite",
		},
		{
			name:    "negative flush interval",
			mutate:  func(c *Config) { c.Generation.FlushEvery = -5 },
			wantErr: "generation.flush_every: must be at least 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseDifficulties(t *testing.T) {
	got, err := ParseDifficulties([]string{" Easy", "hard "})
	require.NoError(t, err)
	assert.Equal(t, []Difficulty{DifficultyEasy, DifficultyHard}, got)

	_, err = ParseDifficulties(nil)
	assert.Error(t, err)

	_, err = ParseDifficulties([]string{"easy", "expert"})
	assert.Error(t, err)
}

func TestOutputFormat(t *testing.T) {
	assert.Equal(t, "jsonl", FormatJSONL.Extension())
	assert.Equal(t, "db", FormatSQLite.Extension())
	assert.Equal(t, "json", FormatJSON.Extension())
	assert.True(t, FormatJSONL.SupportsAppend())
	assert.True(t, FormatSQLite.SupportsAppend())
	assert.False(t, FormatJSON.SupportsAppend())
}

func TestAIConfigRemote(t *testing.T) {
	assert.False(t, AIConfig{}.Remote())
	assert.False(t, AIConfig{APIKey: "k"}.Remote(), "openai needs a base URL")
	assert.True(t, AIConfig{APIKey: "k", BaseURL: "https://api.deepseek.com/v1"}.Remote())
	assert.True(t, AIConfig{Provider: ProviderGemini, APIKey: "k"}.Remote())
}
