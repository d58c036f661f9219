// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Provider identifies the remote text-generation service.
type Provider string

const (
	// ProviderOpenAI speaks the OpenAI chat-completions protocol
	// (DeepSeek and other compatible endpoints).
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// HTTPConfig holds shared HTTP settings for remote calls.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// AIConfig holds settings for the text-generation capabilities.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the remote transport: openai or gemini.
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider" validate:"omitempty,oneof=openai gemini"`

	// Model is the model identifier (e.g. "deepseek-chat").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL is the API root for OpenAI-compatible providers
	// (e.g. "https://api.deepseek.com/v1").
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey is the authentication key. When empty (or BaseURL is empty for
	// openai) the offline capabilities are used.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for failed calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`

	// Persona names the course the prompts are written for
	// (e.g. "certified public accountant (CPA) exam").
	Persona string `json:"persona" yaml:"persona" mapstructure:"persona"`
}

// Remote reports whether enough credentials are present for a remote provider.
func (c AIConfig) Remote() bool {
	if c.APIKey == "" {
		return false
	}
	if c.Provider == ProviderGemini {
		return true
	}
	return c.BaseURL != ""
}

// OutputFormat selects how a dataset is persisted.
type OutputFormat string

const (
	FormatJSON   OutputFormat = "json"
	FormatJSONL  OutputFormat = "jsonl"
	FormatSQLite OutputFormat = "sqlite"
)

// Extension returns the file extension used for the format.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatJSONL:
		return "jsonl"
	case FormatSQLite:
		return "db"
	default:
		return "json"
	}
}

// SupportsAppend reports whether records can be appended incrementally.
func (f OutputFormat) SupportsAppend() bool {
	return f == FormatJSONL || f == FormatSQLite
}

// GenerationConfig holds settings for one dataset generation run.
type GenerationConfig struct {
	// NumQuestions is the target count of accepted items (default 200).
	NumQuestions int `json:"num_questions" yaml:"num_questions" mapstructure:"num_questions" validate:"gte=1"`

	// MinScore drops items the reviewer scores below it. Nil disables filtering.
	MinScore *float64 `json:"min_score,omitempty" yaml:"min_score,omitempty" mapstructure:"min_score" validate:"omitempty,lte=10"`

	// MaxAttempts caps generation attempts (default NumQuestions*5).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=0"`

	// Difficulties is the difficulty cycle (default easy, medium, hard).
	Difficulties []Difficulty `json:"difficulties" yaml:"difficulties" mapstructure:"difficulties" validate:"min=1,dive,oneof=easy medium hard"`

	// UseOutline enables outline planning and teaching notes.
	UseOutline bool `json:"use_outline" yaml:"use_outline" mapstructure:"use_outline"`

	// OutlineFile is an optional YAML outline used instead of the planner.
	OutlineFile string `json:"outline_file,omitempty" yaml:"outline_file,omitempty" mapstructure:"outline_file"`

	// StartID is the first id assigned (default 1, or last id + 1 on append).
	StartID int `json:"start_id" yaml:"start_id" mapstructure:"start_id" validate:"gte=0"`

	// FlushEvery commits accepted items to the sink every N items (default 50).
	FlushEvery int `json:"flush_every" yaml:"flush_every" mapstructure:"flush_every" validate:"gte=0"`
}

// OutputConfig holds settings for dataset persistence.
type OutputConfig struct {
	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format" validate:"oneof=json jsonl sqlite"`

	// Path is the output file. When empty, a name is derived under Dir.
	Path string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`

	// Dir is the output directory (default "data/generated").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Append continues an existing JSONL or SQLite dataset.
	Append bool `json:"append" yaml:"append" mapstructure:"append"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum console level: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "console" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=console json"`

	// File, when set, receives JSON logs rotated by size.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// Config is the full configuration, built once at process entry.
type Config struct {
	AI         AIConfig         `json:"ai" yaml:"ai" mapstructure:"ai"`
	Generation GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	Output     OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}
