// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the process logger: a console core on stderr teed
// with an optional rotated JSON file core. Fields whose keys look like
// credentials are redacted before any core sees them.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pdiddy/qa-synth/pkg/types"
)

// Redacted replaces the value of a sensitive field.
const Redacted = "[REDACTED]"

// Rotation limits for the log file.
const (
	maxSizeMB  = 10
	maxBackups = 5
	maxAgeDays = 30
)

// New returns a logger for cfg writing console output to stderr.
func New(cfg types.LogConfig) (*zap.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit console writer.
func NewWithWriter(cfg types.LogConfig, console io.Writer) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var consoleEnc zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if f, ok := console.(*os.File); !ok || !isTerminal(f) {
			ec.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		consoleEnc = zapcore.NewConsoleEncoder(ec)
	case "json":
		consoleEnc = zapcore.NewJSONEncoder(fileEncoderConfig())
	default:
		return nil, fmt.Errorf("unknown log format %q (want console or json)", cfg.Format)
	}

	cores := []zapcore.Core{
		&redactCore{Core: zapcore.NewCore(consoleEnc, zapcore.Lock(zapcore.AddSync(console)), level)},
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		// The file keeps debug detail regardless of the console level.
		cores = append(cores, &redactCore{Core: zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoderConfig()),
			zapcore.AddSync(rotator),
			zap.DebugLevel,
		)})
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func fileEncoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.MessageKey = "message"
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return ec
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zap.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return l, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// redactCore masks sensitive fields on both With and Write paths. Each
// leaf core is wrapped separately so Check keeps its own level.
type redactCore struct {
	zapcore.Core
}

func (c *redactCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactCore{Core: c.Core.With(redact(fields))}
}

func (c *redactCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c *redactCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(e, redact(fields))
}

func redact(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, f := range fields {
		if !IsSensitive(f.Key) {
			continue
		}
		if out == nil {
			out = append([]zapcore.Field(nil), fields...)
		}
		out[i] = zap.String(f.Key, Redacted)
	}
	if out == nil {
		return fields
	}
	return out
}

// IsSensitive reports whether a field key names a credential.
func IsSensitive(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, s := range []string{"token", "authorization", "password", "secret", "api_key", "apikey"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}
