// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset persists accepted QA items and reads them back.
//
// Three formats are supported: JSONL (one record per line, appendable),
// SQLite (appendable, records the run each item came from), and a JSON
// array (written once when the sink closes). Sinks append in the order
// they receive items and never deduplicate.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/qa-synth/pkg/types"
)

var (
	// ErrAppendUnsupported is returned when append mode is requested for a
	// format that can only be written whole.
	ErrAppendUnsupported = errors.New("append is only supported for jsonl and sqlite output")

	// ErrUnknownFormat is returned for an unrecognized output format.
	ErrUnknownFormat = errors.New("unknown dataset format")
)

// Sink receives committed chunks of accepted items.
type Sink interface {
	Append(items []types.QAItem) error
	Close() error
}

// RunRecorder is implemented by sinks that keep per-run metadata.
type RunRecorder interface {
	BeginRun(runID, topic, provider string) error
}

// ParseFormat validates a format name.
func ParseFormat(s string) (types.OutputFormat, error) {
	switch f := types.OutputFormat(s); f {
	case types.FormatJSON, types.FormatJSONL, types.FormatSQLite:
		return f, nil
	}
	return "", fmt.Errorf("%w %q (want json, jsonl, or sqlite)", ErrUnknownFormat, s)
}

// CheckAppend reports a configuration error when appendMode is requested
// for a format that cannot be appended to. Callers run it before any
// generation work starts.
func CheckAppend(format types.OutputFormat, appendMode bool) error {
	if appendMode && !format.SupportsAppend() {
		return fmt.Errorf("%w (got %s)", ErrAppendUnsupported, format)
	}
	return nil
}

// Open returns a sink writing format to path. Without appendMode any
// existing dataset at path is replaced.
func Open(format types.OutputFormat, path string, appendMode bool) (Sink, error) {
	if err := CheckAppend(format, appendMode); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	switch format {
	case types.FormatJSONL:
		return OpenJSONL(path, appendMode)
	case types.FormatSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		if !appendMode {
			if err := s.Reset(); err != nil {
				s.Close()
				return nil, err
			}
		}
		return s, nil
	case types.FormatJSON:
		return &jsonArrayWriter{path: path}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
}

// Load reads every record of a dataset.
func Load(format types.OutputFormat, path string) ([]types.QAItem, error) {
	switch format {
	case types.FormatJSONL:
		return ReadJSONL(path)
	case types.FormatJSON:
		return ReadJSON(path)
	case types.FormatSQLite:
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("opening dataset: %w", err)
		}
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.All()
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
}

// Existing describes a dataset already on disk.
type Existing struct {
	Count  int
	LastID int
}

// NextID returns the start id that continues this dataset without collision.
func (e Existing) NextID() int {
	return e.LastID + 1
}

// LastID returns the highest id stored at path, 0 when the file is absent.
func LastID(format types.OutputFormat, path string) (int, error) {
	e, err := Inspect(format, path)
	return e.LastID, err
}

// Inspect reports the record count and highest id of the dataset at path.
// A missing file is an empty dataset.
func Inspect(format types.OutputFormat, path string) (Existing, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Existing{}, nil
		}
		return Existing{}, fmt.Errorf("stat dataset %s: %w", path, err)
	}

	if format == types.FormatSQLite {
		s, err := OpenSQLite(path)
		if err != nil {
			return Existing{}, err
		}
		defer s.Close()
		n, err := s.Count()
		if err != nil {
			return Existing{}, err
		}
		last, err := s.LastID()
		if err != nil {
			return Existing{}, err
		}
		return Existing{Count: n, LastID: last}, nil
	}

	items, err := Load(format, path)
	if err != nil {
		return Existing{}, err
	}
	e := Existing{Count: len(items)}
	for _, it := range items {
		if it.ID > e.LastID {
			e.LastID = it.ID
		}
	}
	return e, nil
}
