// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/qa-synth/pkg/types"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 16 << 20

// JSONLWriter appends one JSON object per line.
type JSONLWriter struct {
	f *os.File
}

// OpenJSONL opens path for appending, truncating it first unless appendMode.
func OpenJSONL(path string, appendMode bool) (*JSONLWriter, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if !appendMode {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &JSONLWriter{f: f}, nil
}

// Append writes items as one chunk and syncs the file.
func (w *JSONLWriter) Append(items []types.QAItem) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return fmt.Errorf("encoding item %d: %w", it.ID, err)
		}
	}
	if _, err := w.f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing %s: %w", w.f.Name(), err)
	}
	return w.f.Sync()
}

// Close closes the file.
func (w *JSONLWriter) Close() error {
	return w.f.Close()
}

// ReadJSONL reads every record of a JSONL file. Blank lines are skipped.
func ReadJSONL(path string) ([]types.QAItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	var items []types.QAItem
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var it types.QAItem
		if err := json.Unmarshal(b, &it); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), line, err)
		}
		items = append(items, it)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return items, nil
}
