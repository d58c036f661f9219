// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/qa-synth/pkg/types"
)

// jsonArrayWriter collects items and writes them as one indented JSON array
// when closed.
type jsonArrayWriter struct {
	path  string
	items []types.QAItem
}

func (w *jsonArrayWriter) Append(items []types.QAItem) error {
	w.items = append(w.items, items...)
	return nil
}

func (w *jsonArrayWriter) Close() error {
	return WriteJSON(w.path, w.items)
}

// WriteJSON writes items as an indented JSON array. The file is replaced
// atomically through a temporary sibling.
func WriteJSON(path string, items []types.QAItem) error {
	if items == nil {
		items = []types.QAItem{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}

// ReadJSON reads a JSON array dataset.
func ReadJSON(path string) ([]types.QAItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	var items []types.QAItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return items, nil
}
