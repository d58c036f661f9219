// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/qa-synth/internal/dataset"
	"github.com/pdiddy/qa-synth/pkg/types"
)

// bindFlags binds each config key to the named flag in fs.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			panic(fmt.Sprintf("flag %q not defined", name))
		}
		if err := viper.BindPFlag(key, f); err != nil {
			panic(err)
		}
	}
}

// outputPath returns out.Path, or a name derived from the topic and target
// count under out.Dir.
func outputPath(out types.OutputConfig, topic string, numQuestions int) string {
	if out.Path != "" {
		return out.Path
	}
	slug := strings.ReplaceAll(strings.TrimSpace(topic), " ", "_")
	slug = strings.ReplaceAll(slug, string(filepath.Separator), "_")
	name := fmt.Sprintf("%s_teacher_%d.%s", slug, numQuestions, out.Format.Extension())
	return filepath.Join(out.Dir, name)
}

// detectFormat picks a format from an explicit name or the file extension.
func detectFormat(explicit, path string) (types.OutputFormat, error) {
	if explicit != "" {
		return dataset.ParseFormat(explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return types.FormatJSONL, nil
	case ".db", ".sqlite", ".sqlite3":
		return types.FormatSQLite, nil
	case ".json":
		return types.FormatJSON, nil
	}
	return "", fmt.Errorf("cannot infer format of %s; pass --format", path)
}
