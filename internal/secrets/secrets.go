// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key name and the
// trimmed contents are the value.
//
// Recognized key files: deepseek-api-key, deepseek-api-base, gemini-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/qa-synth/pkg/types"
)

// Key file names.
const (
	DeepSeekAPIKey  = "deepseek-api-key"
	DeepSeekAPIBase = "deepseek-api-base"
	GeminiAPIKey    = "gemini-api-key"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is an empty map. Unreadable files are
// logged and skipped.
func Load(dir string, log *zap.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// Apply fills credentials missing from ai with values from secrets.
// Values already set by flags, environment, or config file win.
func Apply(ai *types.AIConfig, secrets map[string]string) {
	if ai.APIKey == "" {
		key := DeepSeekAPIKey
		if ai.Provider == types.ProviderGemini {
			key = GeminiAPIKey
		}
		ai.APIKey = secrets[key]
	}
	if ai.BaseURL == "" && ai.Provider != types.ProviderGemini {
		ai.BaseURL = secrets[DeepSeekAPIBase]
	}
}
