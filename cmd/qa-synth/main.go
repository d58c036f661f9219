// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the qa-synth CLI, which synthesizes
// exam-style question/answer datasets with a teacher model and persists
// them as JSON, JSONL, or SQLite.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/qa-synth/internal/capability"
	"github.com/pdiddy/qa-synth/internal/logging"
	"github.com/pdiddy/qa-synth/internal/secrets"
	"github.com/pdiddy/qa-synth/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// logger is built in PersistentPreRunE from the log.* settings.
	logger = zap.NewNop()

	// loadedSecrets holds credentials read from .secrets/ at startup.
	loadedSecrets map[string]string
)

// rootCmd is the base command for the qa-synth CLI.
var rootCmd = &cobra.Command{
	Use:   "qa-synth",
	Short: "Synthesize exam-style question/answer datasets with a teacher model",
	Long: `qa-synth distills question/answer training data from a teacher model.
For a topic it plans an outline, writes questions across difficulties,
scores each one with a reviewer, and keeps the ones that pass. Progress is
checkpointed so long runs can be resumed with --append.

Without an API key every capability returns a labeled placeholder, which is
enough to exercise the pipeline end to end.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var logCfg types.LogConfig
		if err := viper.UnmarshalKey("log", &logCfg); err != nil {
			return fmt.Errorf("reading log config: %w", err)
		}
		l, err := logging.New(logCfg)
		if err != nil {
			return err
		}
		logger = l
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", zap.String("path", f))
		}

		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("names", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./qa-synth.yaml or ~/.config/qa-synth/config.yaml)")
	pf.String("log-level", "", "console log level: debug, info, warn, error")
	pf.String("log-format", "", "console log format: console or json")
	pf.String("log-file", "", "also write JSON logs to this file (rotated)")
	pf.String("provider", "", "remote provider: openai or gemini")
	pf.String("model", "", "model identifier (default deepseek-chat, or gemini-2.5-flash for gemini)")
	pf.String("base-url", "", "API base URL for OpenAI-compatible providers")

	bindFlags(pf, map[string]string{
		"log.level":   "log-level",
		"log.format":  "log-format",
		"log.file":    "log-file",
		"ai.provider": "provider",
		"ai.model":    "model",
		"ai.base_url": "base-url",
	})
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("qa-synth")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "qa-synth"))
		}
	}

	setDefaults()

	viper.SetEnvPrefix("QA_SYNTH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Provider variables used by existing deployments.
	_ = viper.BindEnv("ai.api_key", "QA_SYNTH_AI_API_KEY", "DEEPSEEK_API_KEY")
	_ = viper.BindEnv("ai.base_url", "QA_SYNTH_AI_BASE_URL", "DEEPSEEK_API_BASE")
	_ = viper.BindEnv("ai.model", "QA_SYNTH_AI_MODEL", "DEEPSEEK_MODEL")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

func setDefaults() {
	viper.SetDefault("ai.provider", string(types.ProviderOpenAI))
	viper.SetDefault("ai.model", "")
	viper.SetDefault("ai.base_url", "")
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.max_retries", 3)
	viper.SetDefault("ai.timeout", 120*time.Second)
	viper.SetDefault("ai.user_agent", "qa-synth/"+version)
	viper.SetDefault("ai.persona", capability.DefaultPersona)

	viper.SetDefault("generation.num_questions", 200)
	viper.SetDefault("generation.min_score", 7.0)
	viper.SetDefault("generation.max_attempts", 0)
	viper.SetDefault("generation.difficulties", []string{"easy", "medium", "hard"})
	viper.SetDefault("generation.use_outline", false)
	viper.SetDefault("generation.outline_file", "")
	viper.SetDefault("generation.start_id", 0)
	viper.SetDefault("generation.flush_every", 50)

	viper.SetDefault("output.format", string(types.FormatJSONL))
	viper.SetDefault("output.path", "")
	viper.SetDefault("output.dir", "data/generated")
	viper.SetDefault("output.append", false)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.file", "")
}

// loadConfig assembles the full configuration from defaults, config file,
// environment, flags, and .secrets/, in increasing order of precedence
// except that secrets only fill gaps.
func loadConfig() (*types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if cfg.AI.Provider == types.ProviderGemini && cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	secrets.Apply(&cfg.AI, loadedSecrets)

	if d := cfg.Generation.Difficulties; len(d) > 0 {
		labels := make([]string, len(d))
		for i, l := range d {
			labels[i] = string(l)
		}
		parsed, err := types.ParseDifficulties(labels)
		if err != nil {
			return nil, err
		}
		cfg.Generation.Difficulties = parsed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
