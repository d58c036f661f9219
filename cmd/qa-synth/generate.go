// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/qa-synth/internal/capability"
	"github.com/pdiddy/qa-synth/internal/dataset"
	"github.com/pdiddy/qa-synth/internal/outline"
	"github.com/pdiddy/qa-synth/internal/progress"
	"github.com/pdiddy/qa-synth/internal/synth"
	"github.com/pdiddy/qa-synth/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a scored question/answer dataset for a topic",
	Long: `Generate asks the teacher model for question/answer pairs on a topic,
cycling through outline sections and difficulties, scores each pair with the
reviewer, and keeps pairs that meet --min-score and are not exact duplicates.

Accepted items are appended to the output every --flush-every items (JSONL and
SQLite), so an interrupted run keeps its progress. Re-run with --append to
continue the same file; ids resume after the highest id already present.

A negative --min-score disables the score filter.`,
	RunE: runGenerate,
}

var generateFlagKeys = map[string]string{
	"generation.num_questions": "num-questions",
	"generation.min_score":     "min-score",
	"generation.max_attempts":  "max-attempts",
	"generation.difficulties":  "difficulties",
	"generation.use_outline":   "use-outline",
	"generation.outline_file":  "outline-file",
	"generation.start_id":      "start-id",
	"generation.flush_every":   "flush-every",
	"output.format":            "format",
	"output.path":              "output",
	"output.dir":               "output-dir",
	"output.append":            "append",
}

func init() {
	f := generateCmd.Flags()
	f.String("topic", "", "topic to generate questions for (required)")
	f.Int("num-questions", 200, "target number of accepted samples")
	f.Float64("min-score", 7.0, "reviewer score threshold; lower-scored samples are dropped")
	f.Int("max-attempts", 0, "maximum generation attempts (default num-questions * 5)")
	f.StringSlice("difficulties", []string{"easy", "medium", "hard"}, "difficulty cycle")
	f.Bool("use-outline", false, "plan a multi-section outline with teaching notes")
	f.String("outline-file", "", "YAML outline to use instead of planning one")
	f.String("format", "jsonl", "output format: json, jsonl, or sqlite")
	f.String("output", "", "output file (takes precedence over --output-dir)")
	f.String("output-dir", "data/generated", "directory for derived output file names")
	f.Bool("append", false, "append to an existing jsonl or sqlite output")
	f.Int("start-id", 0, "first sample id (default 1, or last id + 1 with --append)")
	f.Int("flush-every", 50, "append accepted samples to the output every N samples")
	_ = generateCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	bindFlags(cmd.Flags(), generateFlagKeys)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	topic, _ := cmd.Flags().GetString("topic")
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return errors.New("--topic must not be empty")
	}

	gen := cfg.Generation
	format, err := dataset.ParseFormat(string(cfg.Output.Format))
	if err != nil {
		return err
	}
	cfg.Output.Format = format
	if err := dataset.CheckAppend(format, cfg.Output.Append); err != nil {
		return err
	}

	var preset []types.OutlineNode
	if gen.OutlineFile != "" {
		preset, err = outline.LoadFile(gen.OutlineFile)
		if err != nil {
			return err
		}
		if len(preset) == 0 {
			return fmt.Errorf("outline file %s has no sections", gen.OutlineFile)
		}
	}

	path := outputPath(cfg.Output, topic, gen.NumQuestions)
	var existing dataset.Existing
	if cfg.Output.Append {
		existing, err = dataset.Inspect(format, path)
		if err != nil {
			return err
		}
	}
	startID := gen.StartID
	if startID == 0 {
		startID = existing.NextID()
	}

	minScore := gen.MinScore
	if minScore != nil && *minScore < 0 {
		minScore = nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := capability.New(ctx, &cfg.AI, logger)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := logger.With(zap.String("run_id", runID), zap.String("topic", topic))

	sink, err := dataset.Open(format, path, cfg.Output.Append)
	if err != nil {
		return err
	}
	if rr, ok := sink.(dataset.RunRecorder); ok {
		if err := rr.BeginRun(runID, topic, provider.Name()); err != nil {
			sink.Close()
			return err
		}
	}

	log.Info("generation started",
		zap.String("provider", provider.Name()),
		zap.String("output", path),
		zap.String("format", string(format)),
		zap.Int("start_id", startID),
		zap.Int("existing", existing.Count),
	)

	var counter progress.Counter
	items, buildErr := synth.NewFromProvider(provider).Build(ctx, topic, synth.Options{
		NumQuestions: gen.NumQuestions,
		Difficulties: gen.Difficulties,
		MinScore:     minScore,
		MaxAttempts:  gen.MaxAttempts,
		UseOutline:   gen.UseOutline,
		Outline:      preset,
		StartID:      startID,
		FlushEvery:   gen.FlushEvery,
		Flush:        sink.Append,
		Progress:     progress.Tee(counter.Observe, progress.Logger(log)),
	})
	if err := errors.Join(buildErr, sink.Close()); err != nil {
		log.Error("generation stopped", zap.Int("accepted", len(items)), zap.Error(err))
		return fmt.Errorf("generation stopped after %d samples (saved to %s): %w", len(items), path, err)
	}

	log.Info("generation complete",
		zap.Int("accepted", counter.Accepted),
		zap.Int("rejected_low_score", counter.RejectedScore),
		zap.Int("rejected_duplicate", counter.RejectedDuplicate),
		zap.Int("attempts", counter.Attempts),
	)
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Saved %d samples to %s (start_id=%d, existing=%d, kept ~%.1f%% after score filter)\n",
		len(items), path, startID, existing.Count, counter.KeptPercent(gen.NumQuestions))
	return nil
}
