// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/qa-synth/internal/dataset"
	"github.com/pdiddy/qa-synth/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export IN OUT",
	Short: "Convert a dataset between json, jsonl, and sqlite",
	Long: `Export reads every record from IN and writes it to OUT, replacing OUT.
Formats are inferred from the file extensions unless --from or --to is given.
Records can be filtered by difficulty and minimum score.`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("from", "", "input format (default: inferred from extension)")
	exportCmd.Flags().String("to", "", "output format (default: inferred from extension)")
	exportCmd.Flags().String("difficulty", "", "keep only this difficulty")
	exportCmd.Flags().Float64("min-score", -1, "keep only items scored at least this (negative keeps all)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]
	if in == out {
		return errors.New("input and output must differ")
	}
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")
	from, err := detectFormat(fromFlag, in)
	if err != nil {
		return err
	}
	to, err := detectFormat(toFlag, out)
	if err != nil {
		return err
	}

	var difficulty types.Difficulty
	if s, _ := cmd.Flags().GetString("difficulty"); s != "" {
		if difficulty, err = types.ParseDifficulty(s); err != nil {
			return err
		}
	}
	minScore, _ := cmd.Flags().GetFloat64("min-score")

	items, err := dataset.Load(from, in)
	if err != nil {
		return err
	}
	kept := filterItems(items, difficulty, minScore)

	sink, err := dataset.Open(to, out, false)
	if err != nil {
		return err
	}
	if err := errors.Join(sink.Append(kept), sink.Close()); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d of %d samples to %s\n", len(kept), len(items), out)
	return nil
}

// filterItems keeps items matching difficulty (when set) and scored at least
// minScore (when non-negative). Unscored items fail a score filter.
func filterItems(items []types.QAItem, difficulty types.Difficulty, minScore float64) []types.QAItem {
	kept := make([]types.QAItem, 0, len(items))
	for _, it := range items {
		if difficulty != "" && it.Difficulty != difficulty {
			continue
		}
		if minScore >= 0 && (it.Score == nil || *it.Score < minScore) {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}
