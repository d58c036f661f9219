// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/qa-synth/internal/dataset"
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Summarize a generated dataset",
	Long: `Stats reads a dataset (json, jsonl, or sqlite) and reports item counts by
difficulty and topic, score statistics, exact duplicate questions, and gaps
in the id sequence.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().String("format", "", "dataset format (default: inferred from extension)")
	statsCmd.Flags().Bool("json", false, "print the summary as JSON")
	statsCmd.Flags().Bool("yaml", false, "print the summary as YAML")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	explicit, _ := cmd.Flags().GetString("format")
	format, err := detectFormat(explicit, args[0])
	if err != nil {
		return err
	}
	items, err := dataset.Load(format, args[0])
	if err != nil {
		return err
	}
	summary := dataset.Summarize(items)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(summary)
	}
	summary.WriteText(out)
	return nil
}
