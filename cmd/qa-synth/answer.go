// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/qa-synth/internal/capability"
)

var answerCmd = &cobra.Command{
	Use:   "answer QUESTION...",
	Short: "Ask the teacher model to answer a single question",
	Long: `Answer sends one free-form question to the teacher model and prints a
step-by-step answer with citations of the relevant standards or rules.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnswer,
}

func init() {
	rootCmd.AddCommand(answerCmd)
}

func runAnswer(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("question must not be empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	provider, err := capability.New(cmd.Context(), &cfg.AI, logger)
	if err != nil {
		return err
	}

	answer, err := provider.Answer(cmd.Context(), question)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
