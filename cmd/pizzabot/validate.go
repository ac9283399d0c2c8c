package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/pizzabot"
	"github.com/aretw0/pizzabot/internal/bootstrap"
	"github.com/aretw0/pizzabot/internal/validator"
	"github.com/aretw0/pizzabot/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate [vocabulary.yaml]",
	Short: "Check the dialog and a vocabulary file for consistency",
	Long: `Loads the vocabulary (the built-in one when no file is given), then crawls
the transition table from 'start' and reports unknown or unreachable states.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) > 0 {
			path = args[0]
		}

		vocabulary, err := bootstrap.Classifier(path)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		bot := pizzabot.New(pizzabot.WithClassifier(vocabulary))
		if err := validator.ValidateTransitions(bot.Transitions(), domain.StateStart); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Dialog is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
