package main

import (
	"fmt"

	"github.com/aretw0/tabula/internal/demo"
	"github.com/aretw0/tabula/internal/validator"
	"github.com/aretw0/tabula/pkg/game"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the game definition for consistency",
	Long:  `Freezes the Pathfinder definition and reports unused actions and loops that can never end.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validator.ValidateDefinition(demo.Definition(game.ConfirmAlways)); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Definition is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
