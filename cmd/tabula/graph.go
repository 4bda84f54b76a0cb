package main

import (
	"fmt"

	"github.com/aretw0/tabula"
	"github.com/aretw0/tabula/internal/demo"
	"github.com/aretw0/tabula/internal/presentation/graph"
	"github.com/aretw0/tabula/pkg/game"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the flow graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the Pathfinder flow.
With --game the position of a stored game is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gameID, _ := cmd.Flags().GetString("game")
		if gameID == "" {
			engine, err := tabula.New(demo.Definition(game.ConfirmAlways))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(engine.Inspect(), nil))
			return nil
		}

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Sessions.Load(cmd.Context(), gameID)
		if err != nil {
			return err
		}
		overlay := &graph.Overlay{Position: state.Position}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(app.Engine.Inspect(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("game", "", "Highlight the position of a stored game")
}
