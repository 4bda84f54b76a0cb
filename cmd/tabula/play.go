package main

import (
	"errors"
	"os"

	"github.com/aretw0/tabula/internal/cli"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [player names...]",
	Short: "Play Pathfinder in the terminal",
	Long: `Starts a hot-seat game of Pathfinder: every player answers in turn on this terminal.
Type 'quit' to leave; the game stays in the configured store and can be resumed with --game.`,
	Example: `  tabula play Ada Bo
  tabula play --store file --game 6f1c...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		gameID, _ := cmd.Flags().GetString("game")
		seed, _ := cmd.Flags().GetString("seed")
		quiet, _ := cmd.Flags().GetBool("quiet")
		if gameID == "" && len(args) == 0 {
			args = []string{"Hiker"}
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err = cli.Play(ctx, app, os.Stdin, os.Stdout, cli.PlayOptions{
			Players: args,
			Seed:    seed,
			GameID:  gameID,
			Quiet:   quiet,
			Profile: termenv.ColorProfile(),
		})
		if errors.Is(err, cli.ErrQuit) || ctx.Signal() != nil {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("game", "", "Resume a stored game")
	playCmd.Flags().String("seed", "", "Random seed, to replay the same table")
	playCmd.Flags().BoolP("quiet", "q", false, "Skip the banner and the rules")
}
