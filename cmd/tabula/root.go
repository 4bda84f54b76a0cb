package main

import (
	"fmt"
	"os"

	"github.com/aretw0/tabula/internal/cli"
	"github.com/aretw0/tabula/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tabula",
	Short: "Tabula is a stateless rules engine for turn-based games",
	Long: `Tabula hosts turn-based games whose rules are a flow of steps, loops and
player actions. Every move is validated against the serialized game state,
so games can be stored anywhere and replayed exactly.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("store", "", "Game store: memory, file, redis or sqlite (overrides config)")
	rootCmd.PersistentFlags().String("store-path", "", "Directory of the file store or database of the sqlite store")
	rootCmd.PersistentFlags().Bool("debug", false, "Log every flow node the engine enters")
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("store") {
		cfg.Store.Kind, _ = cmd.Flags().GetString("store")
	}
	if cmd.Flags().Changed("store-path") {
		cfg.Store.Path, _ = cmd.Flags().GetString("store-path")
	}
	if cmd.Flags().Changed("addr") {
		cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
	}
	return cfg, cfg.Validate()
}

func newApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.NewApp(cfg, cli.WithDebug(debug))
}
