package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ethereal-go/ethereal/internal/config"
	"github.com/ethereal-go/ethereal/internal/logger"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/ethereal-go/ethereal/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir  string
	cfg     *config.Config
	network string
	verbose bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "ethereal",
	Short: "Blocks and events by date",
	Long: `ethereal — query EVM chains by calendar date instead of block number.

  Resolve any date or timestamp to the block mined closest to it,
  list the events a verified contract declares, and pull every
  occurrence of an event between two dates — proxies included.

Dates are accepted as epoch seconds ("1704067200") or calendar dates
("2024-01-01", "2024-01-01 15:04:05"), interpreted in UTC.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger.Init(&logger.Options{Level: level})

		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: ~/.ethereal)")
	rootCmd.PersistentFlags().StringVarP(&network, "network", "n", "", "chain to query (default: config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		blockCmd,
		abiCmd,
		eventsCmd,
		networkCmd,
		configCmd,
		cacheCmd,
	)
}
