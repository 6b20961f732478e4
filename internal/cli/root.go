// Package cli wires the cobra command tree for the energyiq binary.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Abhishek8211/energyiq/internal/config"
	"github.com/Abhishek8211/energyiq/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the energyiq CLI.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.Result

	cmd := &cobra.Command{
		Use:     "energyiq",
		Short:   "Conversational household energy calculator",
		Long:    "EnergyIQ: estimate household electricity consumption and cost through a chat-style dialogue",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			config.SetGlobal(cfg)

			result := setupLogging(cmd, cfg)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if logResult != nil {
				return logResult.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file path (default ~/.energyiq/config.yaml)")
	cmd.PersistentFlags().String("country", "", "country for the electricity tariff (default from config)")

	cmd.AddCommand(
		NewChatCmd(), NewRatesCmd(), NewHistoryCmd(),
		NewTipsCmd(), NewAskCmd(), NewExportCmd(), NewServeCmd(),
	)
	return cmd
}

const rootCmdExample = `  # Start the interactive chat calculator
  energyiq chat

  # Chat in plain line mode (no TUI), useful over ssh or in scripts
  energyiq chat --plain

  # Show the electricity rate table
  energyiq rates

  # List saved calculations
  energyiq history list

  # Personalized energy-saving tips for the latest calculation
  energyiq tips --ai

  # Ask a free-form electricity question
  energyiq ask "why is my bill so high?"

  # Export the latest calculation
  energyiq export csv --out report.csv

  # Run the HTTP API
  energyiq serve --port 9000`

// setupLogging configures logging from config and the --debug flag, and
// attaches the logger to the command context.
func setupLogging(cmd *cobra.Command, cfg config.Config) logging.Result {
	loggingCfg := cfg.Logging

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
		loggingCfg.File = ""
	}

	result := logging.New(loggingCfg)
	logger = logging.ComponentLogger(result.Logger, "cli")

	ctx := logging.WithContext(cmd.Context(), result.Logger)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")
	return result
}

// countryForCmd resolves the country from --country, falling back to
// the configured default.
func countryForCmd(cmd *cobra.Command) string {
	country, _ := cmd.Flags().GetString("country")
	if country == "" {
		country = config.Global().Country
	}
	return country
}
