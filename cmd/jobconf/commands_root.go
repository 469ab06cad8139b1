package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/sourceplane/jobconf/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configFile   string
	outputFile   string
	outputFormat string
	logLevel     string
	logFormat    string
)

// logger is set up from the persistent flags before any command runs.
var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:           "jobconf",
	Short:         "Job configuration compiler: YAML → validated Config",
	Long:          "jobconf compiles job scheduler configuration, in the canonical or the legacy tagged dialect, into a validated and immutable configuration",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(logLevel, logFormat, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug/info/warn/error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatConsole, "Log format (json/console)")

	registerValidateCommand(rootCmd)
	registerDumpCommand(rootCmd)
	registerViewCommand(rootCmd)
	registerScheduleCommand(rootCmd)
	registerDebugCommand(rootCmd)
	registerWatchCommand(rootCmd)
}
