package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blossomer",
		Short: "Blossomer - CLI for generating and evaluating GTM artifacts",
		Long: `Blossomer is a command-line tool for generating go-to-market artifacts
(outbound emails, buyer personas) and evaluating their quality.

The eval harness runs LLM-generated outputs through deterministic structural
checks and LLM judge categories, producing timestamped result artifacts.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newEvalCommand())
	cmd.AddCommand(newDocsCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
