package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	debug      bool
)

func setupLogger(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: debugMode,
		Level:     level,
	})))
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "interviewprep",
		Short:         "Practice interview questions with spaced repetition",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(debug)
		},
	}
	flags := rootCommand.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path (default is ./config.yml or $HOME/.config/interviewprep/config.yml)")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")

	rootCommand.AddCommand(newNextCommand())
	rootCommand.AddCommand(newReviewCommand())
	rootCommand.AddCommand(newListCommand())
	rootCommand.AddCommand(newDeleteCommand())
	rootCommand.AddCommand(newImportCommand())
	rootCommand.AddCommand(newSeedCommand())
	rootCommand.AddCommand(newPrefsCommand())
	rootCommand.AddCommand(newExportCommand())
	rootCommand.AddCommand(newDaemonCommand())
	return rootCommand
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
