// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blinklabs-io/governor/internal/config"
	"github.com/blinklabs-io/governor/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const (
	programName = "governor"
)

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...),
		"component", programName,
	)
}

var (
	globalFlags = struct {
		dataDir     string
		weightsFile string
		from        string
		block       uint64
		timestamp   uint64
		debug       bool
	}{}
	configFile string
)

// commonRun sets up logging to w. Commands that print results log to stderr
// so their output stays parseable.
func commonRun(w io.Writer) *slog.Logger {
	// Configure logger
	logLevel := slog.LevelInfo
	addSource := false
	if globalFlags.debug {
		logLevel = slog.LevelDebug
		addSource = true
	}
	logger := slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource: addSource,
			Level:     logLevel,
		}),
	)
	slog.SetDefault(logger)
	// Configure max processes with our logger wrapper, toss undo func
	_, err := maxprocs.Set(maxprocs.Logger(slogPrintf))
	if err != nil {
		// If we hit this, something really wrong happened
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Debug(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger
}

func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Vetoable token-weighted governance",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			serveRun(cmd, args, cfg)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.dataDir, "data-dir", "", "database directory (overrides config)")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.weightsFile, "weights", "", "voting-weight snapshot YAML file (overrides config)")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.from, "from", "", "identity of the caller")
	rootCmd.PersistentFlags().
		Uint64Var(&globalFlags.block, "block", 0, "current block number (default derived from wall clock)")
	rootCmd.PersistentFlags().
		Uint64Var(&globalFlags.timestamp, "timestamp", 0, "current block timestamp in seconds (default now)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with command line flags
		if globalFlags.dataDir != "" {
			cfg.DatabasePath = globalFlags.dataDir
		}
		if globalFlags.weightsFile != "" {
			cfg.WeightsFile = globalFlags.weightsFile
		}

		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	// Subcommands
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(versionCommand())
	rootCmd.AddCommand(
		proposeCommand(),
		voteCommand(),
		cancelCommand(),
		queueCommand(),
		executeCommand(),
		vetoCommand(),
		setVetoerCommand(),
		burnVetoPowerCommand(),
	)
	rootCmd.AddCommand(
		stateCommand(),
		proposalCommand(),
		proposalsCommand(),
		receiptCommand(),
		vetoerCommand(),
		latestCommand(),
	)

	return rootCmd
}

func main() {
	// Execute cobra command
	if err := rootCommand().Execute(); err != nil {
		// NOTE: we purposely don't display the error, since cobra will have already displayed it
		os.Exit(1)
	}
}
