// Package main provides the profiledb binary: a tool for inspecting and
// validating profile documents saved by hosts embedding the profiler.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/profiledb/profiledb/internal/cli/inspect"
	"github.com/profiledb/profiledb/internal/logging"
	"github.com/profiledb/profiledb/pkg/profiler"
	"github.com/profiledb/profiledb/pkg/version"
)

func main() {
	// The tool honors the same environment variables as embedded
	// profilers, so PROFILEDB_LOG_LEVEL=debug works in both worlds.
	cfg := profiler.ConfigFromEnv(profiler.DefaultConfig())
	logger := logging.NewWithComponent(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.Pretty,
	}, "profiledb")

	rootCmd := &cobra.Command{
		Use:           "profiledb",
		Short:         "profiledb - inspect saved profiling documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	inspect.RegisterCommands(rootCmd, logger)
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("profiledb version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}
