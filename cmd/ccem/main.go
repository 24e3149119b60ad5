package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peguesj/ccem/internal/logging"
	"github.com/peguesj/ccem/internal/prefs"
)

var version = "0.3.1"

var (
	flagVerbose  bool
	flagLogLevel string

	toolPrefs *prefs.Prefs
)

var rootCmd = &cobra.Command{
	Use:   "ccem",
	Short: "Manage Claude Code environment configuration",
	Long:  "ccem merges Claude Code configuration from multiple projects, validates settings files, and keeps verified backups and drift snapshots of the environment directory.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		p, err := prefs.Load()
		if err != nil {
			return err
		}
		toolPrefs = p

		level := toolPrefs.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = flagLogLevel
		}
		if flagVerbose {
			level = "debug"
		}
		logging.Setup(level, os.Stderr)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMainMenu(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ccem %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(conflictsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
