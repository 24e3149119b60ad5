package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peguesj/ccem/internal/commands"
	"github.com/peguesj/ccem/internal/paths"
)

var auditSave bool

var auditCmd = &cobra.Command{
	Use:   "audit [dir]",
	Short: "Detect changes since the last snapshot",
	Long:  "Compare the environment directory against its last recorded snapshot and report added, removed, and changed files.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := paths.ClaudeDir()
		if len(args) == 1 {
			source = args[0]
		}

		report, err := commands.AuditRun(commands.AuditOptions{
			SourceDir:   source,
			SnapshotDir: paths.SnapshotDir(),
			Save:        auditSave,
		})
		if err != nil {
			return err
		}

		if report.First {
			fmt.Printf("No baseline snapshot for %s yet (%d file(s) recorded).\n", source, report.Current.FileCount)
			if !auditSave {
				fmt.Println("Run with --save to record one.")
			}
			return nil
		}

		if report.Diff.Identical() {
			fmt.Printf("No changes since %s.\n", report.Previous.Timestamp.Local().Format("2006-01-02 15:04:05"))
			return nil
		}

		fmt.Printf("Changes since %s:\n", report.Previous.Timestamp.Local().Format("2006-01-02 15:04:05"))
		printSnapshotDiff(report.Diff)
		if auditSave {
			fmt.Println("Baseline updated.")
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().BoolVar(&auditSave, "save", false, "record the current state as the new baseline")
}
