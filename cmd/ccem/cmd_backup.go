package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/peguesj/ccem/internal/backup"
	"github.com/peguesj/ccem/internal/paths"
)

var (
	backupOutputDir   string
	backupCompression int
	restoreYes        bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, validate, and restore environment backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return backupCreateCmd.RunE(cmd, args)
	},
}

var backupCreateCmd = &cobra.Command{
	Use:   "create [dir]",
	Short: "Archive the environment directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := paths.ClaudeDir()
		if len(args) == 1 {
			source = args[0]
		}
		outputDir := backupOutputDir
		if outputDir == "" {
			outputDir = toolPrefs.BackupDir
		}
		level := backupCompression
		if !cmd.Flags().Changed("compression") {
			level = toolPrefs.CompressionLevel
		}

		path, meta, err := backup.Create(source, outputDir, backup.Options{Level: level})
		if err != nil {
			return err
		}
		fmt.Printf("Backed up %d file(s) (%s) to %s\n", meta.FileCount, formatBytes(meta.TotalSize), path)
		return nil
	},
}

var backupValidateCmd = &cobra.Command{
	Use:   "validate <archive>",
	Short: "Check an archive's integrity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := backup.Validate(args[0])
		if err != nil {
			return err
		}
		printValidationReport(report)
		if !report.IsValid {
			return fmt.Errorf("archive %s failed validation", args[0])
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <archive> [target]",
	Short: "Restore an archive into a directory",
	Long:  "Validate an archive and extract its contents into the target directory, overwriting files that already exist there. Files not present in the archive are left alone.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive := args[0]
		target := paths.ClaudeDir()
		if len(args) == 2 {
			target = args[1]
		}

		if !restoreYes && term.IsTerminal(os.Stdin.Fd()) {
			var confirmed bool
			err := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Restore %s into %s?", archive, target)).
					Description("Existing files with the same names will be overwritten.").
					Value(&confirmed),
			)).Run()
			if err != nil {
				return fmt.Errorf("prompt cancelled: %w", err)
			}
			if !confirmed {
				fmt.Println("Restore aborted.")
				return nil
			}
		}

		if err := backup.Restore(archive, target); err != nil {
			return err
		}
		fmt.Printf("Restored %s into %s\n", archive, target)
		return nil
	},
}

func init() {
	backupCreateCmd.Flags().StringVarP(&backupOutputDir, "output-dir", "o", "", "directory for the archive (defaults to the backup dir)")
	backupCreateCmd.Flags().IntVar(&backupCompression, "compression", 9, "gzip compression level (1-9)")
	backupRestoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "skip the confirmation prompt")

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupValidateCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}
