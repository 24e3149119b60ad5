package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/peguesj/ccem/internal/commands"
	"github.com/peguesj/ccem/internal/paths"
)

const (
	actionValidate  = "validate"
	actionBackup    = "backup"
	actionAudit     = "audit"
	actionConflicts = "conflicts"
	actionQuit      = "quit"
)

func runMainMenu(cmd *cobra.Command, args []string) error {
	// TTY guard: fall back to validation when stdin is not a terminal
	// (piping, CI, scripts, etc.)
	if !term.IsTerminal(os.Stdin.Fd()) {
		return validateCmd.RunE(cmd, args)
	}

	for {
		options := []huh.Option[string]{
			huh.NewOption("Validate settings file", actionValidate),
			huh.NewOption("Create backup", actionBackup),
			huh.NewOption("Audit for changes", actionAudit),
		}
		if commands.HasPendingConflicts(paths.ConflictDir()) {
			options = append(options, huh.NewOption("Review pending conflicts", actionConflicts))
		}
		options = append(options, huh.NewOption("Quit", actionQuit))

		var action string
		err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("ccem %s", version)).
				Options(options...).
				Value(&action),
		)).Run()
		if err != nil {
			return nil
		}

		var runErr error
		switch action {
		case actionValidate:
			runErr = validateCmd.RunE(validateCmd, nil)
		case actionBackup:
			runErr = backupCreateCmd.RunE(backupCreateCmd, nil)
		case actionAudit:
			runErr = auditCmd.RunE(auditCmd, nil)
		case actionConflicts:
			runErr = conflictsCmd.RunE(conflictsCmd, nil)
		default:
			return nil
		}
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		}
		fmt.Println()
	}
}
