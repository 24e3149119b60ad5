package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/peguesj/ccem/internal/commands"
	"github.com/peguesj/ccem/internal/paths"
)

var (
	resolvePick   int
	resolveTarget string
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Manage pending merge conflicts",
	Long:  "List, resolve, or discard merge conflicts that were left for manual review.",
	RunE: func(cmd *cobra.Command, args []string) error {
		conflicts, err := commands.ListPendingConflicts(paths.ConflictDir())
		if err != nil {
			return err
		}
		if len(conflicts) == 0 {
			fmt.Println("No pending conflicts.")
			return nil
		}
		fmt.Printf("%d pending conflict(s):\n\n", len(conflicts))
		for i, c := range conflicts {
			fmt.Printf("  [%d] %s\n", i, c.Field)
			for j, v := range c.Values {
				fmt.Printf("      (%d) %s\n", j, formatValue(v))
			}
			fmt.Println()
		}
		fmt.Println("Resolve one with 'ccem conflicts resolve <index>'.")
		return nil
	},
}

var conflictsResolveCmd = &cobra.Command{
	Use:   "resolve <index>",
	Short: "Apply one candidate value and clear the conflict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid conflict index %q", args[0])
		}
		conflictDir := paths.ConflictDir()

		pick := resolvePick
		if !cmd.Flags().Changed("pick") {
			pick, err = pickValue(conflictDir, index)
			if err != nil {
				return err
			}
		}

		target := resolveTarget
		if target == "" {
			target = paths.SettingsFile()
		}
		if err := commands.ResolveConflict(conflictDir, index, pick, target); err != nil {
			return err
		}
		fmt.Printf("Conflict resolved; %s updated.\n", target)
		return nil
	},
}

var conflictsDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Discard all pending conflicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		conflictDir := paths.ConflictDir()
		if !commands.HasPendingConflicts(conflictDir) {
			fmt.Println("No pending conflicts.")
			return nil
		}
		if err := commands.DiscardConflicts(conflictDir); err != nil {
			return err
		}
		fmt.Println("All pending conflicts discarded.")
		return nil
	},
}

// pickValue prompts for which candidate to keep, falling back to an error
// when there is no terminal to ask on.
func pickValue(conflictDir string, index int) (int, error) {
	conflicts, err := commands.ListPendingConflicts(conflictDir)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(conflicts) {
		return 0, fmt.Errorf("conflict index %d out of range (0-%d)", index, len(conflicts)-1)
	}
	if !term.IsTerminal(os.Stdin.Fd()) {
		return 0, fmt.Errorf("no terminal available; use --pick to choose a value")
	}

	c := conflicts[index]
	var options []huh.Option[int]
	for i, v := range c.Values {
		label := formatValue(v)
		if i < len(c.Sources) {
			label = fmt.Sprintf("%s (from %s)", label, c.Sources[i])
		}
		options = append(options, huh.NewOption(label, i))
	}

	var pick int
	err = huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().
			Title(fmt.Sprintf("Keep which value for %s?", c.Field)).
			Options(options...).
			Value(&pick),
	)).Run()
	if err != nil {
		return 0, fmt.Errorf("prompt cancelled: %w", err)
	}
	return pick, nil
}

func init() {
	conflictsResolveCmd.Flags().IntVar(&resolvePick, "pick", 0, "index of the value to keep")
	conflictsResolveCmd.Flags().StringVar(&resolveTarget, "target", "", "configuration file to apply the value to (defaults to the settings file)")

	conflictsCmd.AddCommand(conflictsResolveCmd)
	conflictsCmd.AddCommand(conflictsDiscardCmd)
}
