package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peguesj/ccem/internal/commands"
	"github.com/peguesj/ccem/internal/merge"
	"github.com/peguesj/ccem/internal/paths"
)

var (
	mergeStrategy       string
	mergeOutput         string
	mergeSkipMissing    bool
	mergeFailOnConflict bool
	mergeDryRun         bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source>...",
	Short: "Merge configuration files into one",
	Long:  "Merge two or more Claude Code configuration files into a single output, resolving conflicts according to the chosen strategy.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategyName := mergeStrategy
		if !cmd.Flags().Changed("strategy") && toolPrefs != nil {
			strategyName = toolPrefs.Strategy
		}
		strategy, err := merge.ParseStrategy(strategyName)
		if err != nil {
			return err
		}

		output := mergeOutput
		if output == "" {
			output = paths.SettingsFile()
		}

		outcome, err := commands.MergeRun(commands.MergeOptions{
			SourcePaths:    args,
			OutputPath:     output,
			Strategy:       strategy,
			SkipMissing:    mergeSkipMissing,
			FailOnConflict: mergeFailOnConflict,
			DryRun:         mergeDryRun,
			StateDir:       paths.ConflictDir(),
		})
		if err != nil {
			if outcome != nil && outcome.Result != nil {
				printConflicts(outcome.Result.Unresolved())
			}
			return err
		}

		result := outcome.Result
		for _, skipped := range outcome.Skipped {
			fmt.Printf("Skipped missing source: %s\n", skipped)
		}
		fmt.Printf("Analyzed %d configuration(s): %d conflict(s), %d auto-resolved.\n",
			result.Stats.ProjectsAnalyzed, result.Stats.ConflictsDetected, result.Stats.AutoResolved)

		if unresolved := result.Unresolved(); len(unresolved) > 0 {
			printConflicts(unresolved)
			fmt.Println("Unresolved conflicts saved. Run 'ccem conflicts' to review them.")
		}

		if mergeDryRun {
			fmt.Println("Dry run: nothing written.")
			return nil
		}
		if outcome.Written {
			fmt.Printf("Merged configuration written to %s\n", output)
		}
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeStrategy, "strategy", "s", string(merge.StrategyRecommended), "conflict resolution strategy (default, conservative, hybrid, recommended)")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "output file (defaults to the settings file)")
	mergeCmd.Flags().BoolVar(&mergeSkipMissing, "skip-missing", false, "skip source files that do not exist")
	mergeCmd.Flags().BoolVar(&mergeFailOnConflict, "fail-on-conflict", false, "exit with an error if conflicts require manual review")
	mergeCmd.Flags().BoolVar(&mergeDryRun, "dry-run", false, "compute the merge without writing anything")
}
