// Package commands implements the operations behind the CLI subcommands.
package commands

import (
	"fmt"

	"github.com/peguesj/ccem/internal/config"
	"github.com/peguesj/ccem/internal/logging"
	"github.com/peguesj/ccem/internal/merge"
)

// MergeOptions configures a merge run.
type MergeOptions struct {
	SourcePaths []string
	OutputPath  string
	Strategy    merge.Strategy
	// SkipMissing tolerates absent source files instead of failing fast.
	SkipMissing bool
	// FailOnConflict turns unresolved conflicts into an error.
	FailOnConflict bool
	// DryRun computes the merge without writing the output file.
	DryRun bool
	// StateDir is where unresolved conflicts are parked for review; empty
	// disables persistence.
	StateDir string
}

// MergeOutcome reports what a merge run did.
type MergeOutcome struct {
	Result  *merge.Result
	Skipped []string
	Written bool
}

// UnresolvedConflictsError is returned when FailOnConflict is set and the
// strategy left conflicts requiring manual review.
type UnresolvedConflictsError struct {
	Count int
}

func (e *UnresolvedConflictsError) Error() string {
	return fmt.Sprintf("%d conflict(s) require manual review", e.Count)
}

// MergeRun loads and validates every source, merges them in order, parks
// unresolved conflicts, and writes the merged output with a pre-write
// backup of the destination.
func MergeRun(opts MergeOptions) (*MergeOutcome, error) {
	if len(opts.SourcePaths) == 0 {
		return nil, fmt.Errorf("at least one source configuration is required")
	}

	outcome := &MergeOutcome{}
	logger := logging.Component("merge")

	var sources []config.Configuration
	var loadedPaths []string
	for _, path := range opts.SourcePaths {
		cfg, err := config.Read(path)
		if err != nil {
			if config.IsNotFound(err) && opts.SkipMissing {
				logger.Debug().Str("path", path).Msg("skipping missing source")
				outcome.Skipped = append(outcome.Skipped, path)
				continue
			}
			// One unreadable source fails the whole merge.
			return nil, err
		}
		if result := config.Validate(cfg.Document()); !result.Valid {
			return nil, &config.ValidationError{Path: path, Errors: result.Errors}
		}
		sources = append(sources, cfg)
		loadedPaths = append(loadedPaths, path)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no readable source configurations among %d path(s)", len(opts.SourcePaths))
	}

	result, err := merge.Merge(sources, opts.Strategy)
	if err != nil {
		return nil, err
	}
	outcome.Result = result
	logger.Debug().
		Int("sources", result.Stats.ProjectsAnalyzed).
		Int("conflicts", result.Stats.ConflictsDetected).
		Int("autoResolved", result.Stats.AutoResolved).
		Msg("merge computed")

	unresolved := result.Unresolved()
	if opts.FailOnConflict && len(unresolved) > 0 {
		return outcome, &UnresolvedConflictsError{Count: len(unresolved)}
	}
	if len(unresolved) > 0 && opts.StateDir != "" && !opts.DryRun {
		if err := SaveConflicts(opts.StateDir, unresolved, loadedPaths); err != nil {
			return outcome, fmt.Errorf("saving pending conflicts: %w", err)
		}
	}

	if opts.DryRun || opts.OutputPath == "" {
		return outcome, nil
	}

	err = config.Write(opts.OutputPath, result.Merged, config.WriteOptions{
		Backup:     true,
		Validate:   true,
		CreateDirs: true,
	})
	if err != nil {
		return outcome, err
	}
	outcome.Written = true
	return outcome, nil
}
