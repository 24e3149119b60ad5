package commands

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"

	"github.com/peguesj/ccem/internal/backup"
	"github.com/peguesj/ccem/internal/logging"
)

// AuditOptions configures an audit run.
type AuditOptions struct {
	SourceDir   string
	SnapshotDir string
	// Save records the new snapshot as the baseline for the next audit.
	Save bool
}

// AuditReport is the outcome of comparing the current state of a directory
// against its last recorded snapshot.
type AuditReport struct {
	// First is true when no baseline existed yet.
	First    bool
	Current  *backup.Snapshot
	Previous *backup.Snapshot
	Diff     backup.SnapshotDiff
}

// AuditRun snapshots the source directory, diffs it against the previous
// baseline if one exists, and optionally saves the new snapshot as baseline.
func AuditRun(opts AuditOptions) (*AuditReport, error) {
	current, err := backup.TakeSnapshot(opts.SourceDir)
	if err != nil {
		return nil, err
	}

	manifest := snapshotManifestPath(opts.SnapshotDir, opts.SourceDir)
	previous, err := backup.LoadSnapshot(manifest)
	if err != nil {
		return nil, fmt.Errorf("loading baseline snapshot: %w", err)
	}

	report := &AuditReport{Current: current, Previous: previous}
	if previous == nil {
		report.First = true
	} else {
		report.Diff = backup.CompareSnapshots(previous, current)
	}

	if opts.Save {
		if err := backup.SaveSnapshot(manifest, current); err != nil {
			return nil, fmt.Errorf("saving baseline snapshot: %w", err)
		}
		logger := logging.Component("audit")
		logger.Debug().Str("manifest", manifest).Msg("baseline snapshot saved")
	}
	return report, nil
}

// snapshotManifestPath derives a stable manifest filename per audited
// directory so baselines for different directories do not collide.
func snapshotManifestPath(snapshotDir, sourceDir string) string {
	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		abs = sourceDir
	}
	sum := sha256.Sum256([]byte(abs))
	name := fmt.Sprintf("%s-%x.json", filepath.Base(abs), sum[:6])
	return filepath.Join(snapshotDir, name)
}
