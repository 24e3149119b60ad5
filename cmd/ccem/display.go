package main

import (
	"encoding/json"
	"fmt"

	"github.com/peguesj/ccem/internal/backup"
	"github.com/peguesj/ccem/internal/merge"
)

func printConflicts(conflicts []merge.Conflict) {
	if len(conflicts) == 0 {
		return
	}
	fmt.Printf("\n%d conflict(s) require manual review:\n", len(conflicts))
	for _, c := range conflicts {
		fmt.Printf("  %s\n", c.Field)
		for i, v := range c.Values {
			fmt.Printf("    [%d] %s\n", i, formatValue(v))
		}
	}
	fmt.Println()
}

// formatValue renders a candidate value on one line for terminal display.
func formatValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	const max = 80
	s := string(data)
	if len(s) > max {
		s = s[:max-3] + "..."
	}
	return s
}

func printValidationReport(report *backup.Report) {
	if report.IsValid {
		fmt.Printf("Archive OK: %d file(s), %s.\n", report.Metadata.FileCount, formatBytes(report.Metadata.TotalSize))
		return
	}
	fmt.Printf("Archive INVALID: %d problem(s) found.\n", len(report.Errors))
	for _, e := range report.Errors {
		fmt.Printf("  - %s\n", e)
	}
}

func printSnapshotDiff(diff backup.SnapshotDiff) {
	for _, p := range diff.Added {
		fmt.Printf("  + %s\n", p)
	}
	for _, p := range diff.Removed {
		fmt.Printf("  - %s\n", p)
	}
	for _, p := range diff.Changed {
		fmt.Printf("  ~ %s\n", p)
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
