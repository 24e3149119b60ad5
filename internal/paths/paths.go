package paths

import (
	"os"
	"path/filepath"
)

func home() string {
	h, _ := os.UserHomeDir()
	return h
}

// ClaudeDir returns ~/.claude, the configuration directory being managed.
func ClaudeDir() string {
	if dir := os.Getenv("CCEM_CLAUDE_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(home(), ".claude")
}

// StateDir returns ~/.ccem, where ccem keeps its own state.
func StateDir() string {
	if dir := os.Getenv("CCEM_STATE_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(home(), ".ccem")
}

// SettingsFile returns ~/.claude/settings.json.
func SettingsFile() string {
	return filepath.Join(ClaudeDir(), "settings.json")
}

// PrefsFile returns ~/.ccem/config.yaml.
func PrefsFile() string {
	return filepath.Join(StateDir(), "config.yaml")
}

// BackupDir returns ~/.ccem/backups, the default archive output directory.
func BackupDir() string {
	return filepath.Join(StateDir(), "backups")
}

// SnapshotDir returns ~/.ccem/snapshots, where audit manifests are kept.
func SnapshotDir() string {
	return filepath.Join(StateDir(), "snapshots")
}

// ConflictDir returns ~/.ccem/conflicts, where unresolved merges are parked.
func ConflictDir() string {
	return filepath.Join(StateDir(), "conflicts")
}
