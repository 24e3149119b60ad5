package paths_test

import (
	"os"
	"strings"
	"testing"

	"github.com/peguesj/ccem/internal/paths"
	"github.com/stretchr/testify/assert"
)

func TestStateDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	assert.True(t, strings.HasPrefix(paths.StateDir(), home))
	assert.True(t, strings.HasSuffix(paths.StateDir(), ".ccem"))
}

func TestStateDirOverride(t *testing.T) {
	t.Setenv("CCEM_STATE_DIR", "/tmp/ccem-test")
	assert.Equal(t, "/tmp/ccem-test", paths.StateDir())
}

func TestClaudeDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	assert.True(t, strings.HasPrefix(paths.ClaudeDir(), home))
	assert.True(t, strings.HasSuffix(paths.ClaudeDir(), ".claude"))
}

func TestClaudeDirOverride(t *testing.T) {
	t.Setenv("CCEM_CLAUDE_DIR", "/tmp/claude-test")
	assert.Equal(t, "/tmp/claude-test", paths.ClaudeDir())
	assert.Equal(t, "/tmp/claude-test/settings.json", paths.SettingsFile())
}

func TestStateSubdirs(t *testing.T) {
	assert.True(t, strings.HasSuffix(paths.PrefsFile(), "config.yaml"))
	assert.True(t, strings.HasSuffix(paths.BackupDir(), "backups"))
	assert.True(t, strings.HasSuffix(paths.SnapshotDir(), "snapshots"))
	assert.True(t, strings.HasSuffix(paths.ConflictDir(), "conflicts"))
}
