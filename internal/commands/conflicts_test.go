package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peguesj/ccem/internal/config"
	"github.com/peguesj/ccem/internal/merge"
)

func TestSaveAndListPendingConflicts(t *testing.T) {
	dir := t.TempDir()
	conflicts := []merge.Conflict{
		{Field: "settings.theme", Values: []any{"dark", "light"}, Sources: []int{0, 1}},
		{Field: "model", Values: []any{"opus", "sonnet"}, Sources: []int{0, 1}},
	}

	require.NoError(t, SaveConflicts(dir, conflicts, []string{"a.json", "b.json"}))
	assert.True(t, HasPendingConflicts(dir))

	pending, err := ListPendingConflicts(dir)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "settings.theme", pending[0].Field)
	assert.Equal(t, []any{"dark", "light"}, pending[0].Values)
	assert.Equal(t, []string{"a.json", "b.json"}, pending[0].Sources)
}

func TestSaveConflicts_SourcesFollowDefiners(t *testing.T) {
	dir := t.TempDir()
	// Three sources merged, the middle one never defined the field.
	conflicts := []merge.Conflict{
		{Field: "settings.theme", Values: []any{"dark", "light"}, Sources: []int{0, 2}},
	}

	require.NoError(t, SaveConflicts(dir, conflicts, []string{"a.json", "b.json", "c.json"}))

	pending, err := ListPendingConflicts(dir)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, []any{"dark", "light"}, pending[0].Values)
	assert.Equal(t, []string{"a.json", "c.json"}, pending[0].Sources)
}

func TestSaveConflicts_UnresolvableSourcesOmitted(t *testing.T) {
	dir := t.TempDir()
	conflicts := []merge.Conflict{
		{Field: "settings.theme", Values: []any{"dark", "light"}},
	}

	// No source indexes recorded: better no attribution than a wrong one.
	require.NoError(t, SaveConflicts(dir, conflicts, []string{"a.json", "b.json"}))

	pending, err := ListPendingConflicts(dir)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Empty(t, pending[0].Sources)
}

func TestListPendingConflicts_Empty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")
	pending, err := ListPendingConflicts(dir)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.False(t, HasPendingConflicts(dir))
}

func TestDiscardConflicts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveConflicts(dir, []merge.Conflict{
		{Field: "settings.theme", Values: []any{"dark", "light"}},
	}, nil))
	require.NoError(t, DiscardConflicts(dir))
	assert.False(t, HasPendingConflicts(dir))
}

func TestResolveConflict_AppliesSetting(t *testing.T) {
	dir := t.TempDir()
	target := writeSource(t, dir, "settings.json", `{"settings":{"fontSize":14}}`)
	conflictDir := filepath.Join(dir, "conflicts")

	require.NoError(t, SaveConflicts(conflictDir, []merge.Conflict{
		{Field: "settings.theme", Values: []any{"dark", "light"}},
	}, nil))

	require.NoError(t, ResolveConflict(conflictDir, 0, 1, target))

	cfg, err := config.Read(target)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Settings["theme"])
	assert.Equal(t, float64(14), cfg.Settings["fontSize"])
	assert.False(t, HasPendingConflicts(conflictDir))
}

func TestResolveConflict_AppliesServer(t *testing.T) {
	dir := t.TempDir()
	target := writeSource(t, dir, "settings.json", `{}`)
	conflictDir := filepath.Join(dir, "conflicts")

	servers := []any{
		config.ServerConfig{Enabled: true, Command: "npx", Args: []string{"server-a"}},
		config.ServerConfig{Enabled: false, Command: "npx"},
	}
	require.NoError(t, SaveConflicts(conflictDir, []merge.Conflict{
		{Field: "mcpServers.github", Values: servers},
	}, nil))

	require.NoError(t, ResolveConflict(conflictDir, 0, 0, target))

	cfg, err := config.Read(target)
	require.NoError(t, err)
	require.Contains(t, cfg.MCPServers, "github")
	assert.True(t, cfg.MCPServers["github"].Enabled)
	assert.Equal(t, "npx", cfg.MCPServers["github"].Command)
	assert.Equal(t, []string{"server-a"}, cfg.MCPServers["github"].Args)
}

func TestResolveConflict_KeepsRemaining(t *testing.T) {
	dir := t.TempDir()
	target := writeSource(t, dir, "settings.json", `{}`)
	conflictDir := filepath.Join(dir, "conflicts")

	require.NoError(t, SaveConflicts(conflictDir, []merge.Conflict{
		{Field: "settings.theme", Values: []any{"dark", "light"}},
		{Field: "settings.model", Values: []any{"opus", "sonnet"}},
	}, nil))

	require.NoError(t, ResolveConflict(conflictDir, 0, 0, target))

	pending, err := ListPendingConflicts(conflictDir)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "settings.model", pending[0].Field)
}

func TestResolveConflict_OutOfRange(t *testing.T) {
	dir := t.TempDir()
	conflictDir := filepath.Join(dir, "conflicts")
	require.NoError(t, SaveConflicts(conflictDir, []merge.Conflict{
		{Field: "settings.theme", Values: []any{"dark", "light"}},
	}, nil))

	err := ResolveConflict(conflictDir, 5, 0, filepath.Join(dir, "settings.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	err = ResolveConflict(conflictDir, 0, 5, filepath.Join(dir, "settings.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestResolveConflict_CreatesTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "fresh", "settings.json")
	conflictDir := filepath.Join(dir, "conflicts")

	require.NoError(t, SaveConflicts(conflictDir, []merge.Conflict{
		{Field: "model", Values: []any{"opus", "sonnet"}},
	}, nil))

	require.NoError(t, ResolveConflict(conflictDir, 0, 1, target))

	cfg, err := config.Read(target)
	require.NoError(t, err)
	assert.Equal(t, "sonnet", cfg.Extra["model"])
}
