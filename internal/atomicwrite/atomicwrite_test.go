package atomicwrite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	err := WriteFile(path, []byte("{}\n"), Options{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestWriteFile_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	err := WriteFile(path, []byte("new"), Options{})
	require.NoError(t, err)

	data, _ := os.ReadFile(path)
	assert.Equal(t, "new", string(data))
}

func TestWriteFile_CreateDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "settings.json")

	err := WriteFile(path, []byte("x"), Options{})
	assert.Error(t, err)

	err = WriteFile(path, []byte("x"), Options{CreateDirs: true})
	require.NoError(t, err)
	data, _ := os.ReadFile(path)
	assert.Equal(t, "x", string(data))
}

func TestWriteFile_BackupBeforeWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	err := WriteFile(path, []byte("updated"), Options{Backup: true})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var backups []string
	for _, e := range entries {
		if strings.Contains(e.Name(), ".backup-") {
			backups = append(backups, e.Name())
		}
	}
	require.Len(t, backups, 1)

	data, err := os.ReadFile(filepath.Join(dir, backups[0]))
	require.NoError(t, err)
	assert.Equal(t, "original", string(data), "backup must be a byte-identical copy of the pre-write file")

	data, _ = os.ReadFile(path)
	assert.Equal(t, "updated", string(data))
}

func TestWriteFile_NoBackupForNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")

	require.NoError(t, WriteFile(path, []byte("x"), Options{Backup: true}))

	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1)
}

func TestWriteFile_FailedBackupLeavesOriginal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not apply to root")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	// A read-only directory makes the backup copy fail, which must abort
	// the write before anything is renamed onto the destination.
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	err := WriteFile(path, []byte("replacement"), Options{Backup: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backing up")

	require.NoError(t, os.Chmod(dir, 0o755))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestBackupPath(t *testing.T) {
	ts := time.UnixMilli(1700000000000)
	assert.Equal(t, "/tmp/s.json.backup-1700000000000", BackupPath("/tmp/s.json", ts))
}

func TestWriteFile_PreservesExistingMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, WriteFile(path, []byte("new"), Options{}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
