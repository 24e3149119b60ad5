package backup

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree lays out files relative to dir, creating parents as needed.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func sampleTree(t *testing.T) string {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"settings.json":     `{"permissions": ["Read"]}`,
		".mcp.json":         `{"mcpServers": {}}`,
		"plugins/list.json": `[]`,
		"plugins/deep/nested/state.json": `{"x": 1}`,
	})
	return dir
}

func TestCreate_EmbedsMetadata(t *testing.T) {
	src := sampleTree(t)
	out := t.TempDir()

	path, meta, err := Create(src, out, Options{})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, ".tar.gz"))
	assert.Equal(t, FormatVersion, meta.FormatVersion)
	assert.Equal(t, 4, meta.FileCount)
	assert.Equal(t, gzip.BestCompression, meta.CompressionLevel)
	assert.NotEmpty(t, meta.Checksum)
	assert.Positive(t, meta.TotalSize)
	assert.Len(t, meta.Files, 4)

	// Stable sorted order.
	paths := make([]string, len(meta.Files))
	for i, f := range meta.Files {
		paths[i] = f.Path
	}
	assert.Equal(t, []string{
		".mcp.json",
		"plugins/deep/nested/state.json",
		"plugins/list.json",
		"settings.json",
	}, paths)
}

func TestCreate_MissingSourceFails(t *testing.T) {
	_, _, err := Create(filepath.Join(t.TempDir(), "absent"), t.TempDir(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestCreate_FileSourceFails(t *testing.T) {
	file := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	_, _, err := Create(file, t.TempDir(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestCreate_CustomCompressionLevel(t *testing.T) {
	src := sampleTree(t)
	_, meta, err := Create(src, t.TempDir(), Options{Level: gzip.BestSpeed})
	require.NoError(t, err)
	assert.Equal(t, gzip.BestSpeed, meta.CompressionLevel)
}

func TestValidate_GoodArchive(t *testing.T) {
	path, _, err := Create(sampleTree(t), t.TempDir(), Options{})
	require.NoError(t, err)

	report, err := Validate(path)
	require.NoError(t, err)
	assert.True(t, report.IsValid)
	assert.Empty(t, report.Errors)
	require.NotNil(t, report.Metadata)
	assert.Equal(t, 4, report.Metadata.FileCount)
}

func TestValidate_TruncatedArchive(t *testing.T) {
	path, _, err := Create(sampleTree(t), t.TempDir(), Options{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	for _, cut := range []int{1, 16, len(data) / 2} {
		truncated := filepath.Join(t.TempDir(), "cut.tar.gz")
		require.NoError(t, os.WriteFile(truncated, data[:len(data)-cut], 0o644))

		report, err := Validate(truncated)
		require.NoError(t, err, "validation must report, not fail")
		assert.False(t, report.IsValid, "truncating %d bytes must invalidate", cut)
		assert.NotEmpty(t, report.Errors)
	}
}

func TestValidate_NotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("definitely not gzip"), 0o644))

	report, err := Validate(path)
	require.NoError(t, err)
	assert.False(t, report.IsValid)
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0], "gzip")
}

func TestValidate_MissingArchive(t *testing.T) {
	_, err := Validate(filepath.Join(t.TempDir(), "absent.tar.gz"))
	assert.Error(t, err)
}

func TestRestore_RoundTrip(t *testing.T) {
	files := map[string]string{
		"settings.json":          `{"permissions": ["Read"]}`,
		"plugins/a/b/state.json": `{"deep": true}`,
	}
	src := t.TempDir()
	writeTree(t, src, files)

	path, _, err := Create(src, t.TempDir(), Options{})
	require.NoError(t, err)

	target := t.TempDir()
	require.NoError(t, Restore(path, target))

	for rel, want := range files {
		data, err := os.ReadFile(filepath.Join(target, filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.Equal(t, want, string(data), "byte-identical restore of %s", rel)
	}
}

func TestRestore_OverwritesExistingFiles(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"settings.json": "archived"})

	path, _, err := Create(src, t.TempDir(), Options{})
	require.NoError(t, err)

	target := t.TempDir()
	writeTree(t, target, map[string]string{
		"settings.json": "stale local edit",
		"unrelated.txt": "keep me",
	})

	require.NoError(t, Restore(path, target))

	data, _ := os.ReadFile(filepath.Join(target, "settings.json"))
	assert.Equal(t, "archived", string(data))
	data, _ = os.ReadFile(filepath.Join(target, "unrelated.txt"))
	assert.Equal(t, "keep me", string(data))
}

func TestRestore_RefusesCorruptArchive(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"settings.json": "important"})

	path, _, err := Create(src, t.TempDir(), Options{})
	require.NoError(t, err)

	data, _ := os.ReadFile(path)
	corrupt := filepath.Join(t.TempDir(), "corrupt.tar.gz")
	require.NoError(t, os.WriteFile(corrupt, data[:len(data)-10], 0o644))

	target := t.TempDir()
	writeTree(t, target, map[string]string{"settings.json": "pre-existing"})

	err = Restore(corrupt, target)
	var ierr *IntegrityError
	require.ErrorAs(t, err, &ierr)

	data, _ = os.ReadFile(filepath.Join(target, "settings.json"))
	assert.Equal(t, "pre-existing", string(data), "failed restore must not touch the target")
}

func TestRestore_CreatesTargetDir(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"settings.json": "x"})

	path, _, err := Create(src, t.TempDir(), Options{})
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "new", "nested")
	require.NoError(t, Restore(path, target))
	_, err = os.Stat(filepath.Join(target, "settings.json"))
	assert.NoError(t, err)
}
