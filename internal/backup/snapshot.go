package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/peguesj/ccem/internal/atomicwrite"
)

// TakeSnapshot records the checksum, size, and modification time of every
// file under sourceDir. It never mutates the source directory; the manifest
// lists files in stable sorted order so two snapshots of an unchanged tree
// are directly comparable.
func TakeSnapshot(sourceDir string) (*Snapshot, error) {
	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolving source path %s: %w", sourceDir, err)
	}

	files, err := walkFiles(absSource)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Timestamp:  time.Now().UTC(),
		SourcePath: absSource,
		FileCount:  len(files),
		Files:      make([]FileInfo, 0, len(files)),
	}

	for _, rel := range files {
		fullPath := filepath.Join(absSource, rel)
		checksum, size, err := fileChecksum(fullPath)
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", fullPath, err)
		}
		info, err := os.Stat(fullPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", fullPath, err)
		}
		snap.Files = append(snap.Files, FileInfo{
			Path:     filepath.ToSlash(rel),
			Checksum: checksum,
			Size:     size,
			ModTime:  info.ModTime().UTC(),
		})
	}
	return snap, nil
}

// CompareSnapshots lists per-file membership and checksum differences
// between two snapshots of the same directory.
func CompareSnapshots(before, after *Snapshot) SnapshotDiff {
	var d SnapshotDiff

	prev := make(map[string]string, len(before.Files))
	for _, f := range before.Files {
		prev[f.Path] = f.Checksum
	}
	next := make(map[string]string, len(after.Files))
	for _, f := range after.Files {
		next[f.Path] = f.Checksum
	}

	for _, f := range after.Files {
		sum, existed := prev[f.Path]
		switch {
		case !existed:
			d.Added = append(d.Added, f.Path)
		case sum != f.Checksum:
			d.Changed = append(d.Changed, f.Path)
		}
	}
	for _, f := range before.Files {
		if _, exists := next[f.Path]; !exists {
			d.Removed = append(d.Removed, f.Path)
		}
	}
	return d
}

// SaveSnapshot persists a snapshot manifest as JSON.
func SaveSnapshot(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return atomicwrite.WriteFile(path, append(data, '\n'), atomicwrite.Options{CreateDirs: true})
}

// LoadSnapshot reads a previously saved manifest. A missing file returns
// (nil, nil) so first-run audits have nothing to compare against.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	return &snap, nil
}

func fileChecksum(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	hash := sha256.New()
	n, err := io.Copy(hash, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(hash.Sum(nil)), n, nil
}
