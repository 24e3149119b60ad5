// Package atomicwrite persists files via temp-file-and-rename so readers
// never observe a partially written destination.
package atomicwrite

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
)

// Options controls a single atomic write.
type Options struct {
	// Backup copies an existing destination to <path>.backup-<unixMillis>
	// before writing. A failed backup aborts the write.
	Backup bool
	// CreateDirs creates missing parent directories.
	CreateDirs bool
	// Perm is the file mode for the destination. Zero means 0644, or the
	// existing file's mode when the destination already exists.
	Perm os.FileMode
}

// WriteFile atomically replaces the file at path with data.
//
// The data is written to a temporary file in the same directory and renamed
// onto path. On failure the original file is left untouched; no rollback
// beyond the optional backup copy is attempted.
func WriteFile(path string, data []byte, opts Options) error {
	if opts.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating directories for %s: %w", path, err)
		}
	}

	perm := opts.Perm
	if info, err := os.Stat(path); err == nil {
		if perm == 0 {
			perm = info.Mode().Perm()
		}
		if opts.Backup {
			if _, err := backupCopy(path); err != nil {
				return fmt.Errorf("backing up %s: %w", path, err)
			}
		}
	}
	if perm == 0 {
		perm = 0o644
	}

	if err := renameio.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// BackupPath returns the sibling backup name for path at time t.
func BackupPath(path string, t time.Time) string {
	return fmt.Sprintf("%s.backup-%d", path, t.UnixMilli())
}

// backupCopy makes a byte-identical timestamped copy of path.
func backupCopy(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", err
	}

	dstPath := BackupPath(path, time.Now())
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return "", err
	}
	return dstPath, nil
}
