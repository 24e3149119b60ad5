// Package backup creates, validates, and restores compressed archives of a
// configuration directory, and takes checksum manifests for change auditing.
package backup

import "time"

const (
	// FormatVersion tags the archive metadata layout.
	FormatVersion = "1.0"

	// metadataEntry is the manifest's path inside the archive.
	metadataEntry = "metadata.json"
	// filesRoot prefixes every archived file entry.
	filesRoot = "files"
)

// FileEntry describes one archived file.
type FileEntry struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
	Mode   int64  `json:"mode"`
}

// Metadata is embedded in the archive as metadata.json. Checksum covers the
// archived content (sorted per-file digests), so truncation or tampering of
// any entry is detectable.
type Metadata struct {
	FormatVersion    string      `json:"formatVersion"`
	CreatedAt        time.Time   `json:"createdAt"`
	SourcePath       string      `json:"sourcePath"`
	FileCount        int         `json:"fileCount"`
	TotalSize        int64       `json:"totalSize"`
	CompressionLevel int         `json:"compressionLevel"`
	Checksum         string      `json:"checksum"`
	Files            []FileEntry `json:"files"`
}

// Report is the outcome of validating an archive. A corrupt or unreadable
// archive yields IsValid=false with descriptive errors rather than a panic.
type Report struct {
	Metadata *Metadata `json:"metadata,omitempty"`
	IsValid  bool      `json:"isValid"`
	Errors   []string  `json:"errors,omitempty"`
}

// FileInfo is one file's state inside a Snapshot.
type FileInfo struct {
	Path     string    `json:"path"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"modifiedTime"`
}

// Snapshot is an uncompressed point-in-time manifest of a directory, used
// for change detection independent of archive creation.
type Snapshot struct {
	Timestamp  time.Time  `json:"timestamp"`
	SourcePath string     `json:"sourcePath"`
	FileCount  int        `json:"fileCount"`
	Files      []FileInfo `json:"files"`
}

// SnapshotDiff lists per-file differences between two snapshots of the same
// directory.
type SnapshotDiff struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`
}

// Identical reports whether nothing changed between the two snapshots.
func (d SnapshotDiff) Identical() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}
