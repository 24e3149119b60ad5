package backup

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Options configures archive creation.
type Options struct {
	// Level is the gzip compression level; zero means gzip.BestCompression.
	Level int
}

// Create archives every file under sourceDir into a timestamped .tar.gz in
// outputDir. It fails if sourceDir does not exist or is not a directory and
// never produces an empty archive for a missing source.
func Create(sourceDir, outputDir string, opts Options) (string, *Metadata, error) {
	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving source path %s: %w", sourceDir, err)
	}

	files, err := walkFiles(absSource)
	if err != nil {
		return "", nil, err
	}

	level := opts.Level
	if level == 0 {
		level = gzip.BestCompression
	}
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return "", nil, fmt.Errorf("invalid compression level %d", level)
	}

	if outputDir == "" {
		outputDir = filepath.Dir(absSource)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	now := time.Now().UTC()
	archivePath := filepath.Join(outputDir, fmt.Sprintf("%s-backup-%s.tar.gz",
		filepath.Base(absSource), now.Format("20060102T150405Z")))

	meta := &Metadata{
		FormatVersion:    FormatVersion,
		CreatedAt:        now,
		SourcePath:       absSource,
		FileCount:        len(files),
		CompressionLevel: level,
		Files:            make([]FileEntry, 0, len(files)),
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return "", nil, fmt.Errorf("creating archive %s: %w", archivePath, err)
	}
	defer out.Close()

	gzw, err := gzip.NewWriterLevel(out, level)
	if err != nil {
		return "", nil, fmt.Errorf("initializing compression: %w", err)
	}
	tw := tar.NewWriter(gzw)

	logger := log.With().Str("component", "backup").Logger()
	for _, rel := range files {
		fullPath := filepath.Join(absSource, rel)
		data, err := os.ReadFile(fullPath)
		if err != nil {
			return "", nil, fmt.Errorf("reading %s: %w", fullPath, err)
		}
		info, err := os.Stat(fullPath)
		if err != nil {
			return "", nil, fmt.Errorf("reading %s: %w", fullPath, err)
		}

		entryPath := filepath.ToSlash(filepath.Join(filesRoot, rel))
		mode := int64(info.Mode().Perm())
		if err := writeTarEntry(tw, entryPath, data, mode, now); err != nil {
			return "", nil, fmt.Errorf("archiving %s: %w", rel, err)
		}

		sum := sha256.Sum256(data)
		meta.Files = append(meta.Files, FileEntry{
			Path:   filepath.ToSlash(rel),
			SHA256: hex.EncodeToString(sum[:]),
			Size:   int64(len(data)),
			Mode:   mode,
		})
		meta.TotalSize += int64(len(data))
		logger.Debug().Str("file", rel).Int("bytes", len(data)).Msg("archived")
	}

	meta.Checksum = contentChecksum(meta.Files)

	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("encoding metadata: %w", err)
	}
	if err := writeTarEntry(tw, metadataEntry, metaData, 0o600, now); err != nil {
		return "", nil, fmt.Errorf("writing metadata: %w", err)
	}

	if err := tw.Close(); err != nil {
		return "", nil, fmt.Errorf("finalizing archive: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return "", nil, fmt.Errorf("finalizing compression: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", nil, fmt.Errorf("closing archive: %w", err)
	}

	logger.Debug().Str("archive", archivePath).Int("files", meta.FileCount).Msg("backup created")
	return archivePath, meta, nil
}

// contentChecksum digests the sorted per-file checksums, giving a stable
// whole-archive fingerprint independent of tar ordering.
func contentChecksum(files []FileEntry) string {
	lines := make([]string, len(files))
	for i, f := range files {
		lines[i] = f.Path + ":" + f.SHA256
	}
	sort.Strings(lines)
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

func writeTarEntry(tw *tar.Writer, name string, data []byte, mode int64, modTime time.Time) error {
	header := &tar.Header{
		Name:     name,
		Mode:     mode,
		Size:     int64(len(data)),
		ModTime:  modTime,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}
