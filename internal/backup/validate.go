package backup

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type archivedFile struct {
	Data []byte
	Mode int64
}

// Validate checks an archive's structural integrity and embedded checksums.
// Corrupt, truncated, or unrecognizable input yields an invalid Report with
// descriptive errors; a hard error is returned only when the file cannot be
// opened at all.
func Validate(archivePath string) (*Report, error) {
	if _, err := os.Stat(archivePath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("archive %s does not exist", archivePath)
		}
		return nil, fmt.Errorf("reading archive %s: %w", archivePath, err)
	}

	report := &Report{}
	meta, files, err := loadArchive(archivePath)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report, nil
	}
	report.Metadata = meta

	for _, entry := range meta.Files {
		file, ok := files[entry.Path]
		if !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("file listed in metadata is missing from archive: %s", entry.Path))
			continue
		}
		if int64(len(file.Data)) != entry.Size {
			report.Errors = append(report.Errors, fmt.Sprintf("size mismatch for %s: metadata=%d archive=%d", entry.Path, entry.Size, len(file.Data)))
		}
		sum := sha256.Sum256(file.Data)
		if hex.EncodeToString(sum[:]) != entry.SHA256 {
			report.Errors = append(report.Errors, fmt.Sprintf("checksum mismatch for %s", entry.Path))
		}
	}

	if len(files) != len(meta.Files) {
		report.Errors = append(report.Errors, fmt.Sprintf("file count mismatch: metadata=%d archive=%d", len(meta.Files), len(files)))
	}
	if got := contentChecksum(meta.Files); got != meta.Checksum {
		report.Errors = append(report.Errors, "whole-archive checksum mismatch")
	}

	report.IsValid = len(report.Errors) == 0
	return report, nil
}

// loadArchive reads the whole archive into memory and separates metadata
// from file entries. All structural failures surface as errors here.
func loadArchive(archivePath string) (*Metadata, map[string]archivedFile, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return nil, nil, fmt.Errorf("not a gzip archive: %v", err)
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	files := make(map[string]archivedFile)
	var metaData []byte

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading archive entry: %v", err)
		}
		if header.Typeflag == tar.TypeDir {
			continue
		}
		if header.Typeflag != tar.TypeReg {
			return nil, nil, fmt.Errorf("unsupported archive entry type %d for %s", header.Typeflag, header.Name)
		}

		name, err := cleanEntryPath(header.Name)
		if err != nil {
			return nil, nil, err
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, nil, fmt.Errorf("reading archive entry %s: %v", name, err)
		}

		if name == metadataEntry {
			metaData = data
			continue
		}
		rel, ok := strings.CutPrefix(name, filesRoot+"/")
		if !ok {
			return nil, nil, fmt.Errorf("unexpected archive entry %s", name)
		}
		files[rel] = archivedFile{Data: data, Mode: header.Mode}
	}

	// Drain the remainder so the gzip CRC trailer is verified; the tar
	// end-of-archive marker can precede a truncated trailer.
	if _, err := io.Copy(io.Discard, gzr); err != nil {
		return nil, nil, fmt.Errorf("corrupted compressed stream: %v", err)
	}

	if metaData == nil {
		return nil, nil, fmt.Errorf("archive is missing %s", metadataEntry)
	}
	var meta Metadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, nil, fmt.Errorf("decoding metadata: %v", err)
	}
	if meta.FormatVersion == "" {
		return nil, nil, fmt.Errorf("metadata has no format version")
	}
	return &meta, files, nil
}

// cleanEntryPath rejects absolute or escaping entry names.
func cleanEntryPath(name string) (string, error) {
	name = filepath.ToSlash(name)
	if name == "" {
		return "", fmt.Errorf("empty archive entry path")
	}
	if strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("absolute archive entry path not allowed: %s", name)
	}
	clean := filepath.ToSlash(filepath.Clean(strings.TrimPrefix(name, "./")))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("archive entry escapes the archive root: %s", name)
	}
	return clean, nil
}
