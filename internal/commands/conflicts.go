package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/peguesj/ccem/internal/config"
	"github.com/peguesj/ccem/internal/merge"
)

// PendingConflict describes a single unresolved merge conflict parked for
// manual review. Values holds one candidate per source that defined the
// field, in source order; Sources holds the matching source paths, so
// Values[i] came from Sources[i].
type PendingConflict struct {
	Timestamp string   `yaml:"timestamp"`
	Field     string   `yaml:"field"`
	Values    []any    `yaml:"values"`
	Sources   []string `yaml:"sources,omitempty"`
}

// PendingConflictFile holds a list of conflicts persisted to disk.
type PendingConflictFile struct {
	Conflicts []PendingConflict `yaml:"conflicts"`
}

// SaveConflicts writes unresolved conflicts to the state dir for later
// review with the conflicts subcommand. sourcePaths lists the merged files
// in input order; each conflict's Sources indexes resolve against it.
func SaveConflicts(conflictDir string, conflicts []merge.Conflict, sourcePaths []string) error {
	var pending []PendingConflict
	ts := time.Now().UTC().Format("20060102T150405Z")
	for _, c := range conflicts {
		p := PendingConflict{
			Timestamp: ts,
			Field:     c.Field,
			Sources:   valueSources(c, sourcePaths),
		}
		for _, v := range c.Values {
			p.Values = append(p.Values, toPlain(v))
		}
		pending = append(pending, p)
	}
	return writePendingFile(conflictDir, pending)
}

// valueSources maps a conflict's source indexes to paths, one per value.
// It returns nil rather than a misaligned list when the indexes cannot be
// resolved.
func valueSources(c merge.Conflict, sourcePaths []string) []string {
	if len(c.Sources) != len(c.Values) {
		return nil
	}
	paths := make([]string, 0, len(c.Sources))
	for _, idx := range c.Sources {
		if idx < 0 || idx >= len(sourcePaths) {
			return nil
		}
		paths = append(paths, sourcePaths[idx])
	}
	return paths
}

// HasPendingConflicts checks if there are unresolved conflicts.
func HasPendingConflicts(conflictDir string) bool {
	entries, err := os.ReadDir(conflictDir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".yaml" {
			return true
		}
	}
	return false
}

// ListPendingConflicts reads all pending conflict files in chronological order.
func ListPendingConflicts(conflictDir string) ([]PendingConflict, error) {
	entries, err := os.ReadDir(conflictDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var fileNames []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".yaml" {
			fileNames = append(fileNames, e.Name())
		}
	}
	sort.Strings(fileNames)

	var all []PendingConflict
	for _, name := range fileNames {
		data, err := os.ReadFile(filepath.Join(conflictDir, name))
		if err != nil {
			continue
		}
		var f PendingConflictFile
		if yaml.Unmarshal(data, &f) == nil {
			all = append(all, f.Conflicts...)
		}
	}
	return all, nil
}

// DiscardConflicts removes all pending conflict files.
func DiscardConflicts(conflictDir string) error {
	return os.RemoveAll(conflictDir)
}

// ResolveConflict applies the chosen candidate value to the configuration at
// targetPath and removes the conflict from the pending set. pick indexes
// into the conflict's Values slice.
func ResolveConflict(conflictDir string, index, pick int, targetPath string) error {
	conflicts, err := ListPendingConflicts(conflictDir)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(conflicts) {
		return fmt.Errorf("conflict index %d out of range (0-%d)", index, len(conflicts)-1)
	}
	c := conflicts[index]
	if pick < 0 || pick >= len(c.Values) {
		return fmt.Errorf("value index %d out of range (0-%d)", pick, len(c.Values)-1)
	}

	cfg, err := config.Read(targetPath)
	if err != nil {
		if !config.IsNotFound(err) {
			return err
		}
		cfg = config.New()
	}
	if err := applyField(&cfg, c.Field, c.Values[pick]); err != nil {
		return err
	}
	err = config.Write(targetPath, cfg, config.WriteOptions{
		Backup:     true,
		Validate:   true,
		CreateDirs: true,
	})
	if err != nil {
		return err
	}

	// Clear all files and re-save whatever is still pending.
	remaining := append(conflicts[:index:index], conflicts[index+1:]...)
	if err := DiscardConflicts(conflictDir); err != nil {
		return err
	}
	if len(remaining) > 0 {
		return writePendingFile(conflictDir, remaining)
	}
	return nil
}

func writePendingFile(conflictDir string, conflicts []PendingConflict) error {
	if err := os.MkdirAll(conflictDir, 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(PendingConflictFile{Conflicts: conflicts})
	if err != nil {
		return err
	}
	name := time.Now().UTC().Format("20060102T150405Z") + ".yaml"
	return os.WriteFile(filepath.Join(conflictDir, name), data, 0644)
}

// applyField writes value back into the configuration section the conflict
// field names: "settings.<key>", "mcpServers.<name>", or a top-level key.
func applyField(cfg *config.Configuration, field string, value any) error {
	switch {
	case strings.HasPrefix(field, "settings."):
		if cfg.Settings == nil {
			cfg.Settings = map[string]any{}
		}
		cfg.Settings[strings.TrimPrefix(field, "settings.")] = value
	case strings.HasPrefix(field, "mcpServers."):
		name := strings.TrimPrefix(field, "mcpServers.")
		var server config.ServerConfig
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding server value for %q: %w", name, err)
		}
		if err := json.Unmarshal(raw, &server); err != nil {
			return fmt.Errorf("decoding server value for %q: %w", name, err)
		}
		if cfg.MCPServers == nil {
			cfg.MCPServers = map[string]config.ServerConfig{}
		}
		cfg.MCPServers[name] = server
	default:
		if cfg.Extra == nil {
			cfg.Extra = map[string]any{}
		}
		cfg.Extra[field] = value
	}
	return nil
}

// toPlain strips custom marshalling from a value so it round-trips through
// YAML cleanly.
func toPlain(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var plain any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return v
	}
	return plain
}
