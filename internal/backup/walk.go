package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// walkFiles lists every regular file under root, relative paths in stable
// sorted order. The traversal uses an explicit work stack so arbitrarily
// deep trees cannot exhaust the goroutine stack.
func walkFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("source directory %s does not exist", root)
		}
		return nil, fmt.Errorf("reading source directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", root)
	}

	var files []string
	stack := []string{""}
	for len(stack) > 0 {
		rel := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(filepath.Join(root, rel))
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", filepath.Join(root, rel), err)
		}

		// Push in reverse so children pop in lexical order.
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() > entries[j].Name() })
		for _, entry := range entries {
			child := filepath.Join(rel, entry.Name())
			switch {
			case entry.IsDir():
				stack = append(stack, child)
			case entry.Type().IsRegular():
				files = append(files, child)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}
