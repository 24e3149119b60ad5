// Package diff computes structural differences between two configurations.
package diff

import (
	"sort"

	"github.com/peguesj/ccem/internal/config"
)

// Change records a field present in both configurations with unequal values.
type Change struct {
	Path   string
	Before any
	After  any
}

// Diff is the result of comparing two configurations. Every dotted path
// appears in exactly one of Added, Removed, or Modified.
type Diff struct {
	Added     []string
	Removed   []string
	Modified  []Change
	Identical bool
}

// Compute compares a against b. Permissions use set semantics, mcpServers
// recurse one level into server fields, settings and unrecognized top-level
// fields compare whole values.
func Compute(a, b config.Configuration) Diff {
	var d Diff

	diffPermissions(a.Permissions, b.Permissions, &d)
	diffServers(a.MCPServers, b.MCPServers, &d)
	diffValueMap("settings.", anyMap(a.Settings), anyMap(b.Settings), &d)
	diffValueMap("", a.Extra, b.Extra, &d)

	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Slice(d.Modified, func(i, j int) bool { return d.Modified[i].Path < d.Modified[j].Path })

	d.Identical = len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
	return d
}

// diffPermissions reports membership changes only. A changed permission
// string is one removal plus one addition, never a modification.
func diffPermissions(a, b []string, d *Diff) {
	inA := toSet(a)
	inB := toSet(b)

	for _, p := range b {
		if !inA[p] {
			d.Added = append(d.Added, "permissions."+p)
		}
	}
	for _, p := range a {
		if !inB[p] {
			d.Removed = append(d.Removed, "permissions."+p)
		}
	}
}

func diffServers(a, b map[string]config.ServerConfig, d *Diff) {
	for name, bs := range b {
		as, ok := a[name]
		if !ok {
			d.Added = append(d.Added, "mcpServers."+name)
			continue
		}
		if config.Equal(as, bs) {
			continue
		}
		// One level deep: each differing sub-field is its own entry.
		af := as.Fields()
		bf := bs.Fields()
		for _, sub := range unionKeys(af, bf) {
			before, inBefore := af[sub]
			after, inAfter := bf[sub]
			if inBefore && inAfter && config.Equal(before, after) {
				continue
			}
			d.Modified = append(d.Modified, Change{
				Path:   "mcpServers." + name + "." + sub,
				Before: before,
				After:  after,
			})
		}
	}
	for name := range a {
		if _, ok := b[name]; !ok {
			d.Removed = append(d.Removed, "mcpServers."+name)
		}
	}
}

// diffValueMap compares two maps by whole-value structural equality, one
// entry per differing key.
func diffValueMap(prefix string, a, b map[string]any, d *Diff) {
	for key, bv := range b {
		av, ok := a[key]
		if !ok {
			d.Added = append(d.Added, prefix+key)
			continue
		}
		if !config.Equal(av, bv) {
			d.Modified = append(d.Modified, Change{Path: prefix + key, Before: av, After: bv})
		}
	}
	for key := range a {
		if _, ok := b[key]; !ok {
			d.Removed = append(d.Removed, prefix+key)
		}
	}
}

func anyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}

func unionKeys(a, b map[string]any) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
