// Package merge combines N configurations into one under a selectable
// conflict-resolution strategy.
package merge

import (
	"fmt"
	"sort"

	"github.com/peguesj/ccem/internal/config"
)

// Strategy names a conflict-resolution policy.
type Strategy string

const (
	// StrategyDefault resolves every conflict last-write-wins by source order.
	StrategyDefault Strategy = "default"
	// StrategyConservative never overwrites: conflicting keys are withheld
	// from the output and left for manual review.
	StrategyConservative Strategy = "conservative"
	// StrategyHybrid auto-resolves last-write-wins except for critical
	// fields (server enabled flags, deny/allow-style settings keys).
	StrategyHybrid Strategy = "hybrid"
	// StrategyRecommended prefers the most complete source value and falls
	// back to conservative behavior when no value stands out.
	StrategyRecommended Strategy = "recommended"
)

// Strategies lists all valid strategy names.
func Strategies() []Strategy {
	return []Strategy{StrategyDefault, StrategyConservative, StrategyHybrid, StrategyRecommended}
}

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(name)
	switch s {
	case StrategyDefault, StrategyConservative, StrategyHybrid, StrategyRecommended:
		return s, nil
	}
	return "", fmt.Errorf("unknown merge strategy %q (valid: default, conservative, hybrid, recommended)", name)
}

// Conflict records a field where two or more sources disagree. Values holds
// one entry per source that defines the field, in input order, duplicates
// preserved; Sources holds the matching indexes into the input slice, so
// Values[i] came from configs[Sources[i]]. Resolution is meaningful only
// when Resolved is true.
type Conflict struct {
	Field      string
	Values     []any
	Sources    []int
	Resolution any
	Resolved   bool
}

// Stats summarizes a merge run.
type Stats struct {
	ProjectsAnalyzed  int
	ConflictsDetected int
	AutoResolved      int
}

// Result is the output of Merge. ConflictsDetected always equals
// len(Conflicts); AutoResolved counts conflicts whose Resolution is set.
type Result struct {
	Merged    config.Configuration
	Conflicts []Conflict
	Stats     Stats
}

// Unresolved returns the conflicts still requiring manual review.
func (r *Result) Unresolved() []Conflict {
	var out []Conflict
	for _, c := range r.Conflicts {
		if !c.Resolved {
			out = append(out, c)
		}
	}
	return out
}

// Merge combines configs in input order. Later sources win last-write-wins
// tie-breaks. It never fails for structurally valid configurations; callers
// validate sources before merging.
func Merge(configs []config.Configuration, strategy Strategy) (*Result, error) {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}

	result := &Result{
		Merged: config.New(),
		Stats:  Stats{ProjectsAnalyzed: len(configs)},
	}

	mergePermissions(configs, result)
	mergeServers(configs, strategy, result)
	mergeKeyed(configs, strategy, result, settingsSection)
	mergeKeyed(configs, strategy, result, extraSection)

	result.Stats.ConflictsDetected = len(result.Conflicts)
	return result, nil
}

// mergePermissions unions all permission sets, deduplicated in first-seen
// order. Permissions are additive and never conflict.
func mergePermissions(configs []config.Configuration, result *Result) {
	seen := make(map[string]bool)
	for _, cfg := range configs {
		for _, p := range cfg.Permissions {
			if seen[p] {
				continue
			}
			seen[p] = true
			result.Merged.Permissions = append(result.Merged.Permissions, p)
		}
	}
}

func mergeServers(configs []config.Configuration, strategy Strategy, result *Result) {
	names := make([]string, 0)
	candidates := make(map[string][]config.ServerConfig)
	origins := make(map[string][]int)
	for i, cfg := range configs {
		sorted := make([]string, 0, len(cfg.MCPServers))
		for name := range cfg.MCPServers {
			sorted = append(sorted, name)
		}
		sort.Strings(sorted)
		for _, name := range sorted {
			if _, ok := candidates[name]; !ok {
				names = append(names, name)
			}
			candidates[name] = append(candidates[name], cfg.MCPServers[name])
			origins[name] = append(origins[name], i)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		values := candidates[name]
		if allServersEqual(values) {
			result.Merged.MCPServers[name] = values[0]
			continue
		}

		conflict := Conflict{Field: "mcpServers." + name, Sources: origins[name]}
		for _, v := range values {
			conflict.Values = append(conflict.Values, v)
		}

		winner, resolved := resolveServer(values, strategy)
		if resolved {
			conflict.Resolution = winner
			conflict.Resolved = true
			result.Merged.MCPServers[name] = winner
			result.Stats.AutoResolved++
		}
		result.Conflicts = append(result.Conflicts, conflict)
	}
}

func resolveServer(values []config.ServerConfig, strategy Strategy) (config.ServerConfig, bool) {
	switch strategy {
	case StrategyDefault:
		return values[len(values)-1], true
	case StrategyHybrid:
		if enabledDisagrees(values) {
			return config.ServerConfig{}, false
		}
		return values[len(values)-1], true
	case StrategyRecommended:
		if idx, ok := mostComplete(len(values), func(i int) int { return serverCompleteness(values[i]) }); ok {
			return values[idx], true
		}
	}
	return config.ServerConfig{}, false
}

type keyedSection struct {
	prefix string
	get    func(config.Configuration) map[string]any
	set    func(*config.Configuration, string, any)
}

var settingsSection = keyedSection{
	prefix: "settings.",
	get:    func(c config.Configuration) map[string]any { return c.Settings },
	set:    func(c *config.Configuration, k string, v any) { c.Settings[k] = v },
}

var extraSection = keyedSection{
	prefix: "",
	get:    func(c config.Configuration) map[string]any { return c.Extra },
	set:    func(c *config.Configuration, k string, v any) { c.Extra[k] = v },
}

// mergeKeyed applies the per-key merge logic shared by settings and
// unrecognized top-level fields.
func mergeKeyed(configs []config.Configuration, strategy Strategy, result *Result, section keyedSection) {
	keys := make([]string, 0)
	candidates := make(map[string][]any)
	origins := make(map[string][]int)
	for i, cfg := range configs {
		m := section.get(cfg)
		sorted := make([]string, 0, len(m))
		for k := range m {
			sorted = append(sorted, k)
		}
		sort.Strings(sorted)
		for _, k := range sorted {
			if _, ok := candidates[k]; !ok {
				keys = append(keys, k)
			}
			candidates[k] = append(candidates[k], m[k])
			origins[k] = append(origins[k], i)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		values := candidates[key]
		if allEqual(values) {
			section.set(&result.Merged, key, values[0])
			continue
		}

		conflict := Conflict{Field: section.prefix + key, Values: values, Sources: origins[key]}
		winner, resolved := resolveValue(key, values, strategy)
		if resolved {
			conflict.Resolution = winner
			conflict.Resolved = true
			section.set(&result.Merged, key, winner)
			result.Stats.AutoResolved++
		}
		result.Conflicts = append(result.Conflicts, conflict)
	}
}

func resolveValue(key string, values []any, strategy Strategy) (any, bool) {
	switch strategy {
	case StrategyDefault:
		return values[len(values)-1], true
	case StrategyHybrid:
		if criticalKey(key) {
			return nil, false
		}
		return values[len(values)-1], true
	case StrategyRecommended:
		if idx, ok := mostComplete(len(values), func(i int) int { return valueCompleteness(values[i]) }); ok {
			return values[idx], true
		}
	}
	return nil, false
}

func allServersEqual(values []config.ServerConfig) bool {
	for _, v := range values[1:] {
		if !config.Equal(values[0], v) {
			return false
		}
	}
	return true
}

func allEqual(values []any) bool {
	for _, v := range values[1:] {
		if !config.Equal(values[0], v) {
			return false
		}
	}
	return true
}

func enabledDisagrees(values []config.ServerConfig) bool {
	for _, v := range values[1:] {
		if v.Enabled != values[0].Enabled {
			return true
		}
	}
	return false
}
