package merge

import (
	"strings"

	"github.com/peguesj/ccem/internal/config"
)

// criticalKey reports whether a settings key is safety-relevant. Conflicts
// on these are escalated for manual review under the hybrid strategy.
func criticalKey(key string) bool {
	k := strings.ToLower(key)
	for _, marker := range []string{"deny", "allow", "permission", "block"} {
		if strings.Contains(k, marker) {
			return true
		}
	}
	return false
}

// mostComplete returns the index of the strictly most complete candidate.
// A tie for the maximum means no confidence: the caller falls back to
// conservative behavior.
func mostComplete(n int, score func(int) int) (int, bool) {
	best, bestScore, tied := 0, -1, false
	for i := 0; i < n; i++ {
		s := score(i)
		switch {
		case s > bestScore:
			best, bestScore, tied = i, s, false
		case s == bestScore:
			tied = true
		}
	}
	if tied {
		return 0, false
	}
	return best, true
}

// serverCompleteness counts populated optional fields of a server entry.
func serverCompleteness(s config.ServerConfig) int {
	score := 0
	for key, v := range s.Fields() {
		if key == "enabled" {
			continue
		}
		score += valueCompleteness(v)
	}
	return score
}

// valueCompleteness sizes an arbitrary JSON value: maps by key count,
// arrays by length, scalars as one, null as zero.
func valueCompleteness(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case map[string]any:
		total := 1
		for _, nested := range t {
			total += valueCompleteness(nested)
		}
		return total
	case map[string]string:
		return 1 + len(t)
	case []any:
		total := 1
		for _, nested := range t {
			total += valueCompleteness(nested)
		}
		return total
	case []string:
		return 1 + len(t)
	case string:
		if t == "" {
			return 0
		}
		return 1
	default:
		return 1
	}
}
