package generation

import (
	"strings"

	"golang.org/x/text/cases"
)

// ParseWeakAreas splits a comma-separated list of weak areas, trimming
// whitespace, dropping blanks and removing case-insensitive duplicates.
// The first spelling of each area wins.
func ParseWeakAreas(raw string) []string {
	return normalizeWeakAreas(strings.Split(raw, ","))
}

func normalizeWeakAreas(areas []string) []string {
	fold := cases.Fold()
	seen := make(map[string]bool, len(areas))
	out := make([]string, 0, len(areas))
	for _, a := range areas {
		a = strings.Join(strings.Fields(a), " ")
		if a == "" {
			continue
		}
		key := fold.String(a)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}
