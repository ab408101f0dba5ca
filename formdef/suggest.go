package formdef

import (
	"github.com/agnivade/levenshtein"
)

// Suggest returns the candidate closest to name, or "" when none is within
// a third of name's length (at least 2 edits).
func Suggest(name string, candidates []string) string {
	limit := max(2, len(name)/3)
	best, bestDist := "", limit+1
	for _, c := range candidates {
		if c == "" {
			continue
		}
		d := levenshtein.ComputeDistance(lower(name), lower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
