package storage

import (
	"golang.org/x/text/cases"
)

// fold is stateless and safe for concurrent use.
var fold = cases.Fold()

// NameKey returns the case-folded form of name used for uniqueness checks.
// The original casing is what gets written to disk.
func NameKey(name string) string {
	return fold.String(name)
}

// collides reports whether candidate folds to the same key as any of existing.
func collides(existing []string, candidate string) bool {
	key := NameKey(candidate)
	for _, name := range existing {
		if NameKey(name) == key {
			return true
		}
	}
	return false
}
