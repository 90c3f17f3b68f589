package index

import "strings"

const defaultSearchLimit = 20

// matchExpr turns free text into an FTS5 MATCH expression: every word is
// quoted as a literal string and all of them must match.
func matchExpr(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}

// likePattern builds a LIKE pattern for a substring match, escaping the
// wildcards with a backslash.
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(query)) + "%"
}
