//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// Without FTS5 the body column of notes is searched with LIKE, so the
// fts hooks have nothing to maintain.

func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _, _, _, _ string) error { return nil }

func ftsDelete(_ *sql.Tx, _, _ string) error { return nil }

func ftsRenameNote(_ *sql.Tx, _, _, _ string) error { return nil }

func ftsRenameFolder(_ *sql.Tx, _, _ string) error { return nil }

func ftsDeleteFolder(_ *sql.Tx, _ string) error { return nil }

func ftsReset(_ *sql.Tx) error { return nil }

// Search matches query as a literal substring of the title, body or note
// name. Used when FTS5 is not compiled in.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	like := likePattern(query)
	rows, err := db.conn.Query(`
		SELECT folder, note, title, substr(body, 1, 200)
		FROM notes
		WHERE title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\' OR note LIKE ? ESCAPE '\'
		ORDER BY folder, note
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
