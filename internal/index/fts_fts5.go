//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			folder UNINDEXED,
			note UNINDEXED,
			title,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, folder, note, title, body string) error {
	if err := ftsDelete(tx, folder, note); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO notes_fts (folder, note, title, body) VALUES (?, ?, ?, ?)`,
		folder, note, title, body)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, folder, note string) error {
	_, err := tx.Exec(`DELETE FROM notes_fts WHERE folder = ? AND note = ?`, folder, note)
	return err
}

func ftsRenameNote(tx *sql.Tx, folder, note, newName string) error {
	_, err := tx.Exec(`UPDATE notes_fts SET note = ? WHERE folder = ? AND note = ?`, newName, folder, note)
	return err
}

func ftsRenameFolder(tx *sql.Tx, folder, newName string) error {
	_, err := tx.Exec(`UPDATE notes_fts SET folder = ? WHERE folder = ?`, newName, folder)
	return err
}

func ftsDeleteFolder(tx *sql.Tx, folder string) error {
	_, err := tx.Exec(`DELETE FROM notes_fts WHERE folder = ?`, folder)
	return err
}

func ftsReset(tx *sql.Tx) error {
	_, err := tx.Exec(`DELETE FROM notes_fts`)
	return err
}

// Search returns notes whose title or body contain every word of query,
// best matches first, each with a highlighted body snippet.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	expr := matchExpr(query)
	if expr == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	rows, err := db.conn.Query(`
		SELECT folder,
		       note,
		       title,
		       snippet(notes_fts, 3, '<b>', '</b>', '...', 64)
		FROM notes_fts
		WHERE notes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, expr, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
