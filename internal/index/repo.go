package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Key identifies a note by folder and note name.
type Key struct {
	Folder string
	Note   string
}

// NoteRow represents a row in the notes table.
type NoteRow struct {
	Folder    string
	Note      string
	Title     string
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Folder  string `json:"folder"`
	Note    string `json:"note"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertNote inserts or replaces a note and its FTS entry within a transaction.
func (db *DB) UpsertNote(n NoteRow, body string) error {
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = time.Now().UTC()
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	// Body lives in the notes table too, for the LIKE fallback.
	_, err = tx.Exec(`
		INSERT INTO notes (folder, note, title, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(folder, note) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, n.Folder, n.Note, n.Title, n.Checksum, body, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	if err := ftsUpsert(tx, n.Folder, n.Note, n.Title, body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteNote removes a note and its FTS entry.
func (db *DB) DeleteNote(folder, note string) error {
	return db.inTx(func(tx *sql.Tx) error {
		if err := ftsDelete(tx, folder, note); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM notes WHERE folder = ? AND note = ?`, folder, note)
		return err
	})
}

// RenameNote moves a note row to a new name within its folder.
func (db *DB) RenameNote(folder, note, newName string) error {
	return db.inTx(func(tx *sql.Tx) error {
		if err := ftsRenameNote(tx, folder, note, newName); err != nil {
			return err
		}
		_, err := tx.Exec(`UPDATE notes SET note = ? WHERE folder = ? AND note = ?`, newName, folder, note)
		return err
	})
}

// RenameFolder moves every row of folder to newName.
func (db *DB) RenameFolder(folder, newName string) error {
	return db.inTx(func(tx *sql.Tx) error {
		if err := ftsRenameFolder(tx, folder, newName); err != nil {
			return err
		}
		_, err := tx.Exec(`UPDATE notes SET folder = ? WHERE folder = ?`, newName, folder)
		return err
	})
}

// DeleteFolder removes every row of folder.
func (db *DB) DeleteFolder(folder string) error {
	return db.inTx(func(tx *sql.Tx) error {
		if err := ftsDeleteFolder(tx, folder); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM notes WHERE folder = ?`, folder)
		return err
	})
}

// Reset empties the index. Used when the active workspace changes.
func (db *DB) Reset() error {
	return db.inTx(func(tx *sql.Tx) error {
		if err := ftsReset(tx); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM notes`)
		return err
	})
}

// GetChecksum returns the stored checksum for a note, or empty string if not found.
func (db *DB) GetChecksum(folder, note string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE folder = ? AND note = ?`, folder, note).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns the checksum of every indexed note.
func (db *DB) AllChecksums() (map[Key]string, error) {
	rows, err := db.conn.Query(`SELECT folder, note, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[Key]string)
	for rows.Next() {
		var k Key
		var cs string
		if err := rows.Scan(&k.Folder, &k.Note, &cs); err != nil {
			return nil, err
		}
		out[k] = cs
	}
	return out, rows.Err()
}

// Count returns the number of indexed notes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

func (db *DB) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck
	if err := fn(tx); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	return tx.Commit()
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Folder, &r.Note, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
