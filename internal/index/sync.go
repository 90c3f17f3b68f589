package index

import (
	"errors"
	"log/slog"
	"time"

	"github.com/starford/foldernotes/internal/apperr"
	"github.com/starford/foldernotes/internal/checksum"
	"github.com/starford/foldernotes/internal/parser"
	"github.com/starford/foldernotes/internal/storage"
)

// Sync walks the workspace and brings the index up to date:
//   - new/changed notes are parsed and upserted
//   - notes no longer on disk are deleted from the index
//
// A missing workspace is treated as empty.
func Sync(db NoteIndex, store storage.Provider, logger *slog.Logger) error {
	folders, err := store.ListFolders()
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	var indexed int
	disk := make(map[Key]struct{})
	for _, folder := range folders {
		notes, err := store.ListNotes(folder)
		if err != nil {
			logger.Warn("sync: list failed", slog.String("folder", folder), slog.String("error", err.Error()))
			continue
		}
		for _, note := range notes {
			k := Key{Folder: folder, Note: note}
			disk[k] = struct{}{}

			content, err := store.FetchNote(folder, note)
			if err != nil {
				logger.Warn("sync: read failed", slog.String("folder", folder), slog.String("note", note), slog.String("error", err.Error()))
				continue
			}
			if checksums[k] == checksum.String(content) {
				continue
			}
			if err := IndexNote(db, folder, note, content); err != nil {
				logger.Warn("sync: index failed", slog.String("folder", folder), slog.String("note", note), slog.String("error", err.Error()))
				continue
			}
			indexed++
			logger.Debug("sync: indexed", slog.String("folder", folder), slog.String("note", note))
		}
	}

	var removed int
	for k := range checksums {
		if _, ok := disk[k]; ok {
			continue
		}
		if err := db.DeleteNote(k.Folder, k.Note); err != nil {
			logger.Warn("sync: delete failed", slog.String("folder", k.Folder), slog.String("note", k.Note), slog.String("error", err.Error()))
			continue
		}
		removed++
	}

	logger.Info("index synced",
		slog.Int("notes", len(disk)),
		slog.Int("indexed", indexed),
		slog.Int("removed", removed),
	)
	return nil
}

// IndexNote parses content and upserts it into db. Notes without a heading
// or frontmatter title are titled by their name.
func IndexNote(db NoteIndex, folder, note, content string) error {
	res, err := parser.Parse([]byte(content))
	if err != nil {
		return err
	}
	title := res.Title
	if title == "" {
		title = note
	}
	row := NoteRow{
		Folder:    folder,
		Note:      note,
		Title:     title,
		Checksum:  checksum.String(content),
		UpdatedAt: time.Now().UTC(),
	}
	return db.UpsertNote(row, res.Body)
}
