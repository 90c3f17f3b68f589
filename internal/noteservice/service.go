// Package noteservice coordinates the workspace store, the search index and
// change notification.
package noteservice

import (
	"context"
	"log/slog"

	"github.com/starford/foldernotes/internal/apperr"
	"github.com/starford/foldernotes/internal/checksum"
	"github.com/starford/foldernotes/internal/index"
	"github.com/starford/foldernotes/internal/parser"
	"github.com/starford/foldernotes/internal/storage"
)

// Workspace selects the active workspace directory.
type Workspace interface {
	Workspace() string
	Switch(path string) error
}

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Folder   string `json:"folder"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Checksum string `json:"checksum"`
}

// Service wraps a storage.Provider. After each successful mutation it updates
// the index and notifies subscribers; failed operations change neither.
// Index errors are logged and never fail the operation.
type Service struct {
	store     storage.Provider
	ws        Workspace
	db        index.NoteIndex
	notifiers []Notifier
	logger    *slog.Logger
}

// NewService creates a new note service.
func NewService(store storage.Provider, ws Workspace, db index.NoteIndex, logger *slog.Logger, notifiers ...Notifier) *Service {
	return &Service{store: store, ws: ws, db: db, notifiers: notifiers, logger: logger}
}

// Workspace returns the active workspace directory.
func (s *Service) Workspace(_ context.Context) string {
	return s.ws.Workspace()
}

// SwitchWorkspace makes path the active workspace, rebuilds the index from
// it and returns the stored (absolute) path.
func (s *Service) SwitchWorkspace(_ context.Context, path string) (string, error) {
	ok, err := storage.IsDirectory(path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.WorkspaceNotFound(path)
	}
	if err := s.ws.Switch(path); err != nil {
		return "", err
	}
	current := s.ws.Workspace()
	s.logger.Info("workspace switched", slog.String("workspace", current))

	s.reindex("reset", func(db index.NoteIndex) error {
		if err := db.Reset(); err != nil {
			return err
		}
		return index.Sync(db, s.store, s.logger)
	})
	s.publish(Event{Type: EventSwitchedWorkspace, Workspace: current})
	return current, nil
}

// ListFolders returns the visible folders of the workspace.
func (s *Service) ListFolders(_ context.Context) ([]string, error) {
	return s.store.ListFolders()
}

// ListNotes returns the visible notes of folder.
func (s *Service) ListNotes(_ context.Context, folder string) ([]string, error) {
	return s.store.ListNotes(folder)
}

// FetchNote reads a note and derives its title and checksum.
func (s *Service) FetchNote(_ context.Context, folder, note string) (*NoteDetail, error) {
	content, err := s.store.FetchNote(folder, note)
	if err != nil {
		return nil, err
	}
	return buildNoteDetail(folder, note, content), nil
}

// SaveNote overwrites a note. When ifMatch is not empty the current content
// must hash to it, otherwise apperr.ErrConflict is returned.
func (s *Service) SaveNote(_ context.Context, folder, note, content, ifMatch string) (*NoteDetail, error) {
	if ifMatch != "" {
		current, err := s.store.FetchNote(folder, note)
		if err != nil {
			return nil, err
		}
		if !checksum.Match(current, ifMatch) {
			return nil, apperr.ErrConflict
		}
	}
	if err := s.store.SaveNote(folder, note, content); err != nil {
		return nil, err
	}
	s.reindex("save", func(db index.NoteIndex) error {
		// Saving unchanged content leaves the row as it is.
		if cs, err := db.GetChecksum(folder, note); err == nil && cs == checksum.String(content) {
			return nil
		}
		return index.IndexNote(db, folder, note, content)
	})
	s.publish(Event{Type: EventSavedNote, Folder: folder, Note: note})
	return buildNoteDetail(folder, note, content), nil
}

// CreateNote creates a note seeded with a heading of its name.
func (s *Service) CreateNote(_ context.Context, folder, note string) (*NoteDetail, error) {
	if err := s.store.CreateNote(folder, note); err != nil {
		return nil, err
	}
	content := storage.NoteTemplate(note)
	s.reindex("create", func(db index.NoteIndex) error {
		return index.IndexNote(db, folder, note, content)
	})
	s.publish(Event{Type: EventCreatedNote, Folder: folder, Note: note})
	return buildNoteDetail(folder, note, content), nil
}

// RenameNote renames a note within its folder.
func (s *Service) RenameNote(_ context.Context, folder, note, newName string) error {
	if err := s.store.RenameNote(folder, note, newName); err != nil {
		return err
	}
	if newName == note {
		return nil
	}
	s.reindex("rename", func(db index.NoteIndex) error {
		return db.RenameNote(folder, note, newName)
	})
	s.publish(Event{Type: EventRenamedNote, Folder: folder, Note: newName, OldName: note})
	return nil
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(_ context.Context, folder, note string) error {
	if err := s.store.DeleteNote(folder, note); err != nil {
		return err
	}
	s.reindex("delete", func(db index.NoteIndex) error {
		return db.DeleteNote(folder, note)
	})
	s.publish(Event{Type: EventDeletedNote, Folder: folder, Note: note})
	return nil
}

// CreateFolder creates an empty folder.
func (s *Service) CreateFolder(_ context.Context, name string) error {
	if err := s.store.CreateFolder(name); err != nil {
		return err
	}
	s.publish(Event{Type: EventCreatedFolder, Folder: name})
	return nil
}

// RenameFolder renames a folder together with its notes.
func (s *Service) RenameFolder(_ context.Context, name, newName string) error {
	if err := s.store.RenameFolder(name, newName); err != nil {
		return err
	}
	if newName == name {
		return nil
	}
	s.reindex("rename folder", func(db index.NoteIndex) error {
		return db.RenameFolder(name, newName)
	})
	s.publish(Event{Type: EventRenamedFolder, Folder: newName, OldName: name})
	return nil
}

// DeleteFolder removes a folder and its notes.
func (s *Service) DeleteFolder(_ context.Context, name string) error {
	if err := s.store.DeleteFolder(name); err != nil {
		return err
	}
	s.reindex("delete folder", func(db index.NoteIndex) error {
		return db.DeleteFolder(name)
	})
	s.publish(Event{Type: EventDeletedFolder, Folder: name})
	return nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Sync reconciles the index with the active workspace.
func (s *Service) Sync(_ context.Context) error {
	return index.Sync(s.db, s.store, s.logger)
}

func (s *Service) reindex(op string, fn func(db index.NoteIndex) error) {
	if err := fn(s.db); err != nil {
		s.logger.Warn("index update failed", slog.String("op", op), slog.String("error", err.Error()))
	}
}

func (s *Service) publish(e Event) {
	s.logger.Debug("workspace changed",
		slog.String("type", e.Type),
		slog.String("folder", e.Folder),
		slog.String("note", e.Note),
	)
	for _, n := range s.notifiers {
		n.Notify(e)
	}
}

// buildNoteDetail constructs a NoteDetail from content without re-reading the file.
func buildNoteDetail(folder, note, content string) *NoteDetail {
	title := note
	if res, err := parser.Parse([]byte(content)); err == nil && res.Title != "" {
		title = res.Title
	}
	return &NoteDetail{
		Folder:   folder,
		Name:     note,
		Title:    title,
		Content:  content,
		Checksum: checksum.String(content),
	}
}
