// Package storage maps a workspace directory onto a case-insensitive
// namespace of folders and Markdown notes.
package storage

// Provider is the interface for workspace folder and note operations.
// Names are display names, already trimmed by the caller.
type Provider interface {
	// ListFolders returns the visible top-level folders of the workspace.
	ListFolders() ([]string, error)
	// ListNotes returns the visible notes of folder, without the .md extension.
	ListNotes(folder string) ([]string, error)
	// FetchNote returns the content of a note.
	FetchNote(folder, note string) (string, error)
	// SaveNote atomically overwrites (or creates) a note.
	SaveNote(folder, note, content string) error
	// CreateNote creates a note seeded with NoteTemplate(note).
	CreateNote(folder, note string) error
	// RenameNote renames a note within its folder.
	RenameNote(folder, note, newName string) error
	// DeleteNote removes a note.
	DeleteNote(folder, note string) error
	// CreateFolder creates an empty folder.
	CreateFolder(name string) error
	// RenameFolder renames a folder together with all of its notes.
	RenameFolder(name, newName string) error
	// DeleteFolder removes a folder and its contents.
	DeleteFolder(name string) error
}

// Root supplies the active workspace directory. It is consulted once per
// operation; the store never remembers it between calls.
type Root interface {
	Workspace() string
}

// StaticRoot is a Root that always returns the same directory.
type StaticRoot string

// Workspace returns the directory.
func (r StaticRoot) Workspace() string { return string(r) }

var _ Provider = (*Store)(nil)
