// Package apperr defines the domain error taxonomy shared by the store and its boundaries.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidName   = errors.New("invalid name")
)

// Kind identifies one variant of the domain error taxonomy.
type Kind int

const (
	KindUnknown Kind = iota
	KindWorkspaceNotFound
	KindFolderNotFound
	KindNoteNotFound
	KindFolderAlreadyExists
	KindNoteAlreadyExists
	KindInvalidName
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	KindWorkspaceNotFound:   "workspace_not_found",
	KindFolderNotFound:      "folder_not_found",
	KindNoteNotFound:        "note_not_found",
	KindFolderAlreadyExists: "folder_already_exists",
	KindNoteAlreadyExists:   "note_already_exists",
	KindInvalidName:         "invalid_name",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// NotFound reports whether k is one of the *NotFound kinds.
func (k Kind) NotFound() bool {
	return k == KindWorkspaceNotFound || k == KindFolderNotFound || k == KindNoteNotFound
}

// AlreadyExists reports whether k is one of the *AlreadyExists kinds.
func (k Kind) AlreadyExists() bool {
	return k == KindFolderAlreadyExists || k == KindNoteAlreadyExists
}

// Error is a domain failure carrying the offending name(s).
// Name is the folder name for folder kinds, the note name for note kinds
// and the workspace path for KindWorkspaceNotFound.
type Error struct {
	Kind   Kind
	Name   string
	Folder string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindWorkspaceNotFound:
		return fmt.Sprintf("Workspace '%s' not found", e.Name)
	case KindFolderNotFound:
		return fmt.Sprintf("Folder '%s' not found", e.Name)
	case KindNoteNotFound:
		return fmt.Sprintf("Note '%s' not found in folder '%s'", e.Name, e.Folder)
	case KindFolderAlreadyExists:
		return fmt.Sprintf("Folder '%s' already exists", e.Name)
	case KindNoteAlreadyExists:
		return fmt.Sprintf("Note '%s' already exists in folder '%s'", e.Name, e.Folder)
	case KindInvalidName:
		return fmt.Sprintf("Invalid name '%s'", e.Name)
	}
	return e.Kind.String()
}

// Is matches the umbrella sentinels and any *Error of the same kind,
// so errors.Is(err, ErrFolderNotFound) works regardless of the names carried.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind.NotFound()
	case ErrAlreadyExists:
		return e.Kind.AlreadyExists()
	case ErrInvalidName:
		return e.Kind == KindInvalidName
	}
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// Per-kind sentinels for errors.Is.
var (
	ErrWorkspaceNotFound   = &Error{Kind: KindWorkspaceNotFound}
	ErrFolderNotFound      = &Error{Kind: KindFolderNotFound}
	ErrNoteNotFound        = &Error{Kind: KindNoteNotFound}
	ErrFolderAlreadyExists = &Error{Kind: KindFolderAlreadyExists}
	ErrNoteAlreadyExists   = &Error{Kind: KindNoteAlreadyExists}
)

func WorkspaceNotFound(path string) error {
	return &Error{Kind: KindWorkspaceNotFound, Name: path}
}

func FolderNotFound(folder string) error {
	return &Error{Kind: KindFolderNotFound, Name: folder}
}

func NoteNotFound(folder, note string) error {
	return &Error{Kind: KindNoteNotFound, Name: note, Folder: folder}
}

func FolderAlreadyExists(folder string) error {
	return &Error{Kind: KindFolderAlreadyExists, Name: folder}
}

func NoteAlreadyExists(folder, note string) error {
	return &Error{Kind: KindNoteAlreadyExists, Name: note, Folder: folder}
}

func InvalidName(name string) error {
	return &Error{Kind: KindInvalidName, Name: name}
}

// KindOf returns the domain kind of err, or KindUnknown for unexpected errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
