package storage

import (
	"errors"
	"io/fs"
	"os"
	"syscall"

	"github.com/starford/foldernotes/internal/apperr"
)

// Store implements Provider on the local file system.
//
// Domain failures are *apperr.Error values; any other OS error is returned
// as is. Mutations are serialized per folder (note operations) or per
// workspace (folder operations) so the sibling check and the change it
// guards are atomic with respect to other callers of the same Store.
type Store struct {
	root  Root
	locks *lockSet
}

// NewStore creates a Store that resolves the workspace through root on every call.
func NewStore(root Root) *Store {
	return &Store{root: root, locks: newLockSet()}
}

// ListFolders returns the visible folders of the workspace.
func (s *Store) ListFolders() ([]string, error) {
	return ListFolders(s.root.Workspace())
}

// ListNotes returns the visible notes of folder.
func (s *Store) ListNotes(folder string) ([]string, error) {
	if err := ValidateName(folder); err != nil {
		return nil, err
	}
	return ListNotes(s.root.Workspace(), folder)
}

// FetchNote reads a note as text.
func (s *Store) FetchNote(folder, note string) (string, error) {
	if err := validateNames(folder, note); err != nil {
		return "", err
	}
	data, err := os.ReadFile(NotePath(s.root.Workspace(), folder, note))
	if err != nil {
		if isNotExist(err) || errors.Is(err, syscall.EISDIR) {
			return "", apperr.NoteNotFound(folder, note)
		}
		return "", err
	}
	return string(data), nil
}

// SaveNote overwrites or creates a note. The parent folder must exist, and a
// new note must not share its NameKey with a sibling.
func (s *Store) SaveNote(folder, note, content string) error {
	if err := validateNames(folder, note); err != nil {
		return err
	}
	ws := s.root.Workspace()
	unlock := s.locks.lock(folderKey(ws, folder))
	defer unlock()

	path := NotePath(ws, folder, note)
	exists, err := IsRegularFile(path)
	if err != nil {
		return err
	}
	if !exists {
		notes, err := ListNotes(ws, folder)
		if err != nil {
			return err
		}
		if collides(notes, note) {
			return apperr.NoteAlreadyExists(folder, note)
		}
	}

	if err := writeAtomic(FolderPath(ws, folder), path, []byte(content)); err != nil {
		if isNotExist(err) {
			return apperr.FolderNotFound(folder)
		}
		return err
	}
	return nil
}

// CreateNote creates a note seeded with NoteTemplate. It fails if a sibling
// note has the same NameKey.
func (s *Store) CreateNote(folder, note string) error {
	if err := validateNames(folder, note); err != nil {
		return err
	}
	ws := s.root.Workspace()
	unlock := s.locks.lock(folderKey(ws, folder))
	defer unlock()

	notes, err := ListNotes(ws, folder)
	if err != nil {
		return err
	}
	if collides(notes, note) {
		return apperr.NoteAlreadyExists(folder, note)
	}

	path := NotePath(ws, folder, note)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrExist):
			return apperr.NoteAlreadyExists(folder, note)
		case isNotExist(err):
			return apperr.FolderNotFound(folder)
		}
		return err
	}
	if _, err := f.WriteString(NoteTemplate(note)); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// RenameNote renames a note inside its folder. Renaming a note to its
// current name is a no-op; a rename that only changes case is rejected.
func (s *Store) RenameNote(folder, note, newName string) error {
	if err := validateNames(folder, note, newName); err != nil {
		return err
	}
	ws := s.root.Workspace()
	unlock := s.locks.lock(folderKey(ws, folder))
	defer unlock()

	src := NotePath(ws, folder, note)
	if newName == note {
		ok, err := IsRegularFile(src)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NoteNotFound(folder, note)
		}
		return nil
	}

	notes, err := ListNotes(ws, folder)
	if err != nil {
		if errors.Is(err, apperr.ErrFolderNotFound) {
			return apperr.NoteNotFound(folder, note)
		}
		return err
	}
	if collides(notes, newName) {
		return apperr.NoteAlreadyExists(folder, newName)
	}

	dst := NotePath(ws, folder, newName)
	taken, err := Exists(dst)
	if err != nil {
		return err
	}
	if taken {
		return apperr.NoteAlreadyExists(folder, newName)
	}

	ok, err := IsRegularFile(src)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NoteNotFound(folder, note)
	}
	if err := os.Rename(src, dst); err != nil {
		if isNotExist(err) {
			return apperr.NoteNotFound(folder, note)
		}
		return err
	}
	return nil
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(folder, note string) error {
	if err := validateNames(folder, note); err != nil {
		return err
	}
	ws := s.root.Workspace()
	unlock := s.locks.lock(folderKey(ws, folder))
	defer unlock()

	path := NotePath(ws, folder, note)
	ok, err := IsRegularFile(path)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NoteNotFound(folder, note)
	}
	if err := os.Remove(path); err != nil {
		if isNotExist(err) {
			return apperr.NoteNotFound(folder, note)
		}
		return err
	}
	return nil
}

// CreateFolder creates an empty folder. It fails if a sibling folder has the
// same NameKey or any entry already occupies the path.
func (s *Store) CreateFolder(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	ws := s.root.Workspace()
	unlock := s.locks.lock(workspaceKey(ws), folderKey(ws, name))
	defer unlock()

	folders, err := ListFolders(ws)
	if err != nil {
		return err
	}
	if collides(folders, name) {
		return apperr.FolderAlreadyExists(name)
	}
	if err := os.Mkdir(FolderPath(ws, name), 0o755); err != nil {
		switch {
		case errors.Is(err, fs.ErrExist):
			return apperr.FolderAlreadyExists(name)
		case isNotExist(err):
			return apperr.WorkspaceNotFound(ws)
		}
		return err
	}
	return nil
}

// RenameFolder renames a folder; its notes move with it in a single OS rename.
func (s *Store) RenameFolder(name, newName string) error {
	if err := validateNames(name, newName); err != nil {
		return err
	}
	ws := s.root.Workspace()
	unlock := s.locks.lock(workspaceKey(ws), folderKey(ws, name), folderKey(ws, newName))
	defer unlock()

	src := FolderPath(ws, name)
	if newName == name {
		ok, err := IsDirectory(src)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.FolderNotFound(name)
		}
		return nil
	}

	folders, err := ListFolders(ws)
	if err != nil {
		if errors.Is(err, apperr.ErrWorkspaceNotFound) {
			return apperr.FolderNotFound(name)
		}
		return err
	}
	if collides(folders, newName) {
		return apperr.FolderAlreadyExists(newName)
	}

	dst := FolderPath(ws, newName)
	taken, err := Exists(dst)
	if err != nil {
		return err
	}
	if taken {
		return apperr.FolderAlreadyExists(newName)
	}

	ok, err := IsDirectory(src)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.FolderNotFound(name)
	}
	if err := os.Rename(src, dst); err != nil {
		if isNotExist(err) {
			return apperr.FolderNotFound(name)
		}
		return err
	}
	return nil
}

// DeleteFolder removes a folder and everything in it.
func (s *Store) DeleteFolder(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	ws := s.root.Workspace()
	unlock := s.locks.lock(workspaceKey(ws), folderKey(ws, name))
	defer unlock()

	path := FolderPath(ws, name)
	ok, err := IsDirectory(path)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.FolderNotFound(name)
	}
	return os.RemoveAll(path)
}

// writeAtomic writes content to path via a hidden temp file in dir:
// tmp file → fsync → rename. dir is never created. An existing file keeps
// its permission bits; new files get 0644.
func writeAtomic(dir, path string, content []byte) error {
	mode := fs.FileMode(0o644)
	if fi, err := os.Lstat(path); err == nil && fi.Mode().IsRegular() {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, ".foldernotes-tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	success = true
	return nil
}
