package storage

import (
	"os"

	"github.com/starford/foldernotes/internal/apperr"
)

// ListFolders returns the names of the visible directories directly inside
// workspace, in directory read order.
func ListFolders(workspace string) ([]string, error) {
	if workspace == "" {
		return nil, apperr.WorkspaceNotFound(workspace)
	}
	entries, err := os.ReadDir(workspace)
	if err != nil {
		if isNotExist(err) {
			return nil, apperr.WorkspaceNotFound(workspace)
		}
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || IsHidden(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

// ListNotes returns the visible Markdown notes of folder with the extension
// stripped, in directory read order.
func ListNotes(workspace, folder string) ([]string, error) {
	if workspace == "" {
		return nil, apperr.FolderNotFound(folder)
	}
	entries, err := os.ReadDir(FolderPath(workspace, folder))
	if err != nil {
		if isNotExist(err) {
			return nil, apperr.FolderNotFound(folder)
		}
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !hasMarkdownExt(name) || IsHidden(name) {
			continue
		}
		out = append(out, name[:len(name)-len(MarkdownExt)])
	}
	return out, nil
}
