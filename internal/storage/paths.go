package storage

import (
	"path/filepath"
	"strings"

	"github.com/starford/foldernotes/internal/apperr"
)

// MarkdownExt is the extension given to note files.
const MarkdownExt = ".md"

// FolderPath returns the directory of folder inside workspace.
func FolderPath(workspace, folder string) string {
	return filepath.Join(workspace, folder)
}

// NotePath returns the file of note inside folder.
func NotePath(workspace, folder, note string) string {
	return filepath.Join(workspace, folder, note+MarkdownExt)
}

// NoteTemplate is the initial content of a newly created note.
func NoteTemplate(name string) string {
	return "# " + name + "\n\n"
}

// ValidateName rejects names that do not denote a single direct child of
// their parent directory.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return apperr.InvalidName(name)
	}
	if strings.ContainsAny(name, `/\`+"\x00") {
		return apperr.InvalidName(name)
	}
	return nil
}

func validateNames(names ...string) error {
	for _, n := range names {
		if err := ValidateName(n); err != nil {
			return err
		}
	}
	return nil
}
