package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Probes below use Lstat, so symbolic links are never followed.
// A missing path is a negative answer, not an error.

// Exists reports whether anything exists at path.
func Exists(path string) (bool, error) {
	_, ok, err := lstat(path)
	return ok, err
}

// IsDirectory reports whether path is a directory.
func IsDirectory(path string) (bool, error) {
	info, ok, err := lstat(path)
	if !ok {
		return false, err
	}
	return info.IsDir(), nil
}

// IsRegularFile reports whether path is a regular file.
func IsRegularFile(path string) (bool, error) {
	info, ok, err := lstat(path)
	if !ok {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// IsMarkdown reports whether path is a regular file with a .md extension (any case).
func IsMarkdown(path string) (bool, error) {
	regular, err := IsRegularFile(path)
	if !regular {
		return false, err
	}
	return hasMarkdownExt(path), nil
}

// IsHidden reports whether the basename of path starts with a dot.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func hasMarkdownExt(name string) bool {
	return strings.EqualFold(filepath.Ext(name), MarkdownExt)
}

func lstat(path string) (fs.FileInfo, bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if isNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return info, true, nil
}

// isNotExist treats a non-directory path component like a missing one.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
