package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenMissingFileUsesInitial(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "state.yaml"), "/home/me/Notes")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := s.Workspace(); got != "/home/me/Notes" {
		t.Errorf("Workspace() = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "state.yaml")); !os.IsNotExist(err) {
		t.Error("Open must not create the state file")
	}
}

func TestSwitchPersists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sub", "state.yaml")
	ws := t.TempDir()

	s, err := Open(file, "/initial")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Switch(ws); err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if got := s.Workspace(); got != ws {
		t.Errorf("Workspace() = %q, want %q", got, ws)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "current_workspace: "+ws) {
		t.Errorf("state file = %q", data)
	}

	reopened, err := Open(file, "/initial")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Workspace(); got != ws {
		t.Errorf("reopened Workspace() = %q, want %q", got, ws)
	}
}

func TestSwitchMakesAbsolute(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "state.yaml"), "")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Switch("relative/notes"); err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if !filepath.IsAbs(s.Workspace()) {
		t.Errorf("workspace %q is not absolute", s.Workspace())
	}
}

func TestOpenInvalidYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state.yaml")
	if err := os.WriteFile(file, []byte("current_workspace: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(file, ""); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWriteFileReplacesContentWithoutTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "nested", "state.yaml")
	if err := writeFile(file, []byte("one\n")); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(file, []byte("two\n")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "two\n" {
		t.Errorf("content = %q", data)
	}
	if matches, _ := filepath.Glob(filepath.Join(dir, "nested", ".state-tmp-*")); len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}
