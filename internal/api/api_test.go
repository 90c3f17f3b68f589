package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/foldernotes/internal/noteservice"
	"github.com/starford/foldernotes/internal/sse"
	"github.com/starford/foldernotes/internal/testutil"
)

// testEnv sets up a temp workspace, SQLite DB, service, and router for testing.
// An empty authToken means disabled mode; otherwise token mode.
func testEnv(t *testing.T, authToken string) (*noteservice.Service, http.Handler) {
	t.Helper()
	svc, router, _ := testEnvWithWorkspace(t, authToken, nil)
	return svc, router
}

func testEnvWithWorkspace(t *testing.T, authToken string, sseHandler http.Handler, notifiers ...noteservice.Notifier) (*noteservice.Service, http.Handler, string) {
	t.Helper()
	dir, st, store := testutil.TestWorkspace(t)
	svc := noteservice.NewService(store, st, testutil.TestDB(t), testutil.Logger(), notifiers...)
	router := NewRouter(svc, authToken != "", authToken, sseHandler)
	return svc, router, dir
}

func do(t *testing.T, h http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodPost, "/folders", map[string]string{"name": "  Work  "}); w.Code != http.StatusCreated {
		t.Fatalf("create folder = %d, body = %s", w.Code, w.Body.String())
	} else if got := decode[FolderResponse](t, w); got.Name != "Work" {
		t.Errorf("folder name = %q, want trimmed", got.Name)
	}

	w := do(t, router, http.MethodPost, "/folders/Work/notes", map[string]string{"name": "Plan"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create note = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/folders/Work/notes/Plan", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	note := decode[NoteDetail](t, w)
	if note.Folder != "Work" || note.Name != "Plan" {
		t.Errorf("note = %+v", note)
	}
	if note.Content != "# Plan\n\n" || note.Title != "Plan" {
		t.Errorf("content = %q, title = %q", note.Content, note.Title)
	}
	if etag := w.Header().Get("ETag"); etag != `"`+note.Checksum+`"` {
		t.Errorf("ETag = %q", etag)
	}
}

func TestEscapedNames(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/folders", map[string]string{"name": "My folder"})
	_ = do(t, router, http.MethodPost, "/folders/My%20folder/notes", map[string]string{"name": "A note"})

	w := do(t, router, http.MethodGet, "/folders/My%20folder/notes/A%20note", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodGet, "/folders/My%20folder/notes", nil)
	if got := decode[NoteListResponse](t, w); len(got.Notes) != 1 || got.Notes[0] != "A note" {
		t.Errorf("notes = %v", got.Notes)
	}
}

func TestPercentSequenceInNames(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/folders", map[string]string{"name": "F"})
	_ = do(t, router, http.MethodPost, "/folders/F/notes", map[string]string{"name": "50A"})
	if w := do(t, router, http.MethodPost, "/folders/F/notes", map[string]string{"name": "50%41"}); w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}

	w := do(t, router, http.MethodGet, "/folders/F/notes/50%2541", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[NoteDetail](t, w); got.Name != "50%41" || got.Content != "# 50%41\n\n" {
		t.Errorf("note = %+v", got)
	}

	// A slash kept escaped in the segment forces RawPath; the name is still decoded once.
	w = do(t, router, http.MethodGet, "/folders/F/notes/a%2Fb", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("escaped slash = %d, want 400", w.Code)
	}

	if w := do(t, router, http.MethodDelete, "/folders/F/notes/50%2541", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodGet, "/folders/F/notes", nil)
	if got := decode[NoteListResponse](t, w); len(got.Notes) != 1 || got.Notes[0] != "50A" {
		t.Errorf("notes = %v, want only 50A left", got.Notes)
	}
}

func TestCreateDuplicate(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/folders", map[string]string{"name": "F"})

	if w := do(t, router, http.MethodPost, "/folders/F/notes", map[string]string{"name": "dup"}); w.Code != http.StatusCreated {
		t.Fatalf("first create = %d", w.Code)
	}

	// Case-insensitive duplicate should 409.
	w := do(t, router, http.MethodPost, "/folders/F/notes", map[string]string{"name": "DUP"})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate create = %d, want 409", w.Code)
	}
	got := decode[errResponse](t, w)
	if got.Error != "Note 'DUP' already exists in folder 'F'" || got.Kind != "note_already_exists" {
		t.Errorf("error body = %+v", got)
	}

	if w := do(t, router, http.MethodPost, "/folders", map[string]string{"name": "f"}); w.Code != http.StatusConflict {
		t.Errorf("duplicate folder = %d, want 409", w.Code)
	}
}

func TestSaveWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/folders", map[string]string{"name": "F"})
	created := decode[NoteDetail](t, do(t, router, http.MethodPost, "/folders/F/notes", map[string]string{"name": "lock"}))

	w := do(t, router, http.MethodPut, "/folders/F/notes/lock", map[string]string{"content": "v2"},
		"If-Match", `"`+created.Checksum+`"`)
	if w.Code != http.StatusOK {
		t.Fatalf("save with correct checksum = %d, body = %s", w.Code, w.Body.String())
	}

	// Stale checksum.
	w = do(t, router, http.MethodPut, "/folders/F/notes/lock", map[string]string{"content": "v3"},
		"If-Match", created.Checksum)
	if w.Code != http.StatusConflict {
		t.Errorf("save with stale checksum = %d, want 409", w.Code)
	}
	if got := decode[errResponse](t, w); got.Kind != kindConflict {
		t.Errorf("kind = %q", got.Kind)
	}
}

func TestSaveEmptyContent(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/folders", map[string]string{"name": "F"})

	w := do(t, router, http.MethodPut, "/folders/F/notes/blank", map[string]string{"content": ""})
	if w.Code != http.StatusOK {
		t.Fatalf("save empty = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodPut, "/folders/F/notes/blank", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("save without content = %d, want 400", w.Code)
	}
}

func TestSaveNote_FolderNotFound(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPut, "/folders/ghost/notes/n", map[string]string{"content": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("save into missing folder = %d, want 404", w.Code)
	}
	if got := decode[errResponse](t, w); got.Error != "Folder 'ghost' not found" {
		t.Errorf("error = %q", got.Error)
	}
}

func TestRenameNote(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/folders", map[string]string{"name": "F"})
	_ = do(t, router, http.MethodPost, "/folders/F/notes", map[string]string{"name": "old"})

	w := do(t, router, http.MethodPatch, "/folders/F/notes/old", map[string]string{"name": "new"})
	if w.Code != http.StatusOK {
		t.Fatalf("rename = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[NoteRef](t, w); got != (NoteRef{Folder: "F", Name: "new"}) {
		t.Errorf("ref = %+v", got)
	}
	if w := do(t, router, http.MethodGet, "/folders/F/notes/old", nil); w.Code != http.StatusNotFound {
		t.Errorf("old name = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/folders/F/notes/new", nil); w.Code != http.StatusOK {
		t.Errorf("new name = %d, want 200", w.Code)
	}
}

func TestInvalidName(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/folders", map[string]string{"name": "F"})

	w := do(t, router, http.MethodPost, "/folders/F/notes", map[string]string{"name": "a/b"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid name = %d, want 400", w.Code)
	}
	if got := decode[errResponse](t, w); got.Kind != "invalid_name" {
		t.Errorf("kind = %q", got.Kind)
	}

	if w := do(t, router, http.MethodPost, "/folders", map[string]string{"name": "   "}); w.Code != http.StatusBadRequest {
		t.Errorf("blank name = %d, want 400", w.Code)
	}
}

func TestInvalidJSON(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/folders", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", w.Code)
	}
}

func TestFolderLifecycle(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/folders", map[string]string{"name": "A"})
	_ = do(t, router, http.MethodPost, "/folders/A/notes", map[string]string{"name": "n"})

	if w := do(t, router, http.MethodPatch, "/folders/A", map[string]string{"name": "B"}); w.Code != http.StatusOK {
		t.Fatalf("rename folder = %d, body = %s", w.Code, w.Body.String())
	}
	w := do(t, router, http.MethodGet, "/folders", nil)
	if got := decode[FolderListResponse](t, w); len(got.Folders) != 1 || got.Folders[0] != "B" {
		t.Errorf("folders = %v", got.Folders)
	}
	if w := do(t, router, http.MethodGet, "/folders/B/notes/n", nil); w.Code != http.StatusOK {
		t.Errorf("note after folder rename = %d", w.Code)
	}

	if w := do(t, router, http.MethodDelete, "/folders/B", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete folder = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/folders/B", nil); w.Code != http.StatusNotFound {
		t.Errorf("delete again = %d, want 404", w.Code)
	}
}

func TestListFoldersEmpty(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/folders", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"folders":[]`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestDeleteNote(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/folders", map[string]string{"name": "F"})
	_ = do(t, router, http.MethodPost, "/folders/F/notes", map[string]string{"name": "bye"})

	if w := do(t, router, http.MethodDelete, "/folders/F/notes/bye", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/folders/F/notes/bye", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/folders/F/notes/bye", nil); w.Code != http.StatusNotFound {
		t.Errorf("delete again = %d, want 404", w.Code)
	}
}

func TestListNotes(t *testing.T) {
	_, router, dir := testEnvWithWorkspace(t, "", nil)
	_ = do(t, router, http.MethodPost, "/folders", map[string]string{"name": "F"})
	for _, name := range []string{"a", "b"} {
		_ = do(t, router, http.MethodPost, "/folders/F/notes", map[string]string{"name": name})
	}
	// Hidden and non-Markdown files are not listed.
	_ = os.WriteFile(filepath.Join(dir, "F", ".hidden.md"), nil, 0o644)
	_ = os.WriteFile(filepath.Join(dir, "F", "image.png"), nil, 0o644)

	w := do(t, router, http.MethodGet, "/folders/F/notes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	if got := decode[NoteListResponse](t, w); len(got.Notes) != 2 {
		t.Errorf("notes = %v", got.Notes)
	}

	if w := do(t, router, http.MethodGet, "/folders/missing/notes", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing folder = %d, want 404", w.Code)
	}
}

func TestWorkspaceEndpoints(t *testing.T) {
	_, router, dir := testEnvWithWorkspace(t, "", nil)

	w := do(t, router, http.MethodGet, "/workspace", nil)
	if got := decode[WorkspaceResponse](t, w); got.Path != dir {
		t.Errorf("workspace = %q, want %q", got.Path, dir)
	}

	other := t.TempDir()
	w = do(t, router, http.MethodPut, "/workspace", map[string]string{"path": other})
	if w.Code != http.StatusOK {
		t.Fatalf("switch = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[WorkspaceResponse](t, w); got.Path != other {
		t.Errorf("switched to %q", got.Path)
	}

	w = do(t, router, http.MethodPut, "/workspace", map[string]string{"path": filepath.Join(other, "nope")})
	if w.Code != http.StatusNotFound {
		t.Errorf("switch to missing = %d, want 404", w.Code)
	}
	if got := decode[errResponse](t, w); got.Kind != "workspace_not_found" {
		t.Errorf("kind = %q", got.Kind)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/folders", map[string]string{"name": "F"})
	_ = do(t, router, http.MethodPut, "/folders/F/notes/s", map[string]string{"content": "# Search Me\nfindable content"})

	w := do(t, router, http.MethodGet, "/search?q=findable", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	got := decode[SearchResponse](t, w)
	if len(got.Results) != 1 || got.Results[0].Note != "s" || got.Results[0].Title != "Search Me" {
		t.Errorf("results = %+v", got.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	w := do(t, router, http.MethodPost, "/folders", map[string]string{"name": "auth"},
		"Authorization", "Bearer secret123")
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/folders", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/folders", nil, "Authorization", "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/folders?access_token=secret123", nil); w.Code != http.StatusOK {
		t.Errorf("query token = %d, want 200", w.Code)
	}
	// The header wins when both are present.
	w := do(t, router, http.MethodGet, "/folders?access_token=secret123", nil, "Authorization", "Bearer wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong header with query token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/folders", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	broker := sse.NewBroker(8, 0)
	defer broker.Close()
	_, router, _ := testEnvWithWorkspace(t, "secret", broker)

	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_DeliversMutations(t *testing.T) {
	broker := sse.NewBroker(8, 0)
	defer broker.Close()
	notify := noteservice.NotifierFunc(func(e noteservice.Event) {
		broker.Publish(sse.Event{Type: e.Type, Data: e})
	})
	_, router, _ := testEnvWithWorkspace(t, "", broker, notify)

	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	_ = do(t, router, http.MethodPost, "/folders", map[string]string{"name": "Work"})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: created-folder\n") || !strings.Contains(s, `"folder":"Work"`) {
			t.Errorf("message = %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	broker := sse.NewBroker(8, 0)
	defer broker.Close()
	_, router, _ := testEnvWithWorkspace(t, "tok", broker)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}
