package api

import (
	"encoding/json"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/foldernotes/internal/index"
	"github.com/starford/foldernotes/internal/noteservice"
)

const maxBodyBytes = 10 << 20

// NameRequest is the request body for creating or renaming a folder or note.
type NameRequest struct {
	Name string `json:"name" example:"Meeting notes" validate:"required"`
}

func (r *NameRequest) normalize() { r.Name = strings.TrimSpace(r.Name) }

// Validate validates the request.
func (r *NameRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
	)
}

// SaveNoteRequest is the request body for saving a note. Empty content is allowed.
type SaveNoteRequest struct {
	Content *string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// Validate validates the request.
func (r *SaveNoteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Content, validation.NotNil),
	)
}

// WorkspaceRequest is the request body for switching workspace.
type WorkspaceRequest struct {
	Path string `json:"path" example:"/home/me/Notes" validate:"required"`
}

func (r *WorkspaceRequest) normalize() { r.Path = strings.TrimSpace(r.Path) }

// Validate validates the request.
func (r *WorkspaceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required),
	)
}

// WorkspaceResponse reports the active workspace.
type WorkspaceResponse struct {
	Path string `json:"path" example:"/home/me/Notes" validate:"required"`
}

// FolderListResponse wraps folder listings.
type FolderListResponse struct {
	Folders []string `json:"folders" validate:"required"`
}

// FolderResponse names a created or renamed folder.
type FolderResponse struct {
	Name string `json:"name" example:"Work" validate:"required"`
}

// NoteListResponse wraps note listings of one folder.
type NoteListResponse struct {
	Notes []string `json:"notes" validate:"required"`
}

// NoteRef names a note inside its folder.
type NoteRef struct {
	Folder string `json:"folder" example:"Work" validate:"required"`
	Name   string `json:"name" example:"Plan" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Folder  string `json:"folder" example:"Work" validate:"required"`
	Note    string `json:"note" example:"Plan" validate:"required"`
	Title   string `json:"title" example:"Plan" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

func toSearchResults(rows []index.SearchResult) []SearchResult {
	out := make([]SearchResult, len(rows))
	for i, r := range rows {
		out[i] = SearchResult{Folder: r.Folder, Note: r.Note, Title: r.Title, Snippet: r.Snippet}
	}
	return out
}

// decodeBody reads a JSON body into req, trims its names and validates it.
// On failure it writes a 400 response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, req validation.Validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body", kindBadRequest))
		return false
	}
	if n, ok := req.(interface{ normalize() }); ok {
		n.normalize()
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error(), kindBadRequest))
		return false
	}
	return true
}
