package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/foldernotes/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// nameParam returns a trimmed URL segment, decoded exactly once. chi matches
// against r.URL.RawPath when it is set, and the segment is still escaped
// then; otherwise it comes from the already decoded r.URL.Path.
func nameParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(raw); err == nil {
			raw = decoded
		}
	}
	return strings.TrimSpace(raw)
}

// GetWorkspace handles GET /api/workspace.
//
//	@Summary		Get the active workspace directory
//	@Tags			workspace
//	@Produce		json
//	@Success		200	{object}	WorkspaceResponse
//	@Security		BearerAuth
//	@Router			/workspace [get]
func (h *Handler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, WorkspaceResponse{Path: h.svc.Workspace(r.Context())})
}

// SwitchWorkspace handles PUT /api/workspace.
//
//	@Summary		Switch to another workspace directory
//	@Tags			workspace
//	@Accept			json
//	@Produce		json
//	@Param			body	body		WorkspaceRequest	true	"Workspace directory"
//	@Success		200		{object}	WorkspaceResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/workspace [put]
func (h *Handler) SwitchWorkspace(w http.ResponseWriter, r *http.Request) {
	var req WorkspaceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	path, err := h.svc.SwitchWorkspace(r.Context(), req.Path)
	if err != nil {
		writeError(w, "switch workspace", err)
		return
	}
	writeJSON(w, http.StatusOK, WorkspaceResponse{Path: path})
}

// ListFolders handles GET /api/folders.
//
//	@Summary		List the folders of the workspace
//	@Tags			folders
//	@Produce		json
//	@Success		200	{object}	FolderListResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders [get]
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.svc.ListFolders(r.Context())
	if err != nil {
		writeError(w, "list folders", err)
		return
	}
	writeJSON(w, http.StatusOK, FolderListResponse{Folders: folders})
}

// CreateFolder handles POST /api/folders.
//
//	@Summary		Create a folder
//	@Tags			folders
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NameRequest	true	"Folder name"
//	@Success		201		{object}	FolderResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.CreateFolder(r.Context(), req.Name); err != nil {
		writeError(w, "create folder", err)
		return
	}
	writeJSON(w, http.StatusCreated, FolderResponse{Name: req.Name})
}

// RenameFolder handles PATCH /api/folders/{folder}.
//
//	@Summary		Rename a folder and every note in it
//	@Tags			folders
//	@Accept			json
//	@Produce		json
//	@Param			folder	path		string		true	"Folder name"
//	@Param			body	body		NameRequest	true	"New folder name"
//	@Success		200		{object}	FolderResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{folder} [patch]
func (h *Handler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	folder := nameParam(r, "folder")
	var req NameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.RenameFolder(r.Context(), folder, req.Name); err != nil {
		writeError(w, "rename folder", err)
		return
	}
	writeJSON(w, http.StatusOK, FolderResponse{Name: req.Name})
}

// DeleteFolder handles DELETE /api/folders/{folder}.
//
//	@Summary		Delete a folder and its notes
//	@Tags			folders
//	@Param			folder	path	string	true	"Folder name"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{folder} [delete]
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteFolder(r.Context(), nameParam(r, "folder")); err != nil {
		writeError(w, "delete folder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required", kindBadRequest))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: toSearchResults(results)})
}
