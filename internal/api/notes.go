package api

import (
	"net/http"
	"strings"
)

func writeNote(w http.ResponseWriter, status int, note *NoteDetail) {
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, status, note)
}

// ListNotes handles GET /api/folders/{folder}/notes.
//
//	@Summary		List the notes of a folder
//	@Tags			notes
//	@Produce		json
//	@Param			folder	path		string	true	"Folder name"
//	@Success		200		{object}	NoteListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{folder}/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.ListNotes(r.Context(), nameParam(r, "folder"))
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes})
}

// CreateNote handles POST /api/folders/{folder}/notes.
//
//	@Summary		Create a note seeded with a heading of its name
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			folder	path		string		true	"Folder name"
//	@Param			body	body		NameRequest	true	"Note name"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{folder}/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	folder := nameParam(r, "folder")
	var req NameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.svc.CreateNote(r.Context(), folder, req.Name)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeNote(w, http.StatusCreated, note)
}

// GetNote handles GET /api/folders/{folder}/notes/{note}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			folder	path		string	true	"Folder name"
//	@Param			note	path		string	true	"Note name"
//	@Success		200		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{folder}/notes/{note} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.FetchNote(r.Context(), nameParam(r, "folder"), nameParam(r, "note"))
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeNote(w, http.StatusOK, note)
}

// SaveNote handles PUT /api/folders/{folder}/notes/{note}.
//
//	@Summary		Save a note with optional optimistic concurrency
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			folder		path		string			true	"Folder name"
//	@Param			note		path		string			true	"Note name"
//	@Param			If-Match	header		string			false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body		SaveNoteRequest	true	"Note content"
//	@Success		200			{object}	NoteDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{folder}/notes/{note} [put]
func (h *Handler) SaveNote(w http.ResponseWriter, r *http.Request) {
	folder, name := nameParam(r, "folder"), nameParam(r, "note")
	var req SaveNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	note, err := h.svc.SaveNote(r.Context(), folder, name, *req.Content, ifMatch)
	if err != nil {
		writeError(w, "save note", err)
		return
	}
	writeNote(w, http.StatusOK, note)
}

// RenameNote handles PATCH /api/folders/{folder}/notes/{note}.
//
//	@Summary		Rename a note within its folder
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			folder	path		string		true	"Folder name"
//	@Param			note	path		string		true	"Note name"
//	@Param			body	body		NameRequest	true	"New note name"
//	@Success		200		{object}	NoteRef
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{folder}/notes/{note} [patch]
func (h *Handler) RenameNote(w http.ResponseWriter, r *http.Request) {
	folder, name := nameParam(r, "folder"), nameParam(r, "note")
	var req NameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.RenameNote(r.Context(), folder, name, req.Name); err != nil {
		writeError(w, "rename note", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteRef{Folder: folder, Name: req.Name})
}

// DeleteNote handles DELETE /api/folders/{folder}/notes/{note}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			folder	path	string	true	"Folder name"
//	@Param			note	path	string	true	"Note name"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{folder}/notes/{note} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNote(r.Context(), nameParam(r, "folder"), nameParam(r, "note")); err != nil {
		writeError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
