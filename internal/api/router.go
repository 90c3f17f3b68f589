package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/foldernotes/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/workspace", h.GetWorkspace)
	r.Put("/workspace", h.SwitchWorkspace)

	r.Route("/folders", func(r chi.Router) {
		r.Get("/", h.ListFolders)
		r.Post("/", h.CreateFolder)

		r.Route("/{folder}", func(r chi.Router) {
			r.Patch("/", h.RenameFolder)
			r.Delete("/", h.DeleteFolder)

			r.Get("/notes", h.ListNotes)
			r.Post("/notes", h.CreateNote)
			r.Get("/notes/{note}", h.GetNote)
			r.Put("/notes/{note}", h.SaveNote)
			r.Patch("/notes/{note}", h.RenameNote)
			r.Delete("/notes/{note}", h.DeleteNote)
		})
	})

	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
