package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/lore/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// vaultRoot is used to resolve the attachments directory.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler, vaultRoot string) chi.Router {
	h := NewHandler(svc)
	ah := NewAttachmentHandler(vaultRoot, svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Patch("/notes/*", h.MoveNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Flashcards.
	r.Get("/flashcards", h.ListFlashcards)
	r.Post("/flashcards", h.CreateFlashcard)
	r.Post("/flashcards/regenerate", h.RegenerateFlashcards)
	r.Put("/flashcards/{id}", h.UpdateFlashcard)
	r.Delete("/flashcards/{id}", h.DeleteFlashcard)

	// Version history.
	r.Get("/versions", h.ListVersions)
	r.Get("/versions/{id}", h.GetVersion)
	r.Post("/versions/{id}/restore", h.RestoreVersion)

	// Pipeline previews; nothing is stored.
	r.Post("/redact", h.Redact)
	r.Post("/extract", h.Extract)

	r.Get("/search", h.Search)
	r.Get("/graph", h.Graph)

	r.Post("/attachments", ah.Upload)
	r.Get("/attachments/{filename}", ah.ServeFile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
