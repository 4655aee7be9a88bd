package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lore/internal/noteservice"
)

// ListFlashcards handles GET /api/flashcards. Without ?note= every card is
// returned.
//
//	@Summary		List flashcards
//	@Tags			flashcards
//	@Produce		json
//	@Param			note	query		string	false	"Note path"
//	@Success		200		{object}	FlashcardListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/flashcards [get]
func (h *Handler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	note := r.URL.Query().Get("note")
	cards, err := h.svc.ListFlashcards(r.Context(), note)
	if err != nil {
		writeError(w, "list flashcards", err, slog.String("path", note))
		return
	}
	writeJSON(w, http.StatusOK, FlashcardListResponse{Flashcards: cards})
}

// CreateFlashcard handles POST /api/flashcards.
//
//	@Summary		Add a manual flashcard to a note
//	@Tags			flashcards
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FlashcardRequest	true	"Card"
//	@Success		201		{object}	models.Flashcard
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/flashcards [post]
func (h *Handler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	var req FlashcardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	card, err := h.svc.CreateFlashcard(r.Context(), noteservice.FlashcardInput{
		NotePath:   req.NotePath,
		Question:   req.Question,
		Answer:     req.Answer,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		writeError(w, "create flashcard", err, slog.String("path", req.NotePath))
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// UpdateFlashcard handles PUT /api/flashcards/{id}.
//
//	@Summary		Edit a flashcard; edited cards are kept on regeneration
//	@Tags			flashcards
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Card ID"
//	@Param			body	body		UpdateFlashcardRequest	true	"Card"
//	@Success		200		{object}	models.Flashcard
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/flashcards/{id} [put]
func (h *Handler) UpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateFlashcardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	card, err := h.svc.UpdateFlashcard(r.Context(), id, noteservice.FlashcardInput{
		Question:   req.Question,
		Answer:     req.Answer,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		writeError(w, "update flashcard", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// DeleteFlashcard handles DELETE /api/flashcards/{id}.
//
//	@Summary		Delete a flashcard
//	@Tags			flashcards
//	@Param			id	path	string	true	"Card ID"
//	@Success		204	"Card deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/flashcards/{id} [delete]
func (h *Handler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteFlashcard(r.Context(), id); err != nil {
		writeError(w, "delete flashcard", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegenerateFlashcards handles POST /api/flashcards/regenerate.
//
//	@Summary		Rebuild a note's generated flashcards from its current content
//	@Tags			flashcards
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RegenerateRequest	true	"Note"
//	@Success		200		{object}	FlashcardListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/flashcards/regenerate [post]
func (h *Handler) RegenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	var req RegenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cards, err := h.svc.RegenerateFlashcards(r.Context(), req.NotePath)
	if err != nil {
		writeError(w, "regenerate flashcards", err, slog.String("path", req.NotePath))
		return
	}
	writeJSON(w, http.StatusOK, FlashcardListResponse{Flashcards: cards})
}
