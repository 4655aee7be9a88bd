package api

import (
	"net/http"
)

// Redact handles POST /api/redact. Nothing is stored.
//
//	@Summary		Preview redaction of arbitrary text
//	@Tags			pipeline
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RedactRequest	true	"Text"
//	@Success		200		{object}	redact.Result
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/redact [post]
func (h *Handler) Redact(w http.ResponseWriter, r *http.Request) {
	var req RedactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.RedactText(r.Context(), req.Text))
}

// Extract handles POST /api/extract. The text is redacted first; cards are
// extracted from the redacted text. Nothing is stored.
//
//	@Summary		Preview flashcard extraction
//	@Tags			pipeline
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ExtractRequest	true	"Text and optional bounds"
//	@Success		200		{object}	ExtractResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/extract [post]
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	red, cards, err := h.svc.ExtractPreview(r.Context(), req.Text, req.Config)
	if err != nil {
		writeError(w, "extract", err)
		return
	}
	writeJSON(w, http.StatusOK, ExtractResponse{
		Text:         red.Text,
		Replacements: red.Replacements,
		Flashcards:   cards,
	})
}
