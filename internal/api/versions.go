package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListVersions handles GET /api/versions?note=.
//
//	@Summary		List a note's versions, newest first
//	@Tags			versions
//	@Produce		json
//	@Param			note	query		string	true	"Note path"
//	@Success		200		{object}	VersionListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/versions [get]
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	note := r.URL.Query().Get("note")
	if note == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'note' is required"))
		return
	}
	versions, err := h.svc.ListVersions(r.Context(), note)
	if err != nil {
		writeError(w, "list versions", err, slog.String("path", note))
		return
	}
	writeJSON(w, http.StatusOK, VersionListResponse{Versions: versions})
}

// GetVersion handles GET /api/versions/{id}.
//
//	@Summary		Get one version with its content
//	@Tags			versions
//	@Produce		json
//	@Param			id	path		string	true	"Version ID"
//	@Success		200	{object}	models.NoteVersion
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/versions/{id} [get]
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, err := h.svc.GetVersion(r.Context(), id)
	if err != nil {
		writeError(w, "get version", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// RestoreVersion handles POST /api/versions/{id}/restore.
//
//	@Summary		Restore a version as the note's current content
//	@Tags			versions
//	@Produce		json
//	@Param			id			path		string	true	"Version ID"
//	@Param			If-Match	header		string	false	"Checksum of the current content"
//	@Success		200			{object}	NoteDetail
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/versions/{id}/restore [post]
func (h *Handler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.svc.RestoreVersion(r.Context(), id, ifMatch(r))
	if err != nil {
		writeError(w, "restore version", err, slog.String("id", id))
		return
	}
	writeNote(w, http.StatusOK, note)
}
