package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lore/internal/redact"
)

const (
	attachDir      = "attachments"
	maxUploadBytes = 50 << 20 // 50 MB
)

// Text attachments are scrubbed like note content. Anything else is stored
// as uploaded.
var textAttachmentExts = map[string]struct{}{
	".txt": {}, ".md": {}, ".log": {}, ".csv": {}, ".json": {},
	".yaml": {}, ".yml": {}, ".env": {}, ".ini": {}, ".conf": {},
	".sql": {}, ".sh": {}, ".xml": {}, ".toml": {},
}

// TextRedactor scrubs sensitive data from uploaded text files.
type TextRedactor interface {
	RedactText(ctx context.Context, text string) redact.Result
}

// AttachmentHandler serves and accepts attachment files.
type AttachmentHandler struct {
	vaultRoot string
	redactor  TextRedactor
}

// NewAttachmentHandler creates a handler rooted at the vault directory. A nil
// redactor stores text attachments unchanged.
func NewAttachmentHandler(vaultRoot string, redactor TextRedactor) *AttachmentHandler {
	return &AttachmentHandler{vaultRoot: vaultRoot, redactor: redactor}
}

func (h *AttachmentHandler) attachPath() string {
	return filepath.Join(h.vaultRoot, attachDir)
}

// safeName accepts a plain file name and returns its absolute path under the
// attachments directory.
func (h *AttachmentHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(h.attachPath(), cleaned)
	if !strings.HasPrefix(abs, h.attachPath()+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes attachments directory")
	}
	return abs, nil
}

func isTextAttachment(name string) bool {
	_, ok := textAttachmentExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ServeFile handles GET /api/attachments/{filename}.
//
//	@Summary	Download an attachment
//	@Tags		attachments
//	@Param		filename	path	string	true	"Attachment file name"
//	@Success	200
//	@Failure	400	{object}	errResponse
//	@Failure	404
//	@Security	BearerAuth
//	@Router		/attachments/{filename} [get]
func (h *AttachmentHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.safeName(chi.URLParam(r, "filename"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /api/attachments (multipart/form-data, field "file").
// Text files are redacted before they reach the vault.
//
//	@Summary	Upload an attachment
//	@Tags		attachments
//	@Accept		mpfd
//	@Produce	json
//	@Param		file	formData	file	true	"File to upload"
//	@Success	201		{object}	AttachmentUploadResponse
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/attachments [post]
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	abs, err := h.safeName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	var (
		src        io.Reader = file
		redactions map[redact.Category]int
	)
	if h.redactor != nil && isTextAttachment(abs) {
		raw, err := io.ReadAll(file)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
			return
		}
		res := h.redactor.RedactText(r.Context(), string(raw))
		if res.Total() > 0 {
			redactions = res.Replacements
			slog.Info("attachment redacted",
				slog.String("filename", filepath.Base(abs)),
				slog.Int("replacements", res.Total()))
		}
		src = bytes.NewReader([]byte(res.Text))
	}

	if err := os.MkdirAll(h.attachPath(), 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to create attachments dir"))
		return
	}
	dst, err := os.Create(abs)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to create file"))
		return
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to write file"))
		return
	}

	writeJSON(w, http.StatusCreated, AttachmentUploadResponse{
		Filename:   filepath.Base(abs),
		Size:       written,
		URL:        "/api/attachments/" + filepath.Base(abs),
		Redactions: redactions,
	})
}
