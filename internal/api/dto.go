package api

import (
	"github.com/starford/lore/internal/flashcard"
	"github.com/starford/lore/internal/index"
	"github.com/starford/lore/internal/models"
	"github.com/starford/lore/internal/noteservice"
	"github.com/starford/lore/internal/redact"
)

// CreateNoteRequest is the request body for creating a note. Path may be
// omitted when the content has a title.
type CreateNoteRequest struct {
	Path    string `json:"path" example:"notes/hello.md"`
	Content string `json:"content" example:"# Hello\nWorld" validate:"required"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// MoveNoteRequest is the request body for renaming a note.
type MoveNoteRequest struct {
	Path string `json:"path" example:"archive/hello.md" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes"`
	Total int            `json:"total" example:"42"`
}

// FlashcardRequest creates a manual card.
type FlashcardRequest struct {
	NotePath   string `json:"note_path" example:"notes/hello.md" validate:"required"`
	Question   string `json:"question" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
	Difficulty string `json:"difficulty,omitempty" validate:"omitempty,oneof=EASY MEDIUM HARD easy medium hard"`
}

// UpdateFlashcardRequest edits a card.
type UpdateFlashcardRequest struct {
	Question   string `json:"question" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
	Difficulty string `json:"difficulty,omitempty" validate:"omitempty,oneof=EASY MEDIUM HARD easy medium hard"`
}

// RegenerateRequest names the note whose generated cards are rebuilt.
type RegenerateRequest struct {
	NotePath string `json:"note_path" validate:"required"`
}

// FlashcardListResponse wraps stored cards.
type FlashcardListResponse struct {
	Flashcards []models.Flashcard `json:"flashcards"`
}

// VersionListResponse wraps a note's history.
type VersionListResponse struct {
	Versions []models.NoteVersion `json:"versions"`
}

// RedactRequest is a redaction preview. Empty text is valid and yields an
// empty result.
type RedactRequest struct {
	Text string `json:"text"`
}

// ExtractRequest is an extraction preview. Config fields override the
// server's extraction bounds for this call only.
type ExtractRequest struct {
	Text   string              `json:"text"`
	Config flashcard.Overrides `json:"config"`
}

// ExtractResponse carries the redaction applied before extraction and the
// resulting cards.
type ExtractResponse struct {
	Text         string                  `json:"text"`
	Replacements map[redact.Category]int `json:"replacements"`
	Flashcards   []flashcard.Flashcard   `json:"flashcards"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchResult is a single search hit (aliased from the index layer).
type SearchResult = index.SearchResult

// GraphResponse wraps the knowledge graph.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// GraphNode is a node in the knowledge graph.
type GraphNode = index.GraphNode

// GraphLink is an edge in the knowledge graph.
type GraphLink = index.GraphLink

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"image.png"`
	Size     int64  `json:"size" example:"12345"`
	URL      string `json:"url" example:"/api/attachments/image.png"`

	Redactions map[redact.Category]int `json:"redactions,omitempty"`
}
