// Package models defines the domain types for Lore.
package models

import "time"

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Card sources.
const (
	SourceAuto   = "auto"
	SourceManual = "manual"
)

// Flashcard is a stored study card attached to a note.
type Flashcard struct {
	ID         string    `json:"id"`
	NotePath   string    `json:"note_path"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Difficulty string    `json:"difficulty"`
	Source     string    `json:"source"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NoteVersion is an immutable snapshot of a note's stored content.
type NoteVersion struct {
	ID        string    `json:"id"`
	NotePath  string    `json:"note_path"`
	Version   int       `json:"version"`
	Content   string    `json:"content,omitempty"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}
