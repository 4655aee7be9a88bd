package index

import "github.com/starford/lore/internal/models"

// NoteIndex defines the interface for note indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type NoteIndex interface {
	UpsertNote(n NoteRow, body string, links []string) error
	DeleteNote(path string) error
	RenameNote(from, to string) error
	GetChecksum(path string) (string, error)
	GetNote(path string) (*NoteRow, error)
	ListNotes(limit, offset int, tag, sort string) ([]NoteRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Graph() ([]GraphNode, []GraphLink, error)
	Backlinks(target string) ([]string, error)
	AllChecksums() (map[string]string, error)

	ReplaceAutoFlashcards(notePath string, cards []models.Flashcard) error
	ListFlashcards(notePath string) ([]models.Flashcard, error)
	GetFlashcard(id string) (*models.Flashcard, error)
	InsertFlashcard(c *models.Flashcard) error
	UpdateFlashcard(c models.Flashcard) error
	DeleteFlashcard(id string) error

	InsertVersion(v *models.NoteVersion) error
	ListVersions(notePath string) ([]models.NoteVersion, error)
	GetVersion(id string) (*models.NoteVersion, error)
	LatestVersionChecksum(notePath string) (string, error)

	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
