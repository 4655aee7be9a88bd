// Package noteservice implements the note workflow: every write goes
// through redaction, new notes get generated flashcards, and every stored
// change is kept as a version.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/starford/lore/internal/apperr"
	"github.com/starford/lore/internal/checksum"
	"github.com/starford/lore/internal/index"
	"github.com/starford/lore/internal/models"
	"github.com/starford/lore/internal/parser"
	"github.com/starford/lore/internal/pipeline"
	"github.com/starford/lore/internal/redact"
	"github.com/starford/lore/internal/storage"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path        string             `json:"path"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	Checksum    string             `json:"checksum"`
	Tags        []string           `json:"tags"`
	Frontmatter map[string]any     `json:"frontmatter,omitempty"`
	Backlinks   []string           `json:"backlinks"`
	Flashcards  []models.Flashcard `json:"flashcards"`
	// Redactions counts what this request scrubbed; empty on reads.
	Redactions map[redact.Category]int `json:"redactions,omitempty"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventSink receives workflow notifications. The SSE broker implements it.
type EventSink interface {
	PublishNoteEvent(kind, path string)
	PublishFlashcardsEvent(path string, count int)
}

type noopSink struct{}

func (noopSink) PublishNoteEvent(string, string)    {}
func (noopSink) PublishFlashcardsEvent(string, int) {}

// Option configures a Service.
type Option func(*Service)

// WithEvents sets the sink for note and flashcard events.
func WithEvents(sink EventSink) Option {
	return func(s *Service) {
		if sink != nil {
			s.events = sink
		}
	}
}

// WithLogger sets the audit logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service coordinates storage, the content pipeline and the index.
//
// Mutations hold mu so that API requests and the vault watcher never
// interleave on the same note.
type Service struct {
	store  storage.Provider
	db     index.NoteIndex
	pipe   *pipeline.Pipeline
	events EventSink
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewService creates a new note service. A nil pipeline means
// pipeline.Default().
func NewService(store storage.Provider, db index.NoteIndex, pipe *pipeline.Pipeline, opts ...Option) *Service {
	if pipe == nil {
		pipe = pipeline.Default()
	}
	s := &Service{
		store:  store,
		db:     db,
		pipe:   pipe,
		events: noopSink{},
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ index.FileIndexer = (*Service)(nil)

// GetNote reads a note from storage, parses it, and enriches with backlinks
// and flashcards.
func (s *Service) GetNote(_ context.Context, notePath string) (*NoteDetail, error) {
	data, err := s.read(notePath)
	if err != nil {
		return nil, err
	}
	return s.buildNoteDetail(notePath, data, nil)
}

// CreateNote runs content through the full pipeline, stores the redacted
// result as version 1 and saves the generated flashcards. An empty path is
// derived from the note title.
func (s *Service) CreateNote(_ context.Context, notePath string, content []byte) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.pipe.Process(content)
	if err != nil {
		return nil, err
	}
	notePath, err = resolvePath(notePath, out.Note.Title)
	if err != nil {
		return nil, err
	}
	exists, err := s.store.Exists(notePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if exists {
		return nil, apperr.ErrAlreadyExists
	}

	data := []byte(out.Redaction.Text)
	if err := s.store.Write(notePath, data); err != nil {
		return nil, err
	}
	if err := s.index(notePath, data, out.Note); err != nil {
		return nil, err
	}
	if err := s.snapshot(notePath, data); err != nil {
		return nil, err
	}
	if _, err := s.saveGenerated(notePath, out); err != nil {
		return nil, err
	}
	s.audit("create", notePath, out.Redaction)
	s.events.PublishNoteEvent("created", notePath)

	return s.buildNoteDetail(notePath, data, out.Redaction.Replacements)
}

// UpdateNote redacts and stores new content with optimistic concurrency.
// Flashcards are left as they are; use RegenerateFlashcards to refresh them.
func (s *Service) UpdateNote(_ context.Context, notePath string, content []byte, ifMatch string) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(notePath, content, ifMatch, "update")
}

func (s *Service) updateLocked(notePath string, content []byte, ifMatch, op string) (*NoteDetail, error) {
	existing, err := s.read(notePath)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && !checksum.Match(existing, ifMatch) {
		return nil, apperr.ErrConflict
	}

	red := s.pipe.Redact(string(content))
	data := []byte(red.Text)
	if err := s.store.Write(notePath, data); err != nil {
		return nil, err
	}
	note, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := s.index(notePath, data, note); err != nil {
		return nil, err
	}
	if err := s.snapshot(notePath, data); err != nil {
		return nil, err
	}
	s.audit(op, notePath, red)
	s.events.PublishNoteEvent("updated", notePath)

	return s.buildNoteDetail(notePath, data, red.Replacements)
}

// DeleteNote removes a note from storage and the index, along with its
// flashcards and versions.
func (s *Service) DeleteNote(_ context.Context, notePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(notePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	if err := s.db.DeleteNote(notePath); err != nil {
		return err
	}
	s.events.PublishNoteEvent("deleted", notePath)
	return nil
}

// MoveNote renames a note inside the vault. Flashcards, versions and
// outgoing links follow the note; wikilinks in other notes are not rewritten.
func (s *Service) MoveNote(_ context.Context, from, to string) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(from)
	if err != nil {
		return nil, err
	}
	to, err = resolvePath(to, "")
	if err != nil {
		return nil, err
	}
	if to == from {
		return nil, fmt.Errorf("%w: note is already at %q", apperr.ErrInvalidInput, to)
	}
	exists, err := s.store.Exists(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if exists {
		return nil, apperr.ErrAlreadyExists
	}

	if err := s.store.Move(from, to); err != nil {
		return nil, err
	}
	if err := s.db.RenameNote(from, to); err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		// Not indexed yet; index it under the new path.
		note, err := parser.Parse(data)
		if err != nil {
			return nil, err
		}
		if err := s.index(to, data, note); err != nil {
			return nil, err
		}
	}
	s.logger.Info("note moved", slog.String("from", from), slog.String("to", to))
	s.events.PublishNoteEvent("deleted", from)
	s.events.PublishNoteEvent("created", to)

	return s.buildNoteDetail(to, data, nil)
}

// ListNotes returns paginated notes with optional tag filter.
func (s *Service) ListNotes(_ context.Context, limit, offset int, tag, sort string) ([]NoteListItem, int, error) {
	rows, total, err := s.db.ListNotes(limit, offset, tag, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]NoteListItem, len(rows))
	for i, r := range rows {
		items[i] = NoteListItem{
			Path:      r.Path,
			Title:     r.Title,
			Checksum:  r.Checksum,
			Tags:      nonNilSlice(r.Tags),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	res, err := s.db.Search(query, limit)
	return nonNilSlice(res), err
}

// Graph returns all nodes and links for graph visualization.
func (s *Service) Graph(_ context.Context) ([]index.GraphNode, []index.GraphLink, error) {
	return s.db.Graph()
}

// Backlinks returns all note paths that link to the given target.
func (s *Service) Backlinks(_ context.Context, target string) ([]string, error) {
	bl, err := s.db.Backlinks(target)
	return nonNilSlice(bl), err
}

// IndexFile ingests a vault file written outside the API. Content with
// sensitive data is redacted in place. A note seen for the first time gets
// version 1 and generated flashcards; a changed note gets a new version.
func (s *Service) IndexFile(notePath string, data []byte) (index.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.db.GetChecksum(notePath)
	if err != nil {
		return index.Unchanged, err
	}
	if prev == checksum.Sum(data) {
		return index.Unchanged, nil
	}

	out, err := s.pipe.Process(data)
	if err != nil {
		return index.Unchanged, err
	}
	clean := []byte(out.Redaction.Text)
	if out.Redaction.Total() > 0 {
		if err := s.store.Write(notePath, clean); err != nil {
			return index.Unchanged, err
		}
		s.audit("watch", notePath, out.Redaction)
	}
	if prev == checksum.Sum(clean) {
		return index.Unchanged, nil
	}

	if err := s.index(notePath, clean, out.Note); err != nil {
		return index.Unchanged, err
	}
	if err := s.snapshot(notePath, clean); err != nil {
		return index.Unchanged, err
	}
	if prev != "" {
		return index.Updated, nil
	}
	if _, err := s.saveGenerated(notePath, out); err != nil {
		return index.Unchanged, err
	}
	return index.Created, nil
}

// RemoveFile drops a note that disappeared from the vault.
func (s *Service) RemoveFile(notePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.DeleteNote(notePath)
}

// RedactText scrubs text without storing anything.
func (s *Service) RedactText(_ context.Context, text string) redact.Result {
	res := s.pipe.Redact(text)
	if n := res.Total(); n > 0 {
		s.logger.Debug("redaction preview", slog.Int("total", n))
	}
	return res
}

func (s *Service) read(notePath string) ([]byte, error) {
	data, err := s.store.Read(notePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Service) index(notePath string, data []byte, note *parser.Result) error {
	return s.db.UpsertNote(index.NoteRow{
		Path:      notePath,
		Title:     note.Title,
		Checksum:  checksum.Sum(data),
		Tags:      nonNilSlice(note.Tags),
		UpdatedAt: s.now(),
	}, note.Body, note.Links)
}

// snapshot records data as the next version unless it matches the latest.
func (s *Service) snapshot(notePath string, data []byte) error {
	cs := checksum.Sum(data)
	latest, err := s.db.LatestVersionChecksum(notePath)
	if err != nil {
		return err
	}
	if latest == cs {
		return nil
	}
	return s.db.InsertVersion(&models.NoteVersion{
		ID:        uuid.NewString(),
		NotePath:  notePath,
		Content:   string(data),
		Checksum:  cs,
		CreatedAt: s.now(),
	})
}

// audit logs redaction counts. Matched values are never logged.
func (s *Service) audit(op, notePath string, res redact.Result) {
	n := res.Total()
	if n == 0 {
		return
	}
	attrs := []any{
		slog.String("op", op),
		slog.String("path", notePath),
		slog.Int("total", n),
	}
	for _, c := range redact.Categories() {
		if k := res.Replacements[c]; k > 0 {
			attrs = append(attrs, slog.Int(string(c), k))
		}
	}
	s.logger.Info("content redacted", attrs...)
}

// buildNoteDetail constructs a NoteDetail from raw data without re-reading the file.
func (s *Service) buildNoteDetail(notePath string, data []byte, redactions map[redact.Category]int) (*NoteDetail, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(notePath)
	if err != nil {
		return nil, err
	}
	cards, err := s.db.ListFlashcards(notePath)
	if err != nil {
		return nil, err
	}
	updated := s.now()
	if row, err := s.db.GetNote(notePath); err == nil {
		updated = row.UpdatedAt
	}
	var counts map[redact.Category]int
	for c, n := range redactions {
		if n == 0 {
			continue
		}
		if counts == nil {
			counts = make(map[redact.Category]int)
		}
		counts[c] = n
	}
	return &NoteDetail{
		Path:        notePath,
		Title:       res.Title,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Tags:        nonNilSlice(res.Tags),
		Frontmatter: res.Frontmatter,
		Backlinks:   nonNilSlice(bl),
		Flashcards:  nonNilSlice(cards),
		Redactions:  counts,
		UpdatedAt:   updated,
	}, nil
}

// resolvePath cleans a requested note path, or derives one from title.
func resolvePath(requested, title string) (string, error) {
	p := strings.TrimSpace(requested)
	if p == "" {
		s := slug.Make(title)
		if s == "" {
			return "", fmt.Errorf("%w: path is required when the note has no title", apperr.ErrInvalidInput)
		}
		p = s
	}
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if p == "." || p == ".." || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: invalid path %q", apperr.ErrInvalidInput, requested)
	}
	if !strings.HasSuffix(p, ".md") {
		p += ".md"
	}
	return p, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
