// Package pipeline runs note content through redaction and then flashcard
// extraction. Extraction only ever sees redacted text.
package pipeline

import (
	"fmt"

	"github.com/starford/lore/internal/flashcard"
	"github.com/starford/lore/internal/parser"
	"github.com/starford/lore/internal/redact"
)

// Pipeline pairs a Redactor with extraction bounds. It holds no mutable
// state and is safe for concurrent use.
type Pipeline struct {
	redactor *redact.Redactor
	cfg      flashcard.Config
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRedactor replaces the default all-categories redactor.
func WithRedactor(r *redact.Redactor) Option {
	return func(p *Pipeline) {
		p.redactor = r
	}
}

// WithConfig sets the extraction bounds.
func WithConfig(cfg flashcard.Config) Option {
	return func(p *Pipeline) {
		p.cfg = cfg
	}
}

// New builds a Pipeline and validates its extraction config.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		redactor: redact.New(),
		cfg:      flashcard.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Config returns the extraction bounds.
func (p *Pipeline) Config() flashcard.Config {
	return p.cfg
}

// Output is the result of a full pass over one note.
type Output struct {
	Redaction redact.Result
	Note      *parser.Result
	Cards     []flashcard.Flashcard
}

// Redact scrubs text without extracting. Front matter values are redacted
// in place and stay valid YAML.
func (p *Pipeline) Redact(text string) redact.Result {
	return p.redactNote(text)
}

// Process redacts the whole note, front matter included, then extracts
// cards from the redacted body. Notes whose front matter sets
// "flashcards: false" yield no cards.
func (p *Pipeline) Process(content []byte) (*Output, error) {
	red := p.redactNote(string(content))
	note, err := parser.Parse([]byte(red.Text))
	if err != nil {
		return nil, fmt.Errorf("pipeline: parse: %w", err)
	}
	out := &Output{Redaction: red, Note: note, Cards: []flashcard.Flashcard{}}
	if note.SkipFlashcards {
		return out, nil
	}
	cards, err := flashcard.Extract(note.Body, p.cfg)
	if err != nil {
		return nil, fmt.Errorf("pipeline: extract: %w", err)
	}
	out.Cards = cards
	return out, nil
}

// Preview redacts text and extracts from the result using the pipeline's
// bounds with ov applied. Invalid overrides return flashcard.ErrInvalidConfig.
func (p *Pipeline) Preview(text string, ov flashcard.Overrides) (redact.Result, []flashcard.Flashcard, error) {
	red := p.redactNote(text)
	cards, err := flashcard.Extract(red.Text, ov.Apply(p.cfg))
	if err != nil {
		return redact.Result{}, nil, err
	}
	return red, cards, nil
}

// Default returns a Pipeline with every redaction category and the default
// extraction bounds.
func Default() *Pipeline {
	return &Pipeline{redactor: redact.New(), cfg: flashcard.DefaultConfig()}
}
