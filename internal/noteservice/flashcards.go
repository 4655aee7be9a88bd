package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/lore/internal/apperr"
	"github.com/starford/lore/internal/flashcard"
	"github.com/starford/lore/internal/models"
	"github.com/starford/lore/internal/pipeline"
	"github.com/starford/lore/internal/redact"
)

// FlashcardInput carries the editable fields of a manual card.
type FlashcardInput struct {
	NotePath   string
	Question   string
	Answer     string
	Difficulty string
}

// ListFlashcards returns a note's cards, or every card when notePath is empty.
func (s *Service) ListFlashcards(_ context.Context, notePath string) ([]models.Flashcard, error) {
	if notePath != "" {
		if _, err := s.db.GetNote(notePath); err != nil {
			return nil, err
		}
	}
	return s.db.ListFlashcards(notePath)
}

// RegenerateFlashcards re-runs the pipeline on the stored note and replaces
// its generated cards. Manual cards are kept.
func (s *Service) RegenerateFlashcards(_ context.Context, notePath string) ([]models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(notePath)
	if err != nil {
		return nil, err
	}
	out, err := s.pipe.Process(data)
	if err != nil {
		return nil, err
	}
	if _, err := s.saveGenerated(notePath, out); err != nil {
		return nil, err
	}
	return s.db.ListFlashcards(notePath)
}

// CreateFlashcard adds a manual card to an existing note. Question and
// answer are redacted before they are checked and stored. An empty
// difficulty is classified from the answer.
func (s *Service) CreateFlashcard(_ context.Context, in FlashcardInput) (*models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.GetNote(in.NotePath); err != nil {
		return nil, err
	}
	q, a, d, err := s.prepareCard(in)
	if err != nil {
		return nil, err
	}
	now := s.now()
	c := &models.Flashcard{
		ID:         uuid.NewString(),
		NotePath:   in.NotePath,
		Question:   q,
		Answer:     a,
		Difficulty: d,
		Source:     models.SourceManual,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.InsertFlashcard(c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateFlashcard replaces the question, answer and difficulty of a card.
// The card becomes manual and survives regeneration.
func (s *Service) UpdateFlashcard(_ context.Context, id string, in FlashcardInput) (*models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.db.GetFlashcard(id)
	if err != nil {
		return nil, err
	}
	q, a, d, err := s.prepareCard(in)
	if err != nil {
		return nil, err
	}
	c.Question, c.Answer, c.Difficulty = q, a, d
	c.Source = models.SourceManual
	c.UpdatedAt = s.now()
	if err := s.db.UpdateFlashcard(*c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteFlashcard removes one card.
func (s *Service) DeleteFlashcard(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.DeleteFlashcard(id)
}

// ExtractPreview redacts text and extracts cards without storing anything.
func (s *Service) ExtractPreview(_ context.Context, text string, ov flashcard.Overrides) (redact.Result, []flashcard.Flashcard, error) {
	res, cards, err := s.pipe.Preview(text, ov)
	if err != nil {
		return redact.Result{}, nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return res, cards, nil
}

func (s *Service) prepareCard(in FlashcardInput) (question, answer, difficulty string, err error) {
	question = s.pipe.Redact(strings.TrimSpace(in.Question)).Text
	answer = s.pipe.Redact(strings.TrimSpace(in.Answer)).Text
	if err := flashcard.Validate(question, answer, s.pipe.Config()); err != nil {
		return "", "", "", fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if in.Difficulty == "" {
		return question, answer, string(flashcard.Classify(answer)), nil
	}
	d, ok := flashcard.ParseDifficulty(in.Difficulty)
	if !ok {
		return "", "", "", fmt.Errorf("%w: difficulty must be EASY, MEDIUM or HARD", apperr.ErrInvalidInput)
	}
	return question, answer, string(d), nil
}

// saveGenerated stores the pipeline's cards as the note's auto cards.
func (s *Service) saveGenerated(notePath string, out *pipeline.Output) ([]models.Flashcard, error) {
	now := s.now()
	cards := make([]models.Flashcard, len(out.Cards))
	for i, fc := range out.Cards {
		cards[i] = models.Flashcard{
			ID:         uuid.NewString(),
			NotePath:   notePath,
			Question:   fc.Question,
			Answer:     fc.Answer,
			Difficulty: string(fc.Difficulty),
			Source:     models.SourceAuto,
			Position:   i,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}
	if err := s.db.ReplaceAutoFlashcards(notePath, cards); err != nil {
		return nil, err
	}
	s.logger.Info("flashcards generated", slog.String("path", notePath), slog.Int("count", len(cards)))
	s.events.PublishFlashcardsEvent(notePath, len(cards))
	return cards, nil
}
