package flashcard

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/starford/lore/internal/redact"
)

// ErrInvalidCard is returned by Validate for a question/answer pair that
// cannot be stored as a card.
var ErrInvalidCard = errors.New("flashcard: invalid card")

// Flashcard is one extracted question/answer pair.
type Flashcard struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Difficulty Difficulty `json:"difficulty"`
}

// Strategy identifies the recognizer that produced a candidate.
type Strategy int

const (
	StrategyExplicitQA Strategy = iota
	StrategyDefinition
	StrategyListBased
	StrategySectionHeading
)

func (s Strategy) String() string {
	switch s {
	case StrategyExplicitQA:
		return "explicit_qa"
	case StrategyDefinition:
		return "definition"
	case StrategyListBased:
		return "list_based"
	case StrategySectionHeading:
		return "section_heading"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// candidate is a raw strategy hit with its byte span in the input.
type candidate struct {
	question string
	answer   string
	strategy Strategy
	start    int
	end      int
}

func (c candidate) overlaps(o candidate) bool {
	return c.start < o.end && o.start < c.end
}

type strategyFunc func(doc *document) []candidate

var primaryStrategies = []strategyFunc{explicitQA, definitions, listQuestions}

// Extract returns at most cfg.MaxCards cards found in text, ordered by the
// position where each was found. Text shorter than cfg.MinTextLen yields an
// empty list. The only error is ErrInvalidConfig.
func Extract(text string, cfg Config) ([]Flashcard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cards := make([]Flashcard, 0)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	if utf8.RuneCountInString(strings.TrimSpace(text)) < cfg.MinTextLen {
		return cards, nil
	}

	doc := newDocument(text)
	var pool []candidate
	for _, s := range primaryStrategies {
		pool = append(pool, s(doc)...)
	}
	// Heading cards only fill gaps the other strategies left.
	primary := len(pool)
	for _, h := range sectionHeadings(doc) {
		clash := false
		for _, c := range pool[:primary] {
			if h.overlaps(c) {
				clash = true
				break
			}
		}
		if !clash {
			pool = append(pool, h)
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].start != pool[j].start {
			return pool[i].start < pool[j].start
		}
		return pool[i].strategy < pool[j].strategy
	})

	seen := make(map[string]struct{}, len(pool))
	for _, c := range pool {
		if !acceptable(c.question, c.answer, cfg) {
			continue
		}
		key := Normalize(c.question)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cards = append(cards, Flashcard{
			Question:   c.question,
			Answer:     c.answer,
			Difficulty: Classify(c.answer),
		})
		if len(cards) == cfg.MaxCards {
			break
		}
	}
	return cards, nil
}

// Normalize folds case and collapses whitespace. Two questions with the same
// normalized form are duplicates.
func Normalize(question string) string {
	return cases.Fold().String(strings.Join(strings.Fields(question), " "))
}

var questionStemRe = regexp.MustCompile(`(?i)^(?:what|who|whom|whose|when|where|why|how|which|define|explain|describe|list|name|compare|contrast|identify|summarize|is|are|does|do|did|can|could|should|would|will)\b`)

func acceptable(q, a string, cfg Config) bool {
	ql, al := utf8.RuneCountInString(q), utf8.RuneCountInString(a)
	if ql < cfg.MinQuestionLen || ql > cfg.MaxQuestionLen {
		return false
	}
	if al < cfg.MinAnswerLen || al > cfg.MaxAnswerLen {
		return false
	}
	if !strings.Contains(q, "?") && !questionStemRe.MatchString(q) {
		return false
	}
	return !redact.IsPlaceholderOnly(a)
}

// Validate checks a caller-authored card. Manual cards are held to the upper
// length bounds of cfg but may be as short as one character.
func Validate(question, answer string, cfg Config) error {
	q, a := strings.TrimSpace(question), strings.TrimSpace(answer)
	switch {
	case q == "":
		return fmt.Errorf("%w: question is required", ErrInvalidCard)
	case a == "":
		return fmt.Errorf("%w: answer is required", ErrInvalidCard)
	case utf8.RuneCountInString(q) > cfg.MaxQuestionLen:
		return fmt.Errorf("%w: question longer than %d characters", ErrInvalidCard, cfg.MaxQuestionLen)
	case utf8.RuneCountInString(a) > cfg.MaxAnswerLen:
		return fmt.Errorf("%w: answer longer than %d characters", ErrInvalidCard, cfg.MaxAnswerLen)
	}
	return nil
}
