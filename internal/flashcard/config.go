package flashcard

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidConfig is returned when extraction bounds are inconsistent.
var ErrInvalidConfig = errors.New("flashcard: invalid config")

// Config bounds an extraction run. Lengths are counted in characters.
type Config struct {
	MaxCards       int `yaml:"max_cards" json:"max_cards"`
	MinQuestionLen int `yaml:"min_question_len" json:"min_question_len"`
	MaxQuestionLen int `yaml:"max_question_len" json:"max_question_len"`
	MinAnswerLen   int `yaml:"min_answer_len" json:"min_answer_len"`
	MaxAnswerLen   int `yaml:"max_answer_len" json:"max_answer_len"`
	// MinTextLen is the shortest input worth scanning at all.
	MinTextLen int `yaml:"min_text_len" json:"min_text_len"`
}

// DefaultConfig returns the standard extraction bounds.
func DefaultConfig() Config {
	return Config{
		MaxCards:       25,
		MinQuestionLen: 5,
		MaxQuestionLen: 500,
		MinAnswerLen:   3,
		MaxAnswerLen:   2000,
		MinTextLen:     20,
	}
}

// Validate reports inconsistent bounds. It never clamps.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.MaxCards, validation.Required, validation.Min(1)),
		validation.Field(&c.MinQuestionLen, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxQuestionLen, validation.Required, validation.Min(c.MinQuestionLen)),
		validation.Field(&c.MinAnswerLen, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxAnswerLen, validation.Required, validation.Min(c.MinAnswerLen)),
		validation.Field(&c.MinTextLen, validation.Min(0)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Overrides carries optional per-call changes to a Config. Nil fields keep
// the base value.
type Overrides struct {
	MaxCards       *int `json:"max_cards,omitempty"`
	MinQuestionLen *int `json:"min_question_len,omitempty"`
	MaxQuestionLen *int `json:"max_question_len,omitempty"`
	MinAnswerLen   *int `json:"min_answer_len,omitempty"`
	MaxAnswerLen   *int `json:"max_answer_len,omitempty"`
}

// Apply returns base with the non-nil overrides set.
func (o Overrides) Apply(base Config) Config {
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&base.MaxCards, o.MaxCards)
	set(&base.MinQuestionLen, o.MinQuestionLen)
	set(&base.MaxQuestionLen, o.MaxQuestionLen)
	set(&base.MinAnswerLen, o.MinAnswerLen)
	set(&base.MaxAnswerLen, o.MaxAnswerLen)
	return base
}
