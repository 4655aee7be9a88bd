// Package flashcard derives question/answer study cards from redacted note
// text.
//
// Four independent strategies scan the whole text: explicit Q:/A: pairs,
// definition lines ("**Term**: clause"), numbered questions with indented
// bullet answers, and headings followed by a bullet block. Their candidates
// are pooled in source order, validated against the length bounds in
// Config, deduplicated by normalized question and capped at MaxCards.
// Difficulty is a fixed function of the answer text.
//
// Extract must be given the output of the redact package, never raw note
// content.
package flashcard
