package flashcard

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Difficulty is a coarse rating derived from the answer.
type Difficulty string

const (
	Easy   Difficulty = "EASY"
	Medium Difficulty = "MEDIUM"
	Hard   Difficulty = "HARD"
)

// ParseDifficulty accepts any letter case.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToUpper(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, true
	}
	return "", false
}

const (
	easyMaxChars   = 60
	easyMaxWords   = 8
	hardMinChars   = 300
	hardMinWords   = 50
	hardMinMarkers = 2
)

var complexityTerms = map[string]struct{}{
	"algorithm":      {},
	"algorithms":     {},
	"complexity":     {},
	"asynchronous":   {},
	"concurrency":    {},
	"concurrent":     {},
	"distributed":    {},
	"architecture":   {},
	"implementation": {},
	"optimization":   {},
	"polymorphism":   {},
	"recursion":      {},
	"recursive":      {},
	"theorem":        {},
	"derivative":     {},
	"integral":       {},
	"protocol":       {},
	"consensus":      {},
	"latency":        {},
	"throughput":     {},
}

var bigORe = regexp.MustCompile(`\bO\([^)]{1,20}\)`)

// Classify rates an answer. Long or marker-heavy answers are HARD, short
// ones EASY, the rest MEDIUM. The result depends only on the answer text.
func Classify(answer string) Difficulty {
	chars := utf8.RuneCountInString(answer)
	words := len(strings.Fields(answer))
	if chars > hardMinChars || words > hardMinWords || complexityMarkers(answer) >= hardMinMarkers {
		return Hard
	}
	if chars <= easyMaxChars && words <= easyMaxWords {
		return Easy
	}
	return Medium
}

func complexityMarkers(answer string) int {
	n := strings.Count(answer, "`")/2 + len(bigORe.FindAllStringIndex(answer, -1))
	for _, tok := range strings.Fields(answer) {
		word := strings.ToLower(strings.Trim(tok, ".,;:!?()[]\"'`"))
		if _, ok := complexityTerms[word]; ok {
			n++
			continue
		}
		if strings.Contains(tok, "()") || strings.Contains(tok, "::") ||
			strings.Contains(tok, "->") || strings.Contains(tok, "=>") {
			n++
		}
	}
	return n
}
