package flashcard

import (
	"regexp"
	"strings"
)

type line struct {
	text       string
	start, end int // byte offsets in the document, end excludes the newline
}

func (l line) blank() bool { return strings.TrimSpace(l.text) == "" }

type document struct {
	lines []line
}

func newDocument(text string) *document {
	doc := &document{}
	off := 0
	for _, s := range strings.Split(text, "\n") {
		doc.lines = append(doc.lines, line{text: s, start: off, end: off + len(s)})
		off += len(s) + 1
	}
	return doc
}

// --- explicit Q:/A: pairs ---

var (
	questionMarkerRe = regexp.MustCompile(`^\s*(?:[-*+]\s+)?(?:\*\*)?(?i:q|question)\s*(?:\*\*)?\s*:\s*(?:\*\*)?\s*(.*)$`)
	answerMarkerRe   = regexp.MustCompile(`^\s*(?:[-*+]\s+)?(?:\*\*)?(?i:a|answer)\s*(?:\*\*)?\s*:\s*(?:\*\*)?\s*(.*)$`)
	inlineAnswerRe   = regexp.MustCompile(`\s(?:\*\*)?(?i:a|answer)(?:\*\*)?\s*:(?:\*\*)?\s+`)
)

type qaState int

const (
	seekQuestion qaState = iota
	inQuestion
	inAnswer
)

// explicitQA walks the lines once. A question runs until its answer marker;
// an answer runs until a blank line, the next question marker or the end of
// the text. Blank lines between a question and its answer are allowed.
func explicitQA(doc *document) []candidate {
	var (
		out            []candidate
		state          = seekQuestion
		qLines, aLines []string
		start, end     int
	)
	flush := func() {
		if state == inAnswer {
			q := cleanInline(joinLines(qLines, " "))
			a := joinLines(aLines, "\n")
			if q != "" && a != "" {
				out = append(out, candidate{question: q, answer: a, strategy: StrategyExplicitQA, start: start, end: end})
			}
		}
		state = seekQuestion
		qLines, aLines = nil, nil
	}

	for _, ln := range doc.lines {
		if m := questionMarkerRe.FindStringSubmatch(ln.text); m != nil {
			flush()
			start, end = ln.start, ln.end
			body := m[1]
			if loc := inlineAnswerRe.FindStringIndex(body); loc != nil {
				qLines, aLines = []string{body[:loc[0]]}, []string{body[loc[1]:]}
				state = inAnswer
			} else {
				qLines = []string{body}
				state = inQuestion
			}
			continue
		}
		if m := answerMarkerRe.FindStringSubmatch(ln.text); m != nil {
			switch state {
			case inQuestion:
				aLines = []string{m[1]}
				end = ln.end
				state = inAnswer
			case inAnswer:
				flush()
			}
			continue
		}
		switch state {
		case inQuestion:
			if !ln.blank() {
				qLines = append(qLines, ln.text)
				end = ln.end
			}
		case inAnswer:
			if ln.blank() {
				flush()
				continue
			}
			aLines = append(aLines, ln.text)
			end = ln.end
		}
	}
	flush()
	return out
}

// --- definitions ---

var definitionRes = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(?:[-*+]\s+)?\*\*([^*\n]{1,80}?)\*\*\s*:\s*(.+)$`),
	regexp.MustCompile(`^\s*(?:[-*+]\s+)?\*\*([^*\n]{1,80}?):\*\*\s*(.+)$`),
	regexp.MustCompile(`^\s*(?:[-*+]\s+)?__([^_\n]{1,80}?)__\s*:\s*(.+)$`),
	regexp.MustCompile(`^\s*(?:[-*+]\s+)?__([^_\n]{1,80}?):__\s*(.+)$`),
	regexp.MustCompile(`^\s*(?:[-*+]\s+)?([A-Z][A-Za-z0-9 _()/.+#'-]{0,60}?)\s*:\s+(.+)$`),
}

// The last definition pattern has no markup, so it is limited to short
// capitalized terms.
const plainTermMaxWords = 4

var termStopList = map[string]struct{}{
	"q": {}, "question": {}, "a": {}, "answer": {},
	"note": {}, "notes": {}, "nb": {}, "todo": {}, "fixme": {},
	"example": {}, "examples": {}, "warning": {}, "tip": {}, "see": {},
	"source": {}, "sources": {}, "tags": {}, "title": {}, "date": {}, "time": {},
	"update": {}, "edit": {},
}

// plainTerm reports whether an unmarked "Term: text" label reads as a term.
// Enumerated labels such as "Step 1" or "Phase 2b" are instructions.
func plainTerm(term string) bool {
	fields := strings.Fields(term)
	if len(fields) == 0 || len(fields) > plainTermMaxWords {
		return false
	}
	if len(fields) > 1 {
		if _, enum := enumerationWords[strings.ToLower(fields[0])]; enum {
			return false
		}
		lastField := fields[len(fields)-1]
		if lastField[0] >= '0' && lastField[0] <= '9' {
			return false
		}
	}
	return true
}

var enumerationWords = map[string]struct{}{
	"step": {}, "phase": {}, "stage": {}, "part": {}, "chapter": {},
	"section": {}, "day": {}, "week": {}, "item": {}, "option": {},
}

func definitions(doc *document) []candidate {
	var out []candidate
	last := len(definitionRes) - 1
	for _, ln := range doc.lines {
		for i, re := range definitionRes {
			m := re.FindStringSubmatch(ln.text)
			if m == nil {
				continue
			}
			term := cleanInline(m[1])
			def := strings.TrimSpace(m[2])
			if i == last && !plainTerm(term) {
				break
			}
			if term == "" || def == "" || strings.HasSuffix(term, "?") {
				break
			}
			if _, stop := termStopList[strings.ToLower(term)]; stop {
				break
			}
			out = append(out, candidate{
				question: "What is " + term + "?",
				answer:   def,
				strategy: StrategyDefinition,
				start:    ln.start,
				end:      ln.end,
			})
			break
		}
	}
	return out
}

// --- numbered questions with nested bullets ---

var (
	numberedQuestionRe = regexp.MustCompile(`^\s{0,3}\d{1,3}[.)]\s+(.+\?)\s*$`)
	nestedBulletRe     = regexp.MustCompile(`^[ \t]+(?:[-*+•]|\d{1,3}[.)])\s+(.+)$`)
)

func listQuestions(doc *document) []candidate {
	var out []candidate
	lines := doc.lines
	for i := 0; i < len(lines); i++ {
		m := numberedQuestionRe.FindStringSubmatch(lines[i].text)
		if m == nil {
			continue
		}
		var items []string
		j := i + 1
		for ; j < len(lines); j++ {
			b := nestedBulletRe.FindStringSubmatch(lines[j].text)
			if b == nil {
				break
			}
			items = append(items, strings.TrimSpace(b[1]))
		}
		if len(items) == 0 {
			continue
		}
		out = append(out, candidate{
			question: cleanInline(m[1]),
			answer:   strings.Join(items, "; "),
			strategy: StrategyListBased,
			start:    lines[i].start,
			end:      lines[j-1].end,
		})
		i = j - 1
	}
	return out
}

// --- headings followed by a bullet block ---

var (
	headingRe = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.+?)\s*#*\s*$`)
	bulletRe  = regexp.MustCompile(`^\s*(?:[-*+•]|\d{1,3}[.)])\s+(.+)$`)
)

func sectionHeadings(doc *document) []candidate {
	var out []candidate
	lines := doc.lines
	for i := 0; i < len(lines); i++ {
		m := headingRe.FindStringSubmatch(lines[i].text)
		if m == nil {
			continue
		}
		j := i + 1
		for j < len(lines) && lines[j].blank() {
			j++
		}
		var items []string
		k := j
		for ; k < len(lines); k++ {
			b := bulletRe.FindStringSubmatch(lines[k].text)
			if b == nil {
				break
			}
			items = append(items, strings.TrimSpace(b[1]))
		}
		if len(items) == 0 {
			continue
		}
		title := strings.TrimSuffix(cleanInline(m[1]), ":")
		q := title
		if !strings.HasSuffix(title, "?") {
			q = "What are the key points of " + title + "?"
		}
		out = append(out, candidate{
			question: q,
			answer:   strings.Join(items, "; "),
			strategy: StrategySectionHeading,
			start:    lines[i].start,
			end:      lines[k-1].end,
		})
		i = k - 1
	}
	return out
}

// joinLines trims each line, drops empty ones and joins the rest.
func joinLines(lines []string, sep string) string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, sep)
}

// cleanInline strips surrounding emphasis markup and whitespace.
func cleanInline(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*_`"))
}
