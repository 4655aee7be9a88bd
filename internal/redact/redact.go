package redact

import (
	"sort"
	"strings"
)

// maxPasses bounds the fixpoint loop. Real input converges after one pass;
// a second pass only runs when a replacement exposed a new match.
const maxPasses = 4

// Result is the outcome of one Redact call.
type Result struct {
	Text         string           `json:"text"`
	Replacements map[Category]int `json:"replacements"`
}

// Total returns the number of replacements across all categories.
func (r Result) Total() int {
	n := 0
	for _, c := range r.Replacements {
		n += c
	}
	return n
}

// Redactor holds compiled rules for an ordered set of categories. It is
// immutable after construction and safe for concurrent use.
type Redactor struct {
	categories []Category
	rules      map[Category][]rule
}

// Option configures a Redactor.
type Option func(*Redactor)

// WithCategories restricts redaction to the given categories. Application
// order stays the fixed priority order regardless of argument order.
// Unknown categories are ignored.
func WithCategories(cats ...Category) Option {
	return func(r *Redactor) {
		want := make(map[Category]struct{}, len(cats))
		for _, c := range cats {
			want[c] = struct{}{}
		}
		var out []Category
		for _, c := range priority {
			if _, ok := want[c]; ok {
				out = append(out, c)
			}
		}
		r.categories = out
	}
}

// New builds a Redactor. Without options every category is enabled.
func New(opts ...Option) *Redactor {
	r := &Redactor{
		categories: Categories(),
		rules:      defaultRules(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Categories returns the enabled categories in application order.
func (r *Redactor) Categories() []Category {
	out := make([]Category, len(r.categories))
	copy(out, r.categories)
	return out
}

var defaultRedactor = New()

// Redact scrubs text with every category enabled.
func Redact(text string) Result {
	return defaultRedactor.Redact(text)
}

// Redact replaces every sensitive span in text with its category
// placeholder. Any string is valid input; text without matches is returned
// unchanged with zero counts.
func (r *Redactor) Redact(text string) Result {
	res := Result{Replacements: make(map[Category]int, len(priority))}
	for _, c := range priority {
		res.Replacements[c] = 0
	}

	out := text
	for pass := 0; pass < maxPasses && out != ""; pass++ {
		spans := r.scan(out)
		if len(spans) == 0 {
			break
		}
		for _, s := range spans {
			res.Replacements[s.cat]++
		}
		out = apply(out, spans)
	}
	res.Text = out
	return res
}

type span struct {
	start, end int
	cat        Category
	order      int
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// scan returns non-overlapping spans to replace, sorted by position.
// Existing placeholders are claimed up front so they are never rematched.
func (r *Redactor) scan(text string) []span {
	var claimed []span
	for _, loc := range placeholderRe.FindAllStringIndex(text, -1) {
		claimed = append(claimed, span{start: loc[0], end: loc[1]})
	}

	var found []span
	for _, cat := range r.categories {
		cands := r.candidates(cat, text)
		sort.SliceStable(cands, func(i, j int) bool {
			a, b := cands[i], cands[j]
			if a.start != b.start {
				return a.start < b.start
			}
			if la, lb := a.end-a.start, b.end-b.start; la != lb {
				return la > lb
			}
			return a.order < b.order
		})
	next:
		for _, c := range cands {
			for _, taken := range claimed {
				if c.overlaps(taken) {
					continue next
				}
			}
			claimed = append(claimed, c)
			found = append(found, c)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].start < found[j].start })
	return found
}

func (r *Redactor) candidates(cat Category, text string) []span {
	var out []span
	for i, rl := range r.rules[cat] {
		for _, m := range rl.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[0], m[1]
			if rl.group > 0 {
				if 2*rl.group+1 >= len(m) || m[2*rl.group] < 0 {
					continue
				}
				start, end = m[2*rl.group], m[2*rl.group+1]
			}
			if rl.fit != nil {
				var ok bool
				if end, ok = rl.fit(text, start, end); !ok {
					continue
				}
			}
			if end <= start {
				continue
			}
			out = append(out, span{start: start, end: end, cat: cat, order: i})
		}
	}
	return out
}

func apply(text string, spans []span) string {
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, s := range spans {
		b.WriteString(text[last:s.start])
		b.WriteString(s.cat.Placeholder())
		last = s.end
	}
	b.WriteString(text[last:])
	return b.String()
}

// IsPlaceholderOnly reports whether s holds nothing but placeholder tokens,
// whitespace and punctuation.
func IsPlaceholderOnly(s string) bool {
	if !placeholderRe.MatchString(s) {
		return false
	}
	rest := placeholderRe.ReplaceAllString(s, "")
	return strings.Trim(rest, " \t\r\n.,;:!?-*_()[]{}\"'`") == ""
}
