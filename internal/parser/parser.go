// Package parser splits a Markdown note into front matter and body and
// collects its title, tags and wikilinks.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	tagRe      = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Links       []string
	Tags        []string
	Title       string
	// SkipFlashcards is set by "flashcards: false" in the front matter.
	SkipFlashcards bool
}

// Parse extracts frontmatter, body, wikilinks, and tags from raw Markdown bytes.
// Malformed front matter is treated as body text, so Parse does not fail on
// any input today.
func Parse(data []byte) (*Result, error) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	fm, body := splitFrontmatter(data)

	return &Result{
		Frontmatter:    fm,
		Body:           body,
		Links:          extractLinks(body),
		Tags:           extractTags(body, fm),
		Title:          deriveTitle(fm, body),
		SkipFlashcards: flashcardsDisabled(fm),
	}, nil
}

// FrontmatterBounds locates the YAML front matter: data[start:end] is the
// block between the opening and closing "---" lines. ok is false when data
// has no front matter.
func FrontmatterBounds(data []byte) (start, end int, ok bool) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return 0, 0, false
	}
	start = len(data) - len(trimmed) + len(delim)
	idx := bytes.Index(data[start:], []byte("\n"+delim))
	if idx < 0 {
		return 0, 0, false
	}
	return start, start + idx, true
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string) {
	start, end, ok := FrontmatterBounds(data)
	if !ok {
		return nil, string(data)
	}
	afterDelim := data[end+len("\n---"):]
	body := strings.TrimLeft(string(afterDelim), "\n")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(data[start:end], &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

// extractLinks returns deduplicated wikilink targets, normalising aliases.
func extractLinks(body string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		// [[Target|Alias]] and [[Target#Heading]] both point at Target.
		target := m[1]
		if i := strings.IndexAny(target, "|#"); i >= 0 {
			target = target[:i]
		}
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// extractTags collects tags from the front matter "tags" field (a YAML list
// or a comma separated string) and inline #tags from the body.
func extractTags(body string, fm map[string]interface{}) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.TrimPrefix(strings.TrimSpace(s), "#")
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	switch v := fm["tags"].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			add(s)
		}
	}

	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if s, ok := fm["title"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

func flashcardsDisabled(fm map[string]interface{}) bool {
	v, ok := fm["flashcards"].(bool)
	return ok && !v
}
