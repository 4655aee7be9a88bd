package index

import (
	"strings"
	"unicode/utf8"
)

const snippetRunes = 160

// ftsQuery turns free text into an FTS5 query: every term becomes a quoted
// phrase so that redaction placeholders and punctuation such as "c++" are
// matched literally instead of failing to parse.
func ftsQuery(q string) string {
	fields := strings.Fields(q)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}

// likePattern escapes LIKE wildcards; queries use ESCAPE '\'.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// snippet returns up to snippetRunes of body centred on the first
// case-insensitive occurrence of q, with ellipses where text was cut.
func snippet(body, q string) string {
	body = strings.Join(strings.Fields(body), " ")
	if utf8.RuneCountInString(body) <= snippetRunes {
		return body
	}
	runes := []rune(body)
	start := 0
	if i := strings.Index(strings.ToLower(body), strings.ToLower(q)); i > 0 && q != "" {
		start = utf8.RuneCountInString(body[:i]) - snippetRunes/3
		start = max(start, 0)
	}
	end := min(start+snippetRunes, len(runes))
	out := string(runes[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(runes) {
		out += "..."
	}
	return out
}
