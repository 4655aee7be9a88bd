package pipeline

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/lore/internal/parser"
	"github.com/starford/lore/internal/redact"
)

// redactNote scrubs a note without breaking its YAML front matter: values
// are redacted one scalar at a time and re-encoded with quoting, the body is
// redacted as text. Content without parseable front matter is redacted as a
// whole.
func (p *Pipeline) redactNote(content string) redact.Result {
	start, end, ok := parser.FrontmatterBounds([]byte(content))
	if !ok {
		return p.redactor.Redact(content)
	}
	block := content[start:end]

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return p.redactor.Redact(content)
	}

	counts := make(map[redact.Category]int)
	if p.redactNode(&doc, counts) {
		encoded, err := encodeNode(&doc)
		if err != nil {
			return p.redactor.Redact(content)
		}
		block = "\n" + strings.TrimRight(encoded, "\n")
	}

	tail := p.redactor.Redact(content[end:])
	addCounts(counts, tail.Replacements)
	text := content[:start] + block + tail.Text

	// Anything the scalar walk could not see (a value split over keys, an
	// unusual encoding) is caught here at the cost of the YAML shape.
	if rest := p.redactor.Redact(text); rest.Total() > 0 {
		addCounts(counts, rest.Replacements)
		text = rest.Text
	}
	return redact.Result{Text: text, Replacements: counts}
}

// redactNode rewrites sensitive scalars in place and reports whether
// anything changed. A mapping value is checked together with its key so
// that "password: hunter22" is recognised.
func (p *Pipeline) redactNode(n *yaml.Node, counts map[redact.Category]int) bool {
	changed := false
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			if p.redactNode(c, counts) {
				changed = true
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if p.redactScalar(k, "", counts) {
				changed = true
			}
			if v.Kind == yaml.ScalarNode {
				if p.redactScalar(v, k.Value+": ", counts) {
					changed = true
				}
				continue
			}
			if p.redactNode(v, counts) {
				changed = true
			}
		}
	case yaml.ScalarNode:
		return p.redactScalar(n, "", counts)
	}
	return changed
}

func (p *Pipeline) redactScalar(n *yaml.Node, prefix string, counts map[redact.Category]int) bool {
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		return false
	}
	value := n.Value
	res := p.redactor.Redact(prefix + value)
	if prefix != "" && res.Total() > 0 && strings.HasPrefix(res.Text, prefix) {
		value = strings.TrimPrefix(res.Text, prefix)
	} else {
		res = p.redactor.Redact(value)
		value = res.Text
	}
	if res.Total() == 0 {
		return false
	}
	addCounts(counts, res.Replacements)
	n.Value = value
	n.Tag = "!!str"
	n.Style = yaml.DoubleQuotedStyle
	return true
}

func encodeNode(doc *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func addCounts(dst, src map[redact.Category]int) {
	for c, n := range src {
		dst[c] += n
	}
}
