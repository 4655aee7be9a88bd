package mcpserver

// NoteFormatContract describes the Markdown note format LLM clients should
// follow, including the patterns flashcard generation recognises.
const NoteFormatContract = `# Lore Note Format Contract

Lore stores notes as Markdown files. On every write, sensitive data is
replaced by placeholders and study flashcards are generated from the note
body.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # REQUIRED unless the body starts with "# Heading"
tags:                               # OPTIONAL: YAML list or "a, b" string
  - tag-one
flashcards: false                   # OPTIONAL: set to false to skip generation
---

Body text in standard Markdown. Link other notes with [[wikilinks]].
` + "```" + `

## Rules

1. **Paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes. When no path is given,
   one is derived from the title (` + "`" + `Weekly Review` + "`" + ` becomes ` + "`" + `weekly-review.md` + "`" + `).
2. **Wikilinks** use the filename stem: ` + "`" + `[[other-note]]` + "`" + `, ` + "`" + `[[folder/note|alias]]` + "`" + `.
3. **Encoding** is UTF-8.
4. Do not rely on secrets surviving a write. Credentials, connection strings,
   email addresses, card numbers, national IDs and IP addresses are replaced by
   ` + "`" + `[REDACTED_CREDENTIAL]` + "`" + `, ` + "`" + `[REDACTED_CONNECTION]` + "`" + `, ` + "`" + `[REDACTED_EMAIL]` + "`" + `,
   ` + "`" + `[REDACTED_CARD]` + "`" + `, ` + "`" + `[REDACTED_ID]` + "`" + ` and ` + "`" + `[REDACTED_IP]` + "`" + `.

## Writing for flashcards

Cards are generated from these patterns, in source order:

- **Explicit pairs:** a line starting ` + "`" + `Q:` + "`" + ` followed by a line starting ` + "`" + `A:` + "`" + `.
  Answers may continue over several lines.
- **Definitions:** ` + "`" + `**Term**: definition` + "`" + ` or ` + "`" + `Term: definition` + "`" + ` for short
  capitalised terms. These become "What is Term?".
- **Numbered questions:** ` + "`" + `1. Question?` + "`" + ` with indented bullets as the answer.
- **Sections:** a heading followed by a bullet list becomes "What are the key
  points of Heading?" (a heading ending in "?" is used as written).

Questions must end with "?" or start with a question word. Answers made only
of placeholders are dropped.

## Example

` + "```" + `markdown
---
title: TCP basics
tags: [networking]
---

# TCP basics

Q: What does the three-way handshake establish?
A: A synchronised sequence number pair on both ends.

**MSS**: the largest segment a host will accept.

## Congestion control
- Slow start doubles the window each RTT
- Congestion avoidance grows it linearly
` + "```" + `
`
