// Package redact scrubs sensitive substrings from note text before it is
// stored or analysed.
//
// Detection is rule based. Each category (connection strings, credentials,
// e-mail addresses, payment card numbers, national identifiers and IP
// addresses) is a family of regular expressions, optionally followed by a
// plausibility check such as the Luhn checksum for card numbers. Categories
// run in a fixed priority order and a span claimed by an earlier category is
// never matched again, so one substring is replaced exactly once.
//
// Matches are replaced with fixed placeholder tokens such as
// [REDACTED_EMAIL]. Replacement is destructive and the placeholder spelling
// is a stable contract for anything that reads redacted text. Existing
// placeholders are never matched, which makes Redact idempotent.
package redact
