// Package checksum computes the content digests used as note versions and
// HTTP entity tags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Match reports whether tag names the digest of data. Tags may be bare
// digests or quoted entity tags, optionally weak ("W/").
func Match(data []byte, tag string) bool {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "W/")
	tag = strings.Trim(tag, `"`)
	if tag == "*" {
		return true
	}
	return strings.EqualFold(tag, Sum(data))
}

// ETag formats a digest as a strong entity tag.
func ETag(sum string) string {
	return `"` + sum + `"`
}
