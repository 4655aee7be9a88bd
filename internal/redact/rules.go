package redact

import (
	"net/netip"
	"regexp"
	"strings"
)

// Category names a family of sensitive data.
type Category string

// Supported categories.
const (
	CategoryConnectionString Category = "connection_string"
	CategoryCredential       Category = "credential"
	CategoryEmail            Category = "email"
	CategoryCreditCard       Category = "credit_card"
	CategoryNationalID       Category = "national_id"
	CategoryIPAddress        Category = "ip_address"
)

// Placeholder tokens. Their spelling is part of the public contract.
const (
	PlaceholderConnection = "[REDACTED_CONNECTION]"
	PlaceholderCredential = "[REDACTED_CREDENTIAL]"
	PlaceholderEmail      = "[REDACTED_EMAIL]"
	PlaceholderCard       = "[REDACTED_CARD]"
	PlaceholderID         = "[REDACTED_ID]"
	PlaceholderIP         = "[REDACTED_IP]"
)

// priority is the fixed application order: structured shapes first so that
// generic number and address patterns never see their pieces.
var priority = []Category{
	CategoryConnectionString,
	CategoryCredential,
	CategoryEmail,
	CategoryCreditCard,
	CategoryNationalID,
	CategoryIPAddress,
}

// Categories returns every category in application order.
func Categories() []Category {
	out := make([]Category, len(priority))
	copy(out, priority)
	return out
}

// ParseCategory maps a configuration string to a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, p := range priority {
		if p == c {
			return c, true
		}
	}
	return "", false
}

// Placeholder returns the replacement token for c.
func (c Category) Placeholder() string {
	switch c {
	case CategoryConnectionString:
		return PlaceholderConnection
	case CategoryCredential:
		return PlaceholderCredential
	case CategoryEmail:
		return PlaceholderEmail
	case CategoryCreditCard:
		return PlaceholderCard
	case CategoryNationalID:
		return PlaceholderID
	case CategoryIPAddress:
		return PlaceholderIP
	}
	return "[REDACTED]"
}

var placeholderRe = regexp.MustCompile(`\[REDACTED_(?:CONNECTION|CREDENTIAL|EMAIL|CARD|ID|IP)\]`)

// fitFunc checks a raw match and may shorten it. It returns the final end
// offset and whether the match is kept.
type fitFunc func(text string, start, end int) (int, bool)

type rule struct {
	name  string
	re    *regexp.Regexp
	group int // submatch holding the sensitive part; 0 is the whole match
	fit   fitFunc
}

func defaultRules() map[Category][]rule {
	return map[Category][]rule{
		CategoryConnectionString: {
			{
				name: "url_userinfo",
				re:   regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.\-]{1,20}://[^\s:/@'"<>]+:[^\s@'"<>]+@[^\s/?#'"<>]+[^\s'"<>]*`),
				fit:  trimTrailingPunct,
			},
		},
		CategoryCredential: {
			{name: "private_key", re: regexp.MustCompile(`-----BEGIN (?:[A-Z0-9]+ )*PRIVATE KEY-----(?:[\s\S]*?-----END (?:[A-Z0-9]+ )*PRIVATE KEY-----)?`)},
			{name: "password_assignment", re: regexp.MustCompile(`(?i)\b(?:password|passwd|passphrase|pwd)\s*[:=]\s*["']?([^\s"'\[\]]{3,})`), group: 1},
			{
				name:  "secret_assignment",
				re:    regexp.MustCompile(`(?i)\b[a-z0-9_]*?(?:api[_-]?key|apikey|api[_-]?secret|access[_-]?token|auth[_-]?token|refresh[_-]?token|client[_-]?secret|secret[_-]?key|access[_-]?key(?:[_-]?id)?|private[_-]?token|token|secret)\s*[:=]\s*["']?([A-Za-z0-9_\-./+=]{8,})`),
				group: 1,
				fit:   requireDigit,
			},
			{name: "bearer", re: regexp.MustCompile(`(?i)\bbearer\s+([A-Za-z0-9\-._~+/]{16,}=*)`), group: 1},
			{name: "jwt", re: regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{8,}\.eyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}`)},
			{name: "aws_access_key", re: regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`)},
			{name: "github_token", re: regexp.MustCompile(`\b(?:gh[pousr]_[A-Za-z0-9]{30,}|github_pat_[A-Za-z0-9_]{40,})`)},
			{name: "slack_token", re: regexp.MustCompile(`\bxox[abposr]-[A-Za-z0-9-]{10,}`)},
			{name: "sk_key", re: regexp.MustCompile(`\bsk-(?:ant-|proj-)?[A-Za-z0-9_-]{20,}`)},
			{name: "stripe_key", re: regexp.MustCompile(`\b[rsp]k_(?:live|test)_[A-Za-z0-9]{16,}`)},
			{name: "google_api_key", re: regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{35}`)},
		},
		CategoryEmail: {
			{name: "email", re: regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?)*\.[A-Za-z]{2,}`)},
		},
		CategoryCreditCard: {
			{name: "card_4x4", re: regexp.MustCompile(`\b\d{4}[ -]\d{4}[ -]\d{4}[ -]\d{4}\b`), fit: cardPlausible},
			{name: "card_4x4_3", re: regexp.MustCompile(`\b\d{4}[ -]\d{4}[ -]\d{4}[ -]\d{4}[ -]\d{3}\b`), fit: cardPlausible},
			{name: "card_4_6_5", re: regexp.MustCompile(`\b\d{4}[ -]\d{6}[ -]\d{5}\b`), fit: cardPlausible},
			{name: "card_4_6_4", re: regexp.MustCompile(`\b\d{4}[ -]\d{6}[ -]\d{4}\b`), fit: cardPlausible},
			{name: "card_plain", re: regexp.MustCompile(`\b\d{13,19}\b`), fit: cardPlausible},
		},
		CategoryNationalID: {
			{name: "ssn", re: regexp.MustCompile(`\b\d{3}[- ]\d{2}[- ]\d{4}\b`), fit: ssnPlausible},
		},
		CategoryIPAddress: {
			{name: "ipv4", re: regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\.){3}(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\b`), fit: ipv4Bounded},
			{name: "ipv6", re: regexp.MustCompile(`(?i)(?:[0-9a-f]{0,4}:){2,7}(?:(?:\d{1,3}\.){3}\d{1,3}|[0-9a-f]{1,4})?`), fit: ipv6Plausible},
		},
	}
}

func trimTrailingPunct(text string, start, end int) (int, bool) {
	for end > start && strings.ContainsRune(".,;:!?)]}", rune(text[end-1])) {
		end--
	}
	return end, end > start
}

func requireDigit(text string, start, end int) (int, bool) {
	return end, strings.ContainsAny(text[start:end], "0123456789")
}

func cardPlausible(text string, start, end int) (int, bool) {
	raw := text[start:end]
	var digits []byte
	var sep byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c >= '0' && c <= '9' {
			digits = append(digits, c)
			continue
		}
		if sep != 0 && c != sep {
			return end, false
		}
		sep = c
	}
	if len(digits) < 13 || len(digits) > 19 {
		return end, false
	}
	if allSame(digits) {
		return end, false
	}
	return end, luhnValid(digits)
}

func luhnValid(digits []byte) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func allSame(b []byte) bool {
	for i := 1; i < len(b); i++ {
		if b[i] != b[0] {
			return false
		}
	}
	return true
}

func ssnPlausible(text string, start, end int) (int, bool) {
	raw := text[start:end]
	if raw[3] != raw[6] {
		return end, false
	}
	area, group, serial := raw[0:3], raw[4:6], raw[7:11]
	if area == "000" || area == "666" || area[0] == '9' {
		return end, false
	}
	return end, group != "00" && serial != "0000"
}

// ipv4Bounded rejects dotted runs longer than four octets, such as version
// strings. A dot before the address only counts when a digit precedes it,
// so ellipses, ranges and domains still leave the address redactable.
func ipv4Bounded(text string, start, end int) (int, bool) {
	if start > 1 && text[start-1] == '.' && isDigit(text[start-2]) {
		return end, false
	}
	if end+1 < len(text) && text[end] == '.' && isDigit(text[end+1]) {
		return end, false
	}
	return end, true
}

func ipv6Plausible(text string, start, end int) (int, bool) {
	if start > 0 {
		if p := text[start-1]; isAlnum(p) || p == ':' || p == '.' {
			return end, false
		}
	}
	if end < len(text) {
		if n := text[end]; isAlnum(n) {
			return end, false
		}
	}
	for end > start {
		s := text[start:end]
		if addr, err := netip.ParseAddr(s); err == nil && addr.Is6() {
			return end, hexGroups(s) >= 2
		}
		// A single trailing colon is sentence punctuation, not address.
		if !strings.HasSuffix(s, ":") || strings.HasSuffix(s, "::") {
			return end, false
		}
		end--
	}
	return end, false
}

func hexGroups(s string) int {
	n := 0
	for _, part := range strings.Split(s, ":") {
		if part != "" {
			n++
		}
	}
	return n
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
