package tmpl

import (
	"net/url"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^<]*>`)

// StripTags removes every <...> span from s and trims the result.
func StripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllLiteralString(s, ""))
}

// escapeValue applies the escaping policy: non-empty strings have their tags
// stripped, other values pass through unchanged and nil becomes empty.
func escapeValue(v any) any {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		if s == "" {
			return s
		}

		return StripTags(s)
	default:
		return v
	}
}

// Normalize prepares template text received from an encoded source: it is
// URL-decoded (left as is when decoding fails), line breaks and the first
// ideographic space are removed, and surrounding whitespace is trimmed.
func Normalize(text string) string {
	if dec, err := url.PathUnescape(text); err == nil {
		text = dec
	}

	text = strings.NewReplacer("\r", "", "\n", "").Replace(text)
	text = strings.Replace(text, "　", "", 1)

	return strings.TrimSpace(text)
}
