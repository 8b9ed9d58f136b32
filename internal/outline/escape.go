// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import "strings"

// colonMark stands in for the colon of a URL scheme while parsing, so that a
// line starting with "https://..." is not read as the key "https". It is a
// private-use code point that document exports do not produce.
const colonMark = "\uE000"

var escaper = strings.NewReplacer(
	"https:", "https"+colonMark,
	"http:", "http"+colonMark,
)

// Escape hides the colons of http and https schemes in text.
func Escape(text string) string {
	return escaper.Replace(text)
}

// Unescape restores the colons hidden by Escape. Unescape(Escape(s)) == s
// for any s that does not already contain U+E000.
func Unescape(text string) string {
	return strings.ReplaceAll(text, colonMark, ":")
}

// unescapeValue applies Unescape to every string reachable from v.
func unescapeValue(v any) any {
	switch t := v.(type) {
	case string:
		return Unescape(t)
	case Fields:
		for k, val := range t {
			t[k] = unescapeValue(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = unescapeValue(val)
		}
		return t
	default:
		return v
	}
}
