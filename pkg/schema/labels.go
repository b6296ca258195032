package schema

import (
	"regexp"
	"strings"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// DefaultLabel converts a column name into a human-friendly label. It splits on
// underscores, dashes and camelCase boundaries and keeps parenthesised unit
// suffixes intact, so "EngineSize(L)" becomes "Engine Size (L)".
func DefaultLabel(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	base, unit := name, ""
	if idx := strings.Index(name, "("); idx > 0 && strings.HasSuffix(name, ")") {
		base, unit = name[:idx], name[idx:]
	}

	var segments []string
	for _, word := range splitWordsPattern.Split(base, -1) {
		if word == "" {
			continue
		}
		segments = append(segments, splitCamel(word))
	}
	label := strings.Join(segments, " ")
	if unit != "" {
		label += " " + unit
	}
	return strings.TrimSpace(label)
}

func splitCamel(input string) string {
	var out strings.Builder
	runes := []rune(input)
	for i, r := range runes {
		if i > 0 && isBoundary(runes, i) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

// isBoundary splits "CarAge" and "HTTPServer" but keeps acronyms such as "SUV"
// together.
func isBoundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	if isLower(prev) && isUpper(cur) {
		return true
	}
	if isUpper(prev) && isUpper(cur) && i+1 < len(runes) && isLower(runes[i+1]) {
		return true
	}
	return (isLetter(prev) && isDigit(cur)) || (isDigit(prev) && isLetter(cur))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }
