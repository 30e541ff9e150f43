package components

import (
	"regexp"
	"strings"
	"unicode"
)

// escapePattern matches CSI sequences and OSC sequences ended by BEL or ST.
var escapePattern = regexp.MustCompile(`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b\[[0-9;?]*[A-Za-z]`)

// dropRune reports runes that never reach the terminal: controls other than
// newline and tab, bidi overrides, and the BOM and zero-width characters
// that spreadsheet exports leave in cells.
func dropRune(r rune) bool {
	switch r {
	case '\n', '\t':
		return false
	case '\ufeff', '\u200b', '\u200c', '\u200d':
		return true
	}
	return unicode.IsControl(r) || unicode.Is(unicode.Bidi_Control, r)
}

// SanitizeText cleans server or file supplied text for display.
func SanitizeText(input string) string {
	if input == "" {
		return input
	}
	return strings.Map(func(r rune) rune {
		if dropRune(r) {
			return -1
		}
		return r
	}, escapePattern.ReplaceAllString(input, ""))
}

// SanitizeOneLine is SanitizeText with line breaks and tabs folded into
// single spaces, for table cells and titles.
func SanitizeOneLine(input string) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	fields := strings.FieldsFunc(SanitizeText(input), func(r rune) bool {
		return r == '\n' || r == '\t'
	})
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return strings.TrimSpace(strings.Join(fields, " "))
}
