package renderer

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Literal neutralizes text that did not come from the client: terminal
// escape sequences and control characters are removed, newlines and tabs are
// kept. Markup such as "<b>" is left as is for EscapeMarkdown or html/template.
func Literal(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// markdownSpecial are the characters escaped by EscapeMarkdown anywhere in a
// line. ':' and '@' keep URLs and addresses from being linkified.
const markdownSpecial = "\\`*_[]()<>#|~!:@"

// EscapeMarkdown makes s render as itself once it is placed in a markdown
// document: inline markup characters are backslash-escaped, so are the
// markers that would start a list, a heading or a thematic break.
func EscapeMarkdown(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		lines[i] = line[:indent] + escapeBlockMarker(line[indent:])
	}
	return strings.Join(lines, "\n")
}

// escapeBlockMarker escapes a leading list or break marker of line, then the
// inline markup.
func escapeBlockMarker(line string) string {
	if line != "" && strings.ContainsRune("-+=", rune(line[0])) {
		return `\` + line[:1] + escapeInline(line[1:])
	}
	digits := 0
	for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(line) && (line[digits] == '.' || line[digits] == ')') {
		return line[:digits] + `\` + line[digits:digits+1] + escapeInline(line[digits+1:])
	}
	return escapeInline(line)
}

func escapeInline(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(markdownSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
