package completion

import (
	"strings"
	"unicode/utf8"
)

// Columns lays names out row-major in left-justified columns. Each column is
// as wide as the longest name plus padding; as many columns as fit in width
// are used, at least one. Every row, including the last, ends with CRLF.
func Columns(names []string, width, padding int) string {
	if len(names) == 0 {
		return ""
	}

	longest := 0
	for _, name := range names {
		longest = max(longest, utf8.RuneCountInString(name))
	}
	colWidth := max(longest+padding, 1)
	cols := max(width/colWidth, 1)

	var b strings.Builder
	for i, name := range names {
		b.WriteString(name)
		b.WriteString(strings.Repeat(" ", colWidth-utf8.RuneCountInString(name)))
		if (i+1)%cols == 0 {
			b.WriteString("\r\n")
		}
	}
	if len(names)%cols != 0 {
		b.WriteString("\r\n")
	}
	return b.String()
}
