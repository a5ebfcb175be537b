package zplrender

import "strings"

// Command - one "^ ... FS" span of the label.
type Command string

// Segment - splits raw markup into commands in document order.
// A command starts at a "^" and ends at the nearest following "FS" on the
// same line. A "^" without a terminator on its line is dropped.
func Segment(label string) []Command {
	var out []Command

	for _, line := range splitLines(label) {
		pos := 0
		for {
			start := strings.Index(line[pos:], FieldStart)
			if start < 0 {
				break
			}
			start += pos

			end := strings.Index(line[start+1:], FieldSeparator)
			if end < 0 {
				// no terminator left on this line
				break
			}
			end += start + 1 + len(FieldSeparator)

			out = append(out, Command(line[start:end]))
			pos = end
		}
	}

	return out
}

// splitLines breaks on \n, \r and the unicode line/paragraph separators.
func splitLines(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
	})
}
