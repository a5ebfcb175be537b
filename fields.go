package zplrender

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Field - one "^"-delimited part of a command.
type Field struct {
	Tag        string // first two characters, e.g. "FO", "A0", "BC"
	Params     string // everything after the tag
	Raw        string
	Terminated bool // another "^" follows
}

// Position - x,y anchor. Valid is false when the command carries no usable position.
type Position struct {
	X, Y  int
	Valid bool
}

// BarcodeSpec - the "^B<type><params>^" tag of a command.
type BarcodeSpec struct {
	Type   byte   // type code right after "^B"
	Params string // orientation and comma separated parameters
}

// Fields - returns the list of fields of the command, the empty prefix before the first "^" excluded.
func (c Command) Fields() []Field {
	parts := c.Properties()
	if len(parts) < 2 {
		return nil
	}
	parts = parts[1:]

	fields := make([]Field, 0, len(parts))
	for i, p := range parts {
		f := Field{Raw: p, Terminated: i < len(parts)-1}
		if len(p) >= 2 {
			f.Tag, f.Params = p[:2], p[2:]
		} else {
			f.Tag = p
		}
		fields = append(fields, f)
	}
	return fields
}

// Properties - the raw "^" split; index 0 is whatever precedes the first "^".
func (c Command) Properties() []string {
	return strings.Split(string(c), FieldStart)
}

// Property - the i-th raw property, false when the command is too short.
func (c Command) Property(i int) (string, bool) {
	props := c.Properties()
	if i < 0 || i >= len(props) {
		return "", false
	}
	return props[i], true
}

// IsComment - the command is a ^FX comment.
func (c Command) IsComment() bool {
	return strings.Contains(string(c), CommentTag)
}

// Position - the first ^FO / ^FT position of the command.
// The tag must be followed by one arbitrary character and digits or commas only,
// and be closed by another "^".
func (c Command) Position() Position {
	for _, f := range c.Fields() {
		if f.Tag != FieldOriginTag && f.Tag != FieldTypesetTag {
			continue
		}
		if !f.Terminated || !isPositionParams(f.Params) {
			continue
		}

		parts := strings.Split(f.Params, ",")
		if len(parts) < 2 {
			return Position{}
		}
		x, okX := parseNumber(parts[0])
		y, okY := parseNumber(parts[1])
		if !okX || !okY {
			return Position{}
		}
		return Position{X: x, Y: y, Valid: true}
	}
	return Position{}
}

func isPositionParams(s string) bool {
	if s == "" {
		return false
	}
	_, size := utf8.DecodeRuneInString(s)
	for _, r := range s[size:] {
		if (r < '0' || r > '9') && r != ',' {
			return false
		}
	}
	return true
}

// TextValue - payload between the first ^FD and the final ^FS, verbatim.
func (c Command) TextValue() string {
	s := string(c)
	start := strings.Index(s, FieldDataOpening)
	if start < 0 {
		return ""
	}
	start += len(FieldDataOpening)

	end := strings.LastIndex(s, FieldDataClosing)
	if end < start {
		return ""
	}
	return s[start:end]
}

// Barcode - the first barcode definition tag, false when there is none.
// ^BY only sets module defaults and never counts.
func (c Command) Barcode() (BarcodeSpec, bool) {
	s := string(c)
	pos := 0

	for {
		idx := strings.Index(s[pos:], BarcodeTag)
		if idx < 0 {
			return BarcodeSpec{}, false
		}
		idx += pos
		pos = idx + 1

		typeAt := idx + len(BarcodeTag)
		if typeAt >= len(s) || s[typeAt] == BarcodeDefaultsID {
			continue
		}

		run := typeAt + 1
		for run < len(s) && isBarcodeParamChar(s[run]) {
			run++
		}
		if run-(typeAt+1) < barcodeMinParams || run >= len(s) || s[run] != '^' {
			continue
		}

		return BarcodeSpec{Type: s[typeAt], Params: s[typeAt+1 : run]}, true
	}
}

// isBarcodeParamChar matches [A0-Z9,]: the '0'..'Z' range and the comma.
func isBarcodeParamChar(b byte) bool {
	return (b >= '0' && b <= 'Z') || b == ','
}

// Fields - comma separated barcode parameters.
func (b BarcodeSpec) Fields() []string {
	return strings.Split(b.Params, ",")
}

// Orientation - the orientation letter, the first parameter character.
func (b BarcodeSpec) Orientation() byte {
	if b.Params == "" {
		return 0
	}
	return b.Params[0]
}

// parseNumber accepts anything that reads as a decimal number and returns
// its integer part, parseInt style.
func parseNumber(s string) (int, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, false
	}
	if _, err := strconv.ParseFloat(t, 64); err != nil {
		return 0, false
	}
	return parseIntPrefix(t)
}

// parseIntPrefix reads the leading integer of s: optional sign, then digits.
func parseIntPrefix(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}
