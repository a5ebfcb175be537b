package zplrender

import (
	"fmt"
	"strings"
)

const (
	DefaultFontFamily = "Courier Sans MS"

	maxFontHeight      = 60
	fallbackFontHeight = 24
)

// FontDescriptor - resolved font: pixel height and family.
type FontDescriptor struct {
	Height int    `json:"height"`
	Family string `json:"family"`
}

// String - canvas style descriptor, e.g. "30px Courier Sans MS".
func (f FontDescriptor) String() string {
	return fmt.Sprintf("%dpx %s", f.Height, f.Family)
}

// FontResolver turns a font spec into a descriptor; fallback is the family
// for codes it does not know.
type FontResolver interface {
	Resolve(spec, fallback string) FontDescriptor
}

// FontTable maps the two-character font code to a family.
type FontTable map[string]string

// DefaultFonts - the only font code recognised out of the box.
func DefaultFonts(family string) FontTable {
	return FontTable{"A0": family}
}

// Resolve - font spec "<code>,<size>[,...]" to a descriptor.
// Sizes above 60 or unreadable ones become 24; unknown codes use fallback.
func (t FontTable) Resolve(spec, fallback string) FontDescriptor {
	parts := strings.Split(spec, ",")

	family := fallback
	code := parts[0]
	if len(code) > 2 {
		code = code[:2]
	}
	if f, ok := t[code]; ok {
		family = f
	}

	height := fallbackFontHeight
	if len(parts) > 1 {
		if h, ok := parseIntPrefix(parts[1]); ok && h <= maxFontHeight {
			height = h
		}
	}

	return FontDescriptor{Height: height, Family: family}
}
