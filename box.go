package zplrender

import (
	"fmt"
	"strings"
)

// BoxSpec - the five positional ^GB parameters.
type BoxSpec struct {
	Width          int
	Height         int
	Thickness      int
	Color          string
	CornerRounding int
}

// DefaultBoxSpec - defaults for the optional trailing fields.
func DefaultBoxSpec() BoxSpec {
	return BoxSpec{Thickness: 1, Color: "B", CornerRounding: 0}
}

// ParseBoxSpec - parses "w,h[,t[,c[,r]]]". Missing trailing fields keep their defaults,
// width and height must be present and numeric.
func ParseBoxSpec(params string) (BoxSpec, error) {
	spec := DefaultBoxSpec()
	fields := strings.Split(params, ",")

	var ok bool
	if spec.Width, ok = parseIntPrefix(fields[0]); !ok {
		return spec, fmt.Errorf("%w: width %q", ErrMalformedBox, fields[0])
	}
	if len(fields) < 2 {
		return spec, fmt.Errorf("%w: height missing", ErrMalformedBox)
	}
	if spec.Height, ok = parseIntPrefix(fields[1]); !ok {
		return spec, fmt.Errorf("%w: height %q", ErrMalformedBox, fields[1])
	}

	if len(fields) > 2 {
		if v, ok := parseIntPrefix(fields[2]); ok {
			spec.Thickness = v
		}
	}
	if len(fields) > 3 && fields[3] != "" {
		spec.Color = fields[3]
	}
	if len(fields) > 4 {
		if v, ok := parseIntPrefix(fields[4]); ok {
			spec.CornerRounding = v
		}
	}

	return spec, nil
}
