package metrics

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// FaceSource - anything that can hand out faces and measure strings at a pixel size.
type FaceSource interface {
	Face(px float64) (font.Face, error)
	Measure(s string, px float64) (float64, error)
}

// Font wraps a parsed TTF/OTF. Safe for concurrent use; faces are not,
// every Face call returns a new one.
type Font struct {
	name string
	sf   *sfnt.Font
}

// Parse - font from raw TTF/OTF bytes.
func Parse(name string, data []byte) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", name, err)
	}
	return &Font{name: name, sf: f}, nil
}

// LoadFont reads a font file from disk.
func LoadFont(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	return Parse(path, data)
}

var defaultFont = sync.OnceValues(func() (*Font, error) {
	return Parse("gomono", gomono.TTF)
})

// Default - the embedded Go Mono face, close enough to the printer's fixed pitch font.
func Default() (*Font, error) {
	return defaultFont()
}

// Name - file path or built-in name the font came from.
func (f *Font) Name() string {
	return f.name
}

// Face - a face of px pixels (72 dpi, so 1pt = 1px).
func (f *Font) Face(px float64) (font.Face, error) {
	face, err := opentype.NewFace(f.sf, &opentype.FaceOptions{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("face %s %.1fpx: %w", f.name, px, err)
	}
	return face, nil
}

// Measure - advance width of text in pixels.
func (f *Font) Measure(text string, px float64) (float64, error) {
	ppem := fixed.Int26_6(px * 64)

	buf := &sfnt.Buffer{}
	total := 0.0
	for _, r := range text {
		gid, err := f.sf.GlyphIndex(buf, r)
		if err != nil {
			return 0, fmt.Errorf("glyphIndex: %w", err)
		}
		adv, err := f.sf.GlyphAdvance(buf, gid, ppem, font.HintingNone)
		if err != nil {
			return 0, fmt.Errorf("glyphAdvance: %w", err)
		}
		total += float64(adv) / 64.0 // fixed.Int26_6 -> px
	}

	return total, nil
}
