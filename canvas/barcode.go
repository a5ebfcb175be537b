package canvas

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/code93"
	"github.com/boombuler/barcode/datamatrix"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/twooffive"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"zplrender"
)

const (
	moduleWidth       = 2  // px per narrow bar
	defaultBarHeight  = 50 // px when the label gives none
	defaultModuleSize = 4  // px per datamatrix cell
	hriHeight         = 14 // px of the interpretation line font
	hriGap            = 2
)

// renderBarcode encodes value and draws the symbol at opts.PosX, opts.PosY.
func (r *Raster) renderBarcode(dst *surface, value string, sym zplrender.Symbology, opts zplrender.BarcodeOptions) error {
	if value == "" {
		r.logger.Debug("empty barcode value, nothing drawn", "symbology", sym)
		return nil
	}

	img, err := r.encode(value, sym, opts)
	if err != nil {
		return fmt.Errorf("barcode %s %q: %w", sym, value, err)
	}

	// ---------- scaling ----------
	if sym == zplrender.SymbologyDataMatrix {
		module := opts.ModuleSize
		if module <= 0 {
			module = defaultModuleSize
		}
		img, err = barcode.Scale(img, img.Bounds().Dx()*module, img.Bounds().Dy()*module)
	} else {
		height := opts.BarHeight
		if height <= 0 {
			height = defaultBarHeight
		}
		img, err = barcode.Scale(img, img.Bounds().Dx()*moduleWidth, height)
	}
	if err != nil {
		return fmt.Errorf("scale %s: %w", sym, err)
	}

	at := image.Pt(opts.PosX, opts.PosY)
	b := img.Bounds()
	symbol := image.Rectangle{Min: at, Max: at.Add(b.Size())}
	dst.reserve(symbol)
	draw.Draw(dst.img, symbol, img, b.Min, draw.Over)

	if opts.ShowHRI {
		return r.drawHRI(dst, value, at, b.Size(), opts.HRIAbove)
	}
	return nil
}

// encode picks the boombuler encoder for the symbology.
// code11 and code49 have none and are drawn as code128.
func (r *Raster) encode(value string, sym zplrender.Symbology, opts zplrender.BarcodeOptions) (barcode.Barcode, error) {
	var (
		img barcode.Barcode
		err error
	)
	switch sym {
	case zplrender.SymbologyCode39:
		img, err = code39.Encode(value, opts.CheckDigit, true)
	case zplrender.SymbologyCode93:
		img, err = code93.Encode(value, opts.CheckDigit, true)
	case zplrender.SymbologyEAN8:
		img, err = ean.Encode(value)
	case zplrender.SymbologyInt25:
		img, err = twooffive.Encode(value, true)
	case zplrender.SymbologyDataMatrix:
		img, err = datamatrix.Encode(value)
	case zplrender.SymbologyCode128:
		img, err = code128.Encode(value)
	default:
		r.logger.Debug("no encoder for symbology, using code128", "symbology", sym)
		img, err = code128.Encode(value)
	}
	return img, err
}

// drawHRI prints the human readable line centred under (or above) the symbol.
func (r *Raster) drawHRI(dst *surface, value string, at, size image.Point, above bool) error {
	face, err := r.face(hriHeight)
	if err != nil {
		return fmt.Errorf("interpretation line: %w", err)
	}

	w := r.measure(value, hriHeight, face)
	x := at.X + int((float64(size.X)-w)/2)
	y := at.Y + size.Y + hriGap + face.Metrics().Ascent.Ceil()
	if above {
		y = at.Y - hriGap - face.Metrics().Descent.Ceil()
	}

	dst.reserve(textBounds(face, x, y, value))
	d := &font.Drawer{
		Dst:  dst.img,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(value)
	return nil
}
