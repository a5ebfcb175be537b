// Package canvas draws zplrender instructions into layered RGBA images.
package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"math"
	"sort"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"zplrender"
	"zplrender/metrics"
)

// Raster - in-memory layered canvas. One Raster serves one render at a time.
type Raster struct {
	width, height int
	base          *image.RGBA
	layers        []layer
	fonts         metrics.FaceSource
	faces         map[float64]font.Face
	logger        *slog.Logger
}

type layer struct {
	id  int
	img *image.RGBA
}

// New - blank canvas of width x height pixels. fonts may be nil, text then
// uses the fixed 7x13 bitmap face.
func New(width, height int, fonts metrics.FaceSource, logger *slog.Logger) *Raster {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Raster{
		width:  width,
		height: height,
		fonts:  fonts,
		faces:  make(map[float64]font.Face),
		logger: logger,
	}
	r.Clear()
	return r
}

// Bounds - the canvas rectangle.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// Clear - fresh transparent base, no layers.
func (r *Raster) Clear() {
	r.base = image.NewRGBA(r.Bounds())
	r.layers = nil
}

// Base - the bottom surface.
func (r *Raster) Base() zplrender.Surface {
	return &surface{r: r, img: r.base}
}

// CreateLayer - a transparent layer of the canvas size, stacked by id.
// Asking twice for the same id returns the same layer.
func (r *Raster) CreateLayer(id int) zplrender.Surface {
	for _, l := range r.layers {
		if l.id == id {
			return &surface{r: r, img: l.img}
		}
	}

	l := layer{id: id, img: image.NewRGBA(r.Bounds())}
	r.layers = append(r.layers, l)
	sort.SliceStable(r.layers, func(i, j int) bool { return r.layers[i].id < r.layers[j].id })

	return &surface{r: r, img: l.img}
}

// LayerCount - layers created since the last Clear.
func (r *Raster) LayerCount() int {
	return len(r.layers)
}

// WithTransform - draws into a scratch surface with local coordinates, then
// composites it onto s through the translate+rotate matrix.
func (r *Raster) WithTransform(s zplrender.Surface, t zplrender.Transform, drawFn func(zplrender.Surface) error) error {
	target, ok := s.(*surface)
	if !ok {
		return fmt.Errorf("transform: foreign surface %T", s)
	}

	scratch := newScratch(r)
	if err := drawFn(scratch); err != nil {
		return err
	}
	if scratch.img.Bounds().Empty() {
		return nil
	}

	xdraw.NearestNeighbor.Transform(target.img, affine(t), scratch.img, scratch.img.Bounds(), xdraw.Over, nil)
	return nil
}

// affine - source to destination matrix: translate to the origin, then rotate.
func affine(t zplrender.Transform) f64.Aff3 {
	c, s := snap(math.Cos(t.Rotation)), snap(math.Sin(t.Rotation))
	return f64.Aff3{
		c, -s, float64(t.Origin.X),
		s, c, float64(t.Origin.Y),
	}
}

// snap removes the float noise of quarter turns (cos(pi/2) = 6e-17).
func snap(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}

// Image - all layers over a white background.
func (r *Raster) Image() *image.RGBA {
	out := image.NewRGBA(r.Bounds())
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), r.base, image.Point{}, draw.Over)
	for _, l := range r.layers {
		draw.Draw(out, out.Bounds(), l.img, image.Point{}, draw.Over)
	}
	return out
}

// WritePNG - encodes the composed image.
func (r *Raster) WritePNG(w io.Writer) error {
	if err := png.Encode(w, r.Image()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// EncodePNG - the composed image as PNG bytes.
func (r *Raster) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WritePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Raster) face(px int) (font.Face, error) {
	if r.fonts == nil || px <= 0 {
		return basicfont.Face7x13, nil
	}
	size := float64(px)
	if f, ok := r.faces[size]; ok {
		return f, nil
	}
	f, err := r.fonts.Face(size)
	if err != nil {
		return nil, err
	}
	r.faces[size] = f
	return f, nil
}

func (r *Raster) measure(s string, px int, face font.Face) float64 {
	if r.fonts != nil && px > 0 {
		if w, err := r.fonts.Measure(s, float64(px)); err == nil {
			return w
		}
	}
	return float64(font.MeasureString(face, s)) / 64
}

// ---------- surface ----------

type surface struct {
	r       *Raster
	img     *image.RGBA
	growing bool // scratch surface: img grows to cover whatever is drawn
}

// newScratch - empty surface in local coordinates. Content may sit at negative
// coordinates (text above its baseline, shifted datamatrix anchors).
func newScratch(r *Raster) *surface {
	return &surface{r: r, img: image.NewRGBA(image.Rectangle{}), growing: true}
}

// reserve makes sure rect is backed by pixels on a scratch surface.
func (s *surface) reserve(rect image.Rectangle) {
	if !s.growing || rect.Empty() || rect.In(s.img.Bounds()) {
		return
	}
	grown := image.NewRGBA(s.img.Bounds().Union(rect))
	draw.Draw(grown, s.img.Bounds(), s.img, s.img.Bounds().Min, draw.Src)
	s.img = grown
}

// textBounds - pixel box of value drawn with its baseline at x,y.
func textBounds(face font.Face, x, y int, value string) image.Rectangle {
	b, _ := font.BoundString(face, value)
	return image.Rect(
		x+b.Min.X.Floor(), y+b.Min.Y.Floor(),
		x+b.Max.X.Ceil()+1, y+b.Max.Y.Ceil()+1,
	)
}

// DrawText - baseline at x,y like canvas fillText.
func (s *surface) DrawText(x, y int, fd zplrender.FontDescriptor, value string) error {
	face, err := s.r.face(fd.Height)
	if err != nil {
		return fmt.Errorf("draw text: %w", err)
	}
	s.reserve(textBounds(face, x, y, value))
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(value)
	return nil
}

// StrokeRect - outline of thickness pixels. Width or height below the
// thickness grow to it, so ^GB0,300,4 is a vertical rule.
func (s *surface) StrokeRect(x, y, width, height, thickness int, code string, cornerRounding int) error {
	if thickness < 1 {
		thickness = 1
	}
	width = max(width, thickness)
	height = max(height, thickness)

	// rounding 0..8 -> radius as a share of half the shorter side
	rounding := min(max(cornerRounding, 0), 8)
	radius := float64(rounding) / 8 * float64(min(width, height)) / 2
	inner := math.Max(radius-float64(thickness), 0)

	s.reserve(image.Rect(x, y, x+width, y+height))

	c := lineColor(code)
	for py := y; py < y+height; py++ {
		for px := x; px < x+width; px++ {
			if !insideRounded(px, py, x, y, width, height, radius) {
				continue
			}
			if insideRounded(px, py, x+thickness, y+thickness, width-2*thickness, height-2*thickness, inner) {
				continue
			}
			s.img.Set(px, py, c)
		}
	}
	return nil
}

// RenderBarcode - see barcode.go.
func (s *surface) RenderBarcode(value string, sym zplrender.Symbology, opts zplrender.BarcodeOptions) error {
	return s.r.renderBarcode(s, value, sym, opts)
}

func lineColor(code string) color.Color {
	if code == "W" {
		return color.White
	}
	return color.Black
}

// insideRounded - pixel centre of px,py lies in the rectangle with corners of radius rad.
func insideRounded(px, py, x, y, w, h int, rad float64) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	if px < x || px >= x+w || py < y || py >= y+h {
		return false
	}
	if rad <= 0 {
		return true
	}
	cx, cy := float64(px)+0.5, float64(py)+0.5
	nx := math.Min(math.Max(cx, float64(x)+rad), float64(x+w)-rad)
	ny := math.Min(math.Max(cy, float64(y)+rad), float64(y+h)-rad)
	dx, dy := cx-nx, cy-ny
	return dx*dx+dy*dy <= rad*rad
}
