package zplrender

import (
	"context"
	"errors"
	"fmt"
)

// Surface - something instructions can be drawn on.
type Surface interface {
	DrawText(x, y int, font FontDescriptor, value string) error
	StrokeRect(x, y, width, height, thickness int, color string, cornerRounding int) error
	RenderBarcode(value string, sym Symbology, opts BarcodeOptions) error
}

// Canvas - the layered output the instructions are played on.
type Canvas interface {
	// Clear resets the base surface and drops every layer.
	Clear()
	// Base is the bottom surface.
	Base() Surface
	// CreateLayer stacks a new surface of the base size above the others.
	CreateLayer(id int) Surface
	// WithTransform runs draw against s translated then rotated by t.
	// The transform must not leak into later draws.
	WithTransform(s Surface, t Transform, draw func(Surface) error) error
}

// Play - clears c and draws the instructions in order. Stops at the first error.
func Play(ctx context.Context, c Canvas, list []DrawInstruction) error {
	c.Clear()

	for i, in := range list {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("play: %w", err)
		}
		if err := playOne(c, in); err != nil {
			return fmt.Errorf("play instruction %d (%s): %w", i, in.Kind(), err)
		}
	}
	return nil
}

func playOne(c Canvas, in DrawInstruction) error {
	switch v := in.(type) {
	case Text:
		return withTransform(c, c.Base(), v.Transform(), func(s Surface) error {
			return s.DrawText(v.X, v.Y, v.Font, v.Value)
		})
	case Box:
		return c.Base().StrokeRect(v.X, v.Y, v.Width, v.Height, v.Thickness, v.Color, v.CornerRounding)
	case Barcode:
		layer := c.CreateLayer(v.LayerID)
		return withTransform(c, layer, v.Transform(), func(s Surface) error {
			return s.RenderBarcode(v.Value, v.Symbology, v.Options)
		})
	default:
		return fmt.Errorf("unknown instruction %T", in)
	}
}

func withTransform(c Canvas, s Surface, t Transform, draw func(Surface) error) error {
	if t.IsIdentity() {
		return draw(s)
	}
	return c.WithTransform(s, t, draw)
}

// Render - interprets the label and plays it on c.
// A failed pass is still played up to the failing command; the pass error is
// returned joined with any playback error.
func Render(ctx context.Context, in *Interpreter, label string, subs map[string]string, c Canvas) ([]DrawInstruction, error) {
	list, passErr := in.Interpret(label, subs)
	playErr := Play(ctx, c, list)
	if passErr != nil || playErr != nil {
		return list, errors.Join(passErr, playErr)
	}
	return list, nil
}
