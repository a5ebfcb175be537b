package zplrender

import (
	"fmt"
	"log/slog"
	"strings"
)

// Options configures an Interpreter.
type Options struct {
	Logger     *slog.Logger
	FontFamily string    // family for unknown font codes, DefaultFontFamily when empty
	Fonts      FontResolver // DefaultFonts(FontFamily) when nil
}

// Interpreter turns label markup into draw instructions.
// It keeps no state between passes and can be shared.
type Interpreter struct {
	logger *slog.Logger
	family string
	fonts  FontResolver
}

// NewInterpreter - interpreter with defaults filled in.
func NewInterpreter(opts Options) *Interpreter {
	in := &Interpreter{
		logger: opts.Logger,
		family: opts.FontFamily,
		fonts:  opts.Fonts,
	}
	if in.logger == nil {
		in.logger = slog.Default()
	}
	if in.family == "" {
		in.family = DefaultFontFamily
	}
	if in.fonts == nil {
		in.fonts = DefaultFonts(in.family)
	}
	return in
}

// Interpret - runs one pass over the label with a fresh context.
// The first failing command stops the pass: the instructions emitted before
// it are returned together with a *CommandError.
func (in *Interpreter) Interpret(label string, subs map[string]string) ([]DrawInstruction, error) {
	rc := NewRenderContext(subs)
	defer rc.Release()

	return in.InterpretContext(rc, label)
}

// InterpretContext - runs one pass against a caller owned context, which can
// be inspected afterwards (cursor, layers). The caller releases rc.
func (in *Interpreter) InterpretContext(rc *RenderContext, label string) ([]DrawInstruction, error) {
	for i, cmd := range Segment(label) {
		instr, ok, err := in.process(rc, cmd)
		if err != nil {
			in.logger.Error("label pass aborted", "index", i, "command", string(cmd), "error", err)
			return rc.Instructions(), &CommandError{Index: i, Command: string(cmd), Err: err}
		}
		if !ok {
			continue
		}
		rc.Emit(instr)
		in.logger.Debug("instruction", "index", i, "kind", instr.Kind(), "layers", len(rc.layers))
	}

	return rc.Instructions(), nil
}

// process handles one command. ok is false when the command is skipped.
func (in *Interpreter) process(rc *RenderContext, cmd Command) (instr DrawInstruction, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			instr, ok, err = nil, false, fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()

	next := cmd.Position()
	if !next.Valid {
		in.logger.Debug("no position found, keep current one", "command", string(cmd))
	}
	pos := rc.Move(next)

	value := rc.Substitute(cmd.TextValue())

	// the cursor stays moved even when the command turns out to be skipped
	if cmd.IsComment() || !pos.Valid {
		in.logger.Info("command not displayed", "command", strings.Replace(string(cmd), CommentTag, "", 1))
		return nil, false, nil
	}

	if spec, isBarcode := cmd.Barcode(); isBarcode {
		return in.barcode(rc, spec, pos, value), true, nil
	}

	prop, found := cmd.Property(propertyIndex)
	if !found {
		return nil, false, fmt.Errorf("%w: %d properties, need %d", ErrMalformedCommand, len(cmd.Properties()), propertyIndex+1)
	}

	if strings.HasPrefix(prop, BoxTag) {
		spec, err := ParseBoxSpec(strings.TrimPrefix(prop, BoxTag))
		if err != nil {
			return nil, false, err
		}
		return Box{
			X:              pos.X,
			Y:              pos.Y,
			Width:          spec.Width,
			Height:         spec.Height,
			Thickness:      spec.Thickness,
			Color:          spec.Color,
			CornerRounding: spec.CornerRounding,
		}, true, nil
	}

	return in.text(prop, pos, value), true, nil
}

func (in *Interpreter) barcode(rc *RenderContext, spec BarcodeSpec, pos Position, value string) Barcode {
	sym := ResolveSymbology(spec.Type)

	b := Barcode{
		X:         pos.X,
		Y:         pos.Y,
		Rotation:  ResolveRotation(spec.Orientation()),
		Symbology: sym,
		Value:     value,
		LayerID:   rc.NextLayer(),
	}
	if b.Rotation > 0 {
		// the layer is translated to the anchor, the symbol sits at its origin
		b.Origin = Point{X: pos.X, Y: pos.Y}
		b.X, b.Y = 0, 0
	}
	b.Options = BuildBarcodeOptions(spec, sym, b.X, b.Y, value)

	return b
}

func (in *Interpreter) text(prop string, pos Position, value string) Text {
	t := Text{
		X:        pos.X,
		Y:        pos.Y,
		Rotation: rotationOf(prop),
		Font:     in.fonts.Resolve(prop, in.family),
		Value:    value,
	}
	if t.Rotation > 0 {
		t.Origin = Point{X: pos.X, Y: pos.Y}
		t.X, t.Y = 0, 0
	}
	return t
}
