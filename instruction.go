package zplrender

import (
	"encoding/json"
	"fmt"
)

// Kind - instruction variant name, also the JSON "type" discriminator.
type Kind string

const (
	KindText    Kind = "text"
	KindBox     Kind = "box"
	KindBarcode Kind = "barcode"
)

// Point - a pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Transform - translate to Origin, then rotate. Zero value is the identity.
type Transform struct {
	Origin   Point
	Rotation float64 // radians
}

// IsIdentity - nothing to apply.
func (t Transform) IsIdentity() bool {
	return t.Origin == (Point{}) && t.Rotation == 0
}

// DrawInstruction - one element for the renderer: Text, Box or Barcode.
type DrawInstruction interface {
	Kind() Kind
	isDrawInstruction()
}

// Text - a text field. When Rotation is set, X,Y are local to Origin.
type Text struct {
	X        int            `json:"x"`
	Y        int            `json:"y"`
	Rotation float64        `json:"rotation"`
	Origin   Point          `json:"origin"`
	Font     FontDescriptor `json:"font"`
	Value    string         `json:"value"`
}

// Box - a ^GB rectangle, never rotated or layered.
type Box struct {
	X              int    `json:"x"`
	Y              int    `json:"y"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Thickness      int    `json:"thickness"`
	Color          string `json:"color"`
	CornerRounding int    `json:"cornerRounding"`
}

// Barcode - a barcode symbol drawn on its own layer.
type Barcode struct {
	X         int            `json:"x"`
	Y         int            `json:"y"`
	Rotation  float64        `json:"rotation"`
	Origin    Point          `json:"origin"`
	Symbology Symbology      `json:"symbology"`
	Value     string         `json:"value"`
	Options   BarcodeOptions `json:"options"`
	LayerID   int            `json:"layerId"`
}

func (Text) Kind() Kind    { return KindText }
func (Box) Kind() Kind     { return KindBox }
func (Barcode) Kind() Kind { return KindBarcode }

func (Text) isDrawInstruction()    {}
func (Box) isDrawInstruction()     {}
func (Barcode) isDrawInstruction() {}

// Transform - where the text is anchored.
func (t Text) Transform() Transform { return Transform{Origin: t.Origin, Rotation: t.Rotation} }

// Transform - where the barcode layer is anchored.
func (b Barcode) Transform() Transform { return Transform{Origin: b.Origin, Rotation: b.Rotation} }

// ---------- JSON ----------

type envelope struct {
	Type Kind `json:"type"`
}

// MarshalInstruction - JSON object of one instruction with its "type" field.
func MarshalInstruction(in DrawInstruction) ([]byte, error) {
	switch v := in.(type) {
	case Text:
		return json.Marshal(struct {
			envelope
			Text
		}{envelope{KindText}, v})
	case Box:
		return json.Marshal(struct {
			envelope
			Box
		}{envelope{KindBox}, v})
	case Barcode:
		return json.Marshal(struct {
			envelope
			Barcode
		}{envelope{KindBarcode}, v})
	default:
		return nil, fmt.Errorf("marshal instruction: unknown type %T", in)
	}
}

// MarshalInstructions - JSON array of the sequence.
func MarshalInstructions(list []DrawInstruction) ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(list))
	for i, in := range list {
		b, err := MarshalInstruction(in)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		raw = append(raw, b)
	}
	return json.Marshal(raw)
}

// UnmarshalInstructions - reverse of MarshalInstructions.
func UnmarshalInstructions(data []byte) ([]DrawInstruction, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal instructions: %w", err)
	}

	out := make([]DrawInstruction, 0, len(raw))
	for i, r := range raw {
		var env envelope
		if err := json.Unmarshal(r, &env); err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}

		var (
			in  DrawInstruction
			err error
		)
		switch env.Type {
		case KindText:
			var v Text
			err = json.Unmarshal(r, &v)
			in = v
		case KindBox:
			var v Box
			err = json.Unmarshal(r, &v)
			in = v
		case KindBarcode:
			var v Barcode
			err = json.Unmarshal(r, &v)
			in = v
		default:
			err = fmt.Errorf("unknown type %q", env.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		out = append(out, in)
	}
	return out, nil
}
