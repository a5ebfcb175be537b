package zplrender_test

import (
	"errors"
	"math"
	"testing"

	"zplrender"
)

func TestSubstitute(t *testing.T) {
	subs := map[string]string{"<ID>": "000001", "<NAME>": "Bob"}

	tests := map[string]struct {
		token string
		subs  map[string]string
		want  string
	}{
		"hit":            {"<ID>", subs, "000001"},
		"trimmed hit":    {"  <NAME> ", subs, "Bob"},
		"miss":           {"plain", subs, "plain"},
		"miss untrimmed": {"  plain ", subs, "  plain "},
		"nil map":        {"<ID>", nil, "<ID>"},
		"empty token":    {"", subs, ""},
	}

	for name, tt := range tests {
		if got := zplrender.Substitute(tt.token, tt.subs); got != tt.want {
			t.Errorf("%s: Substitute(%q) = %q, want %q", name, tt.token, got, tt.want)
		}
	}
}

func TestResolveRotation(t *testing.T) {
	tests := map[byte]float64{
		'N': 0,
		'R': math.Pi / 2,
		'I': math.Pi,
		'B': 3 * math.Pi / 2,
		'Q': 0,
		0:   0,
	}
	for code, want := range tests {
		if got := zplrender.ResolveRotation(code); got != want {
			t.Errorf("ResolveRotation(%q) = %v, want %v", code, got, want)
		}
	}
	if got := zplrender.OrientationDegrees('B'); got != 270 {
		t.Errorf("OrientationDegrees(B) = %d", got)
	}
}

func TestResolveSymbology(t *testing.T) {
	tests := map[byte]zplrender.Symbology{
		'A': zplrender.SymbologyCode93,
		'B': zplrender.SymbologyCode128,
		'C': zplrender.SymbologyCode128,
		'R': zplrender.SymbologyCode128,
		'1': zplrender.SymbologyCode11,
		'2': zplrender.SymbologyInt25,
		'3': zplrender.SymbologyCode39,
		'4': zplrender.SymbologyCode49,
		'5': zplrender.SymbologyCode128,
		'8': zplrender.SymbologyEAN8,
		'X': zplrender.SymbologyDataMatrix,
		'Y': zplrender.SymbologyNone,
		'Q': zplrender.SymbologyCode128,
	}
	for code, want := range tests {
		if got := zplrender.ResolveSymbology(code); got != want {
			t.Errorf("ResolveSymbology(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestFontTableResolve(t *testing.T) {
	fonts := zplrender.DefaultFonts(zplrender.DefaultFontFamily)
	const fallback = "Fallback"

	tests := map[string]zplrender.FontDescriptor{
		"A0,30":     {Height: 30, Family: zplrender.DefaultFontFamily},
		"A0N,60":    {Height: 60, Family: zplrender.DefaultFontFamily},
		"A0R,70,70": {Height: 24, Family: zplrender.DefaultFontFamily},
		"A0":        {Height: 24, Family: zplrender.DefaultFontFamily},
		"A0, 18":    {Height: 18, Family: zplrender.DefaultFontFamily},
		"A0,big":    {Height: 24, Family: zplrender.DefaultFontFamily},
		"ZZ,20":     {Height: 20, Family: fallback},
		"":          {Height: 24, Family: fallback},
	}
	for spec, want := range tests {
		if got := fonts.Resolve(spec, fallback); got != want {
			t.Errorf("Resolve(%q) = %+v, want %+v", spec, got, want)
		}
	}

	custom := zplrender.FontTable{"A0": "Mono", "B1": "Sans"}
	if got := custom.Resolve("B1,20", fallback); got.Family != "Sans" {
		t.Errorf("custom table family = %q", got.Family)
	}
	if s := (zplrender.FontDescriptor{Height: 30, Family: "Courier Sans MS"}).String(); s != "30px Courier Sans MS" {
		t.Errorf("descriptor string = %q", s)
	}
}

func TestParseBoxSpec(t *testing.T) {
	tests := map[string]zplrender.BoxSpec{
		"100,50":      {Width: 100, Height: 50, Thickness: 1, Color: "B"},
		"10,20,3,W,2": {Width: 10, Height: 20, Thickness: 3, Color: "W", CornerRounding: 2},
		"10,20,,,":    {Width: 10, Height: 20, Thickness: 1, Color: "B"},
		"10,20,4,B,x": {Width: 10, Height: 20, Thickness: 4, Color: "B"},
	}
	for params, want := range tests {
		got, err := zplrender.ParseBoxSpec(params)
		if err != nil {
			t.Errorf("ParseBoxSpec(%q): %v", params, err)
			continue
		}
		if got != want {
			t.Errorf("ParseBoxSpec(%q) = %+v, want %+v", params, got, want)
		}
	}

	for _, bad := range []string{"x,10", "10", "", "10,y"} {
		if _, err := zplrender.ParseBoxSpec(bad); !errors.Is(err, zplrender.ErrMalformedBox) {
			t.Errorf("ParseBoxSpec(%q) error = %v, want ErrMalformedBox", bad, err)
		}
	}
}

func TestParseBoxSpecThirdFieldIsThickness(t *testing.T) {
	got, err := zplrender.ParseBoxSpec("0,50,20")
	if err != nil {
		t.Fatalf("ParseBoxSpec: %v", err)
	}
	want := zplrender.BoxSpec{Width: 0, Height: 50, Thickness: 20, Color: "B", CornerRounding: 0}
	if got != want {
		t.Errorf("ParseBoxSpec(\"0,50,20\") = %+v, want %+v", got, want)
	}
}
