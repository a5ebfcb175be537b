package zplrender

import "unicode/utf8"

// BarcodeOptions - symbology specific parameters handed to the barcode renderer.
// The zero value means the barcode definition was too short to read.
type BarcodeOptions struct {
	Output     string `json:"output,omitempty"`
	ModuleSize int    `json:"moduleSize,omitempty"` // datamatrix only
	BarHeight  int    `json:"barHeight,omitempty"`  // linear symbologies
	PosX       int    `json:"posX"`
	PosY       int    `json:"posY"`
	ShowHRI    bool   `json:"showHRI"`
	HRIAbove   bool   `json:"hriAbove,omitempty"`
	CheckDigit bool   `json:"checkDigit,omitempty"`
}

// IsZero - no options could be built.
func (o BarcodeOptions) IsZero() bool {
	return o == BarcodeOptions{}
}

const (
	outputCanvas = "canvas"

	// ECC 200 symbols range from 9x9 to 49x49 in this approximation,
	// the older ECC levels from 10x10 to 144x144.
	ecc200       = "200"
	ecc200MinDim = 9
	ecc200MaxDim = 49
	eccMinDim    = 10
	eccMaxDim    = 144
)

// BuildBarcodeOptions - normalizes the barcode parameters for the symbology.
// x,y is where the symbol is drawn (already local when the element is rotated),
// value is the substituted payload.
//
// Parameters: orientation, height (module size for datamatrix),
// interpretation line (ECC for datamatrix), line above, check digit.
func BuildBarcodeOptions(spec BarcodeSpec, sym Symbology, x, y int, value string) BarcodeOptions {
	fields := spec.Fields()
	if len(fields) < barcodeMinFields {
		return BarcodeOptions{}
	}

	size, _ := parseIntPrefix(fields[1])

	if sym == SymbologyDataMatrix {
		approx := DataMatrixSize(fields[2], utf8.RuneCountInString(value))
		return BarcodeOptions{
			Output:     outputCanvas,
			ModuleSize: size,
			PosX:       x,
			PosY:       y - size*approx*2,
		}
	}

	return BarcodeOptions{
		Output:     outputCanvas,
		BarHeight:  size,
		PosX:       x,
		PosY:       y,
		ShowHRI:    fields[2] == "Y",
		HRIAbove:   fields[3] == "Y",
		CheckDigit: fields[4] == "Y",
	}
}

// DataMatrixSize - very naive symbol dimension guess from payload length,
// assuming ASCII encodation. Not a capacity table.
func DataMatrixSize(ecc string, textLength int) int {
	if ecc == ecc200 {
		return clamp(textLength, ecc200MinDim, ecc200MaxDim)
	}
	return clamp(textLength, eccMinDim, eccMaxDim)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
