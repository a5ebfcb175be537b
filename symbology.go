package zplrender

// Symbology - canonical barcode encoding name.
type Symbology string

const (
	SymbologyNone       Symbology = ""
	SymbologyCode11     Symbology = "code11"
	SymbologyCode39     Symbology = "code39"
	SymbologyCode49     Symbology = "code49"
	SymbologyCode93     Symbology = "code93"
	SymbologyCode128    Symbology = "code128"
	SymbologyEAN8       Symbology = "ean8"
	SymbologyInt25      Symbology = "int25"
	SymbologyDataMatrix Symbology = "datamatrix"
)

var symbologies = map[byte]Symbology{
	'A': SymbologyCode93,
	'B': SymbologyCode128,
	'R': SymbologyCode128,
	'C': SymbologyCode128,
	'1': SymbologyCode11,
	'2': SymbologyInt25,
	'3': SymbologyCode39,
	'4': SymbologyCode49,
	'8': SymbologyEAN8,
	'9': SymbologyCode128,
	'5': SymbologyCode128,
	'6': SymbologyCode128,
	'7': SymbologyCode128,
	'X': SymbologyDataMatrix,
	'Y': SymbologyNone, // ^BY is a defaults command
}

// ResolveSymbology - type code after "^B" to symbology; unknown codes are code128.
func ResolveSymbology(code byte) Symbology {
	if s, ok := symbologies[code]; ok {
		return s
	}
	return SymbologyCode128
}
