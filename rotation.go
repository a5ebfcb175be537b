package zplrender

import "math"

// OrientationDegrees - N 0, R 90, I 180, B 270; anything else 0.
func OrientationDegrees(code byte) int {
	switch code {
	case 'R':
		return 90
	case 'I':
		return 180
	case 'B':
		return 270
	default:
		return 0
	}
}

// ResolveRotation - orientation letter to radians.
func ResolveRotation(code byte) float64 {
	switch OrientationDegrees(code) {
	case 90:
		return math.Pi / 2
	case 180:
		return math.Pi
	case 270:
		return 3 * math.Pi / 2
	default:
		return 0
	}
}

// rotationOf reads the orientation letter at index 2 of a font spec ("A0N,30").
func rotationOf(property string) float64 {
	if len(property) < 3 {
		return 0
	}
	return ResolveRotation(property[2])
}
