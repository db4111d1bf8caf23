// Package affine implements the six-parameter pixel to model transform.
package affine

import "fmt"

// Transform maps pixel (column, row) to model (x, y):
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
type Transform struct {
	A, B, C float64
	D, E, F float64
}

// Identity is the transform of a raster without georeferencing
var Identity = Transform{A: 1, E: 1}

// GDAL returns the transform in GDAL geotransform order
func (t Transform) GDAL() [6]float64 {
	return [6]float64{t.C, t.A, t.B, t.F, t.D, t.E}
}

// Apply returns the model coordinate of pixel position (col, row)
func (t Transform) Apply(col, row float64) (float64, float64) {
	x := t.A*col + t.B*row + t.C
	y := t.D*col + t.E*row + t.F
	return x, y
}

// Translate shifts the origin by (cols, rows) pixels
func (t Transform) Translate(cols, rows float64) Transform {
	t.C, t.F = t.Apply(cols, rows)
	return t
}

func (t Transform) String() string {
	return fmt.Sprintf("| %g, %g, %g|\n| %g, %g, %g|", t.A, t.B, t.C, t.D, t.E, t.F)
}
