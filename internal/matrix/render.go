package matrix

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kiesman99/aoimatrix/pkg/affine"
	"github.com/rotisserie/eris"
)

// latitudeWidth is the field width latitude labels are right-aligned in
const latitudeWidth = 12

// Coordinates holds the rounded model coordinates of every column and row
type Coordinates struct {
	Longitudes []float64 // indexed by column, taken at row 0
	Latitudes  []float64 // indexed by row, taken at column 0
}

// ComputeCoordinates applies t along the first row and first column of a
// width x height grid and rounds the results to decimals.
func ComputeCoordinates(t affine.Transform, width, height, decimals int) Coordinates {
	coords := Coordinates{
		Longitudes: make([]float64, width),
		Latitudes:  make([]float64, height),
	}
	for c := range coords.Longitudes {
		x, _ := t.Apply(float64(c), 0)
		coords.Longitudes[c] = Round(x, decimals)
	}
	for r := range coords.Latitudes {
		_, y := t.Apply(0, float64(r))
		coords.Latitudes[r] = Round(y, decimals)
	}
	return coords
}

// Round rounds v to decimals places, ties to even
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*p) / p
}

// Render writes the matrix: one line per row of digits followed by its
// latitude, a blank line, and the longitude label line.
func Render(w io.Writer, values [][]int, coords Coordinates, labelEvery, decimals int) error {
	if len(values) != len(coords.Latitudes) {
		return eris.Errorf("matrix: %d rows but %d latitudes", len(values), len(coords.Latitudes))
	}

	var line strings.Builder
	for r, row := range values {
		if len(row) != len(coords.Longitudes) {
			return eris.Errorf("matrix: row %d has %d values, expected %d", r, len(row), len(coords.Longitudes))
		}

		line.Reset()
		for _, v := range row {
			line.WriteString(strconv.Itoa(v))
		}
		fmt.Fprintf(&line, " %*s\n", latitudeWidth, FormatCoordinate(coords.Latitudes[r]))

		if _, err := io.WriteString(w, line.String()); err != nil {
			return eris.Wrapf(err, "matrix: write row %d", r)
		}
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return eris.Wrap(err, "matrix: write separator")
	}

	if _, err := io.WriteString(w, LabelLine(coords.Longitudes, labelEvery, decimals)+"\n"); err != nil {
		return eris.Wrap(err, "matrix: write longitude labels")
	}
	return nil
}

// LabelLine renders a longitude label for every labelEvery-th column,
// right-justified in a block at least labelEvery wide. Unlabelled columns
// are a single space.
func LabelLine(longitudes []float64, labelEvery, decimals int) string {
	var b strings.Builder
	for c, lon := range longitudes {
		if c%labelEvery != 0 {
			b.WriteByte(' ')
			continue
		}
		label := strconv.FormatFloat(lon, 'f', decimals, 64)
		fmt.Fprintf(&b, "%*s", max(labelEvery, len(label)), label)
	}
	return b.String()
}

// FormatCoordinate renders v in its shortest round-trip form, keeping one
// decimal on integral values (20 -> "20.0").
func FormatCoordinate(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	if abs := math.Abs(v); v != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
