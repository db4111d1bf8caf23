package affine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	tr := Transform{A: 1, C: 10, E: -1, F: 20}

	x, y := tr.Apply(0, 0)
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)

	x, y = tr.Apply(1, 1)
	assert.Equal(t, 11.0, x)
	assert.Equal(t, 19.0, y)
}

func TestApply_Skew(t *testing.T) {
	tr := Transform{A: 2, B: 0.5, C: 1, D: 0.25, E: -3, F: 4}

	x, y := tr.Apply(2, 4)
	assert.InDelta(t, 2*2+0.5*4+1, x, 1e-12)
	assert.InDelta(t, 0.25*2-3*4+4, y, 1e-12)
}

func TestGDAL(t *testing.T) {
	tr := Transform{A: 0.01, C: -122.5, E: -0.01, F: 37.8}
	assert.Equal(t, [6]float64{-122.5, 0.01, 0, 37.8, 0, -0.01}, tr.GDAL())
}

func TestTranslate(t *testing.T) {
	tr := Transform{A: 2, C: 100, E: -2, F: 50}

	shifted := tr.Translate(-0.5, -0.5)
	assert.Equal(t, 99.0, shifted.C)
	assert.Equal(t, 51.0, shifted.F)
	assert.Equal(t, tr.A, shifted.A)
	assert.Equal(t, tr.E, shifted.E)
}

func TestString(t *testing.T) {
	tr := Transform{A: 0.5, C: 10, E: -0.5, F: 20}
	assert.Equal(t, "| 0.5, 0, 10|\n| 0, -0.5, 20|", tr.String())
}
