package worldfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kiesman99/aoimatrix/pkg/affine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	src := `
	0.5
	0.0
	0.0
	-0.5
	10.25
	19.75
`
	tr, err := Read(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 0.5, tr.A)
	assert.Equal(t, -0.5, tr.E)
	// Centre of the upper-left pixel moved to its corner
	assert.InDelta(t, 10.0, tr.C, 1e-12)
	assert.InDelta(t, 20.0, tr.F, 1e-12)
}

func TestRead_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"too few values", "1\n0\n0\n-1\n"},
		{"too many values", "1\n0\n0\n-1\n0\n0\n7\n"},
		{"not a number", "1\n0\nzero\n-1\n0\n0\n"},
		{"empty", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.src))
			assert.Error(t, err)
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	tr := affine.Transform{A: 0.027, B: 0, C: 68.1, D: 0, E: -0.027, F: 37.1}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tr))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	for _, line := range lines {
		assert.Len(t, line, 24)
	}

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.InDelta(t, tr.A, got.A, 1e-10)
	assert.InDelta(t, tr.C, got.C, 1e-10)
	assert.InDelta(t, tr.E, got.E, 1e-10)
	assert.InDelta(t, tr.F, got.F, 1e-10)
}

func TestSidecars(t *testing.T) {
	assert.Equal(t,
		[]string{"/data/aoi.tfw", "/data/aoi.tifw", "/data/aoi.wld"},
		Sidecars("/data/aoi.tif"))
	assert.Equal(t,
		[]string{"aoi.pgw", "aoi.pngw", "aoi.pnw", "aoi.wld"},
		Sidecars("aoi.png"))
	assert.Equal(t, []string{"aoi.wld"}, Sidecars("aoi"))
}
