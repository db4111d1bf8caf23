// Package worldfile reads and writes the six-line world files that georeference images.
package worldfile

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kiesman99/aoimatrix/pkg/affine"
	"github.com/rotisserie/eris"
)

// Read parses a world file. World files address the centre of the upper-left
// pixel, the returned transform addresses its upper-left corner.
func Read(r io.Reader) (affine.Transform, error) {
	var vals []float64

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if len(vals) == 6 {
			return affine.Transform{}, eris.New("worldfile: more than six values")
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return affine.Transform{}, eris.Wrapf(err, "worldfile: line %d", len(vals)+1)
		}
		vals = append(vals, v)
	}
	if err := scanner.Err(); err != nil {
		return affine.Transform{}, eris.Wrap(err, "worldfile: read")
	}
	if len(vals) != 6 {
		return affine.Transform{}, eris.Errorf("worldfile: expected 6 values, got %d", len(vals))
	}

	// Order: pixel size x, rotation, rotation, pixel size y, centre x, centre y
	t := affine.Transform{
		A: vals[0], D: vals[1],
		B: vals[2], E: vals[3],
		C: vals[4], F: vals[5],
	}
	return t.Translate(-0.5, -0.5), nil
}

// Write writes t as a world file
func Write(w io.Writer, t affine.Transform) error {
	centre := t.Translate(0.5, 0.5)
	for _, v := range []float64{centre.A, centre.D, centre.B, centre.E, centre.C, centre.F} {
		if _, err := fmt.Fprintf(w, "%24.10f\n", v); err != nil {
			return eris.Wrap(err, "worldfile: write")
		}
	}
	return nil
}

// Sidecars returns the world file names that may accompany the raster at path,
// most specific first.
func Sidecars(path string) []string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if len(ext) < 2 {
		return []string{base + ".wld"}
	}

	short := ext[:2] + ext[len(ext)-1:] + "w" // .tif -> .tfw, .png -> .pgw
	names := []string{base + short, path + "w"}

	// Legacy PNG world file extension
	if strings.EqualFold(ext, ".png") {
		names = append(names, base+".pnw")
	}
	return append(names, base+".wld")
}
