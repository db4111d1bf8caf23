package raster

import (
	"bytes"
	"errors"
	"image"
	_ "image/png" // Register PNG format decoder
	"io/fs"

	"github.com/kiesman99/aoimatrix/pkg/affine"
	"github.com/kiesman99/aoimatrix/pkg/worldfile"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// readWorldImage decodes a PNG georeferenced by a sidecar world file
func readWorldImage(fsys afero.Fs, path string, data []byte) (*Dataset, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "raster: decode image")
	}

	values, err := gridFromImage(img)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
		Values:    values,
		Transform: affine.Identity,
	}

	t, ok, err := readSidecar(fsys, path)
	if err != nil {
		return nil, err
	}
	if ok {
		ds.Transform = t
		ds.Georeferenced = true
	}
	return ds, nil
}

// readSidecar looks for a world file next to path
func readSidecar(fsys afero.Fs, path string) (affine.Transform, bool, error) {
	for _, name := range worldfile.Sidecars(path) {
		f, err := fsys.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return affine.Transform{}, false, eris.Wrapf(err, "raster: open world file %s", name)
		}

		t, err := worldfile.Read(f)
		f.Close()
		if err != nil {
			return affine.Transform{}, false, eris.Wrapf(err, "raster: world file %s", name)
		}

		zap.L().Debug("using world file", zap.String("path", name))
		return t, true, nil
	}
	return affine.Transform{}, false, nil
}

// gridFromImage extracts the single band of img. Paletted images yield the
// palette index, which is how classified rasters are usually written.
func gridFromImage(img image.Image) ([][]int, error) {
	b := img.Bounds()

	var at func(x, y int) int
	switch m := img.(type) {
	case *image.Gray:
		at = func(x, y int) int { return int(m.GrayAt(x, y).Y) }
	case *image.Gray16:
		at = func(x, y int) int { return int(m.Gray16At(x, y).Y) }
	case *image.Paletted:
		at = func(x, y int) int { return int(m.ColorIndexAt(x, y)) }
	default:
		return nil, eris.Errorf("raster: expected a single-band image, got %T", img)
	}

	values := make([][]int, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := make([]int, b.Dx())
		for x := 0; x < b.Dx(); x++ {
			row[x] = at(b.Min.X+x, b.Min.Y+y)
		}
		values[y] = row
	}
	return values, nil
}
