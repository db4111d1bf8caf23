package raster

import (
	"image"
	"image/color"
	"image/png"

	"github.com/kiesman99/aoimatrix/pkg/worldfile"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
)

// previewPalette colours the classes. The palette index is the class value,
// so a preview can be read back with Open.
var previewPalette = color.Palette{
	color.RGBA{0xf0, 0xf0, 0xf0, 0xff}, // outside
	color.RGBA{0x2e, 0x8b, 0x57, 0xff}, // inside
	color.RGBA{0xd6, 0x27, 0x28, 0xff}, // boundary
	color.Gray{0x10},
	color.Gray{0x30},
	color.Gray{0x50},
	color.Gray{0x70},
	color.Gray{0x90},
	color.Gray{0xb0},
	color.Gray{0xd0},
}

// WritePreview writes the dataset as a paletted PNG at path, plus a world
// file next to it when the dataset is georeferenced. It returns the world
// file name, or "" when none was written.
func WritePreview(fsys afero.Fs, path string, d *Dataset) (string, error) {
	img := image.NewPaletted(image.Rect(0, 0, d.Width, d.Height), previewPalette)
	for y, row := range d.Values {
		for x, v := range row {
			if v < 0 || v >= len(previewPalette) {
				return "", eris.Errorf("raster: value %d at row %d, column %d has no preview colour", v, y, x)
			}
			img.SetColorIndex(x, y, uint8(v))
		}
	}

	file, err := fsys.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "raster: create preview %s", path)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return "", eris.Wrap(err, "raster: encode preview")
	}
	if err := file.Close(); err != nil {
		return "", eris.Wrap(err, "raster: close preview")
	}

	if !d.Georeferenced {
		return "", nil
	}

	wld := worldfile.Sidecars(path)[0]
	file, err = fsys.Create(wld)
	if err != nil {
		return "", eris.Wrapf(err, "raster: create world file %s", wld)
	}
	if err := worldfile.Write(file, d.Transform); err != nil {
		file.Close()
		return "", err
	}
	return wld, eris.Wrap(file.Close(), "raster: close world file")
}
