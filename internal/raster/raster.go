// Package raster opens single-band classified rasters and exposes their pixel
// grid together with the affine transform that georeferences it.
package raster

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/kiesman99/aoimatrix/pkg/affine"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Format identifies the encoding of a raster file
type Format int

// Supported raster formats
const (
	FormatUnknown Format = iota
	FormatGeoTIFF
	FormatWorldImage
	FormatASCIIGrid
)

var formatNames = []string{"unknown", "GeoTIFF", "PNG+world file", "ESRI ASCII grid"}

func (f Format) String() string {
	if int(f) < 0 || int(f) >= len(formatNames) {
		return formatNames[FormatUnknown]
	}
	return formatNames[f]
}

var (
	// ErrNotFound is returned when the raster path does not exist
	ErrNotFound = eris.New("raster: file not found")
	// ErrUnsupportedFormat is returned when no reader recognises the file
	ErrUnsupportedFormat = eris.New("raster: unsupported format")
)

// Dataset is band 1 of a raster, truncated to integers
type Dataset struct {
	Format        Format
	Width, Height int
	// Values is indexed [row][column]
	Values    [][]int
	Transform affine.Transform
	// Georeferenced is false when no transform was found and Identity is used
	Georeferenced bool
}

var extensionFormats = map[string]Format{
	".tif":  FormatGeoTIFF,
	".tiff": FormatGeoTIFF,
	".png":  FormatWorldImage,
	".asc":  FormatASCIIGrid,
	".txt":  FormatASCIIGrid,
}

// Open reads the raster at path. The file is closed before Open returns.
func Open(fsys afero.Fs, path string) (*Dataset, error) {
	log := zap.L().With(zap.String("input", path))

	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(ErrNotFound, "%s", path)
		}
		return nil, eris.Wrap(err, "raster: stat")
	}
	if info.IsDir() {
		return nil, eris.Errorf("raster: %s is a directory", path)
	}

	data, err := readAll(fsys, path)
	if err != nil {
		return nil, err
	}

	format := DetectFormat(path, data)
	log.Debug("detected raster format", zap.Stringer("format", format), zap.Int("bytes", len(data)))

	var ds *Dataset
	switch format {
	case FormatGeoTIFF:
		ds, err = readGeoTIFF(fsys, path, data)
	case FormatWorldImage:
		ds, err = readWorldImage(fsys, path, data)
	case FormatASCIIGrid:
		ds, err = readASCIIGrid(data)
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
	if err != nil {
		return nil, err
	}
	ds.Format = format

	if !ds.Georeferenced {
		log.Warn("dataset has no geotransform, using identity transform")
	}
	gt := ds.Transform.GDAL()
	log.Debug("opened raster",
		zap.Int("width", ds.Width),
		zap.Int("height", ds.Height),
		zap.Float64s("geotransform", gt[:]),
	)

	return ds, nil
}

func readAll(fsys afero.Fs, path string) ([]byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "raster: open")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, eris.Wrap(err, "raster: read")
	}
	return data, nil
}

// DetectFormat guesses the format from the file extension, falling back to
// the leading bytes of the file.
func DetectFormat(path string, data []byte) Format {
	if f, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}

	switch {
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return FormatGeoTIFF
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FormatWorldImage
	}

	head := bytes.ToLower(bytes.TrimSpace(data))
	if bytes.HasPrefix(head, []byte("ncols")) || bytes.HasPrefix(head, []byte("nrows")) {
		return FormatASCIIGrid
	}
	return FormatUnknown
}

// Footprint returns the polygon covered by the raster in model coordinates
func (d *Dataset) Footprint() *geom.Polygon {
	w, h := float64(d.Width), float64(d.Height)
	corners := [][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}, {0, 0}}

	flat := make([]float64, 0, len(corners)*2)
	for _, c := range corners {
		x, y := d.Transform.Apply(c[0], c[1])
		flat = append(flat, x, y)
	}
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
}

// Bounds returns the extent of the footprint
func (d *Dataset) Bounds() *geom.Bounds {
	return d.Footprint().Bounds()
}

// ClassCounts returns the number of pixels holding each value
func (d *Dataset) ClassCounts() map[int]int {
	counts := make(map[int]int)
	for _, row := range d.Values {
		for _, v := range row {
			counts[v]++
		}
	}
	return counts
}
