package raster

import (
	"bytes"
	"math"

	gtiff "github.com/google/tiff"
	"github.com/kiesman99/aoimatrix/pkg/affine"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"golang.org/x/image/tiff"
)

// GeoTIFF tags and keys
const (
	tagModelPixelScale     = 33550
	tagModelTiepoint       = 33922
	tagModelTransformation = 34264
	tagGeoKeyDirectory     = 34735

	keyGTRasterType    = 1025
	rasterPixelIsPoint = 2
)

// TIFF field types
const (
	dtShort  = 3
	dtDouble = 12
)

// geoTags holds the georeferencing tags of the first IFD
type geoTags struct {
	pixelScale     []float64
	tiepoints      []float64
	transformation []float64
	geoKeys        []uint16
}

func readGeoTIFF(fsys afero.Fs, path string, data []byte) (*Dataset, error) {
	img, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "raster: decode tiff")
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

	tags, err := readGeoTags(data)
	if err != nil {
		return nil, err
	}
	if t, ok := tags.transform(); ok {
		ds.Transform = t
		ds.Georeferenced = true
		return ds, nil
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

// transform derives the pixel to model transform. ModelTransformation takes
// precedence over a tiepoint and pixel scale pair.
func (g *geoTags) transform() (affine.Transform, bool) {
	var t affine.Transform
	switch {
	case len(g.transformation) >= 16:
		m := g.transformation
		t = affine.Transform{A: m[0], B: m[1], C: m[3], D: m[4], E: m[5], F: m[7]}
	case len(g.tiepoints) >= 6 && len(g.pixelScale) >= 2:
		tp := g.tiepoints
		sx, sy := g.pixelScale[0], g.pixelScale[1]
		t = affine.Transform{
			A: sx, C: tp[3] - tp[0]*sx,
			E: -sy, F: tp[4] + tp[1]*sy,
		}
	default:
		return affine.Transform{}, false
	}

	if g.geoKey(keyGTRasterType) == rasterPixelIsPoint {
		t = t.Translate(-0.5, -0.5)
	}
	return t, true
}

// geoKey returns the inline value of key, or 0 when absent
func (g *geoTags) geoKey(key uint16) uint16 {
	if len(g.geoKeys) < 4 {
		return 0
	}
	n := int(g.geoKeys[3])
	for i := 0; i < n; i++ {
		start := 4 + i*4
		if start+4 > len(g.geoKeys) {
			break
		}
		entry := g.geoKeys[start : start+4]
		// Location 0 means the value is stored in the entry itself
		if entry[0] == key && entry[1] == 0 {
			return entry[3]
		}
	}
	return 0
}

// readGeoTags reads the georeferencing fields of the first IFD
func readGeoTags(data []byte) (*geoTags, error) {
	t, err := gtiff.Parse(bytes.NewReader(data), nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "raster: parse tiff directory")
	}
	ifds := t.IFDs()
	if len(ifds) == 0 {
		return nil, eris.New("raster: tiff has no image directory")
	}
	ifd := ifds[0]

	tags := &geoTags{}
	if tags.pixelScale, err = fieldDoubles(ifd, tagModelPixelScale); err != nil {
		return nil, err
	}
	if tags.tiepoints, err = fieldDoubles(ifd, tagModelTiepoint); err != nil {
		return nil, err
	}
	if tags.transformation, err = fieldDoubles(ifd, tagModelTransformation); err != nil {
		return nil, err
	}
	if tags.geoKeys, err = fieldShorts(ifd, tagGeoKeyDirectory); err != nil {
		return nil, err
	}
	return tags, nil
}

// fieldDoubles returns the DOUBLE values of tag, or nil when the IFD lacks it
func fieldDoubles(ifd gtiff.IFD, tag uint16) ([]float64, error) {
	if !ifd.HasField(tag) {
		return nil, nil
	}
	f := ifd.GetField(tag)
	if id := f.Type().ID(); id != dtDouble {
		return nil, eris.Errorf("raster: tiff tag %d: expected DOUBLE, got field type %d", tag, id)
	}

	bo, raw := f.Value().Order(), f.Value().Bytes()
	vals := make([]float64, len(raw)/8)
	for i := range vals {
		vals[i] = math.Float64frombits(bo.Uint64(raw[i*8:]))
	}
	return vals, nil
}

// fieldShorts returns the SHORT values of tag, or nil when the IFD lacks it
func fieldShorts(ifd gtiff.IFD, tag uint16) ([]uint16, error) {
	if !ifd.HasField(tag) {
		return nil, nil
	}
	f := ifd.GetField(tag)
	if id := f.Type().ID(); id != dtShort {
		return nil, eris.Errorf("raster: tiff tag %d: expected SHORT, got field type %d", tag, id)
	}

	bo, raw := f.Value().Order(), f.Value().Bytes()
	vals := make([]uint16, len(raw)/2)
	for i := range vals {
		vals[i] = bo.Uint16(raw[i*2:])
	}
	return vals, nil
}
