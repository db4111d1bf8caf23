package raster

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// tiffTag is an IFD entry written by encodeTIFF
type tiffTag struct {
	tag     uint16
	shorts  []uint16
	longs   []uint32
	doubles []float64
}

func (tg tiffTag) typ() uint16 {
	switch {
	case tg.doubles != nil:
		return dtDouble
	case tg.longs != nil:
		return 4
	default:
		return dtShort
	}
}

func (tg tiffTag) count() int {
	return len(tg.shorts) + len(tg.longs) + len(tg.doubles)
}

func (tg tiffTag) raw() []byte {
	var buf bytes.Buffer
	for _, v := range tg.shorts {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	for _, v := range tg.longs {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	for _, v := range tg.doubles {
		binary.Write(&buf, binary.LittleEndian, math.Float64bits(v))
	}
	return buf.Bytes()
}

func pixelScale(sx, sy float64) tiffTag {
	return tiffTag{tag: tagModelPixelScale, doubles: []float64{sx, sy, 0}}
}

func tiepoint(i, j, x, y float64) tiffTag {
	return tiffTag{tag: tagModelTiepoint, doubles: []float64{i, j, 0, x, y, 0}}
}

func pixelIsPoint() tiffTag {
	return tiffTag{tag: tagGeoKeyDirectory, shorts: []uint16{1, 1, 0, 1, keyGTRasterType, 0, 1, rasterPixelIsPoint}}
}

// encodeTIFF writes an uncompressed 8-bit grayscale little-endian TIFF
func encodeTIFF(t *testing.T, values [][]uint8, extra ...tiffTag) []byte {
	t.Helper()
	require.NotEmpty(t, values)

	h, w := len(values), len(values[0])
	var pix []byte
	for _, row := range values {
		require.Len(t, row, w)
		pix = append(pix, row...)
	}

	var buf bytes.Buffer
	buf.WriteString("II*\x00")
	buf.Write(make([]byte, 4)) // IFD offset, patched below
	pixOff := buf.Len()
	buf.Write(pix)

	tags := []tiffTag{
		{tag: 256, shorts: []uint16{uint16(w)}},
		{tag: 257, shorts: []uint16{uint16(h)}},
		{tag: 258, shorts: []uint16{8}},
		{tag: 259, shorts: []uint16{1}},
		{tag: 262, shorts: []uint16{1}},
		{tag: 273, longs: []uint32{uint32(pixOff)}},
		{tag: 277, shorts: []uint16{1}},
		{tag: 278, shorts: []uint16{uint16(h)}},
		{tag: 279, longs: []uint32{uint32(len(pix))}},
	}
	tags = append(tags, extra...)
	sort.Slice(tags, func(i, j int) bool { return tags[i].tag < tags[j].tag })

	offsets := make([]uint32, len(tags))
	for i, tg := range tags {
		raw := tg.raw()
		if len(raw) <= 4 {
			continue
		}
		if buf.Len()%2 == 1 {
			buf.WriteByte(0)
		}
		offsets[i] = uint32(buf.Len())
		buf.Write(raw)
	}
	if buf.Len()%2 == 1 {
		buf.WriteByte(0)
	}

	ifdOff := buf.Len()
	le := binary.LittleEndian
	binary.Write(&buf, le, uint16(len(tags)))
	for i, tg := range tags {
		binary.Write(&buf, le, tg.tag)
		binary.Write(&buf, le, tg.typ())
		binary.Write(&buf, le, uint32(tg.count()))
		raw := tg.raw()
		if len(raw) <= 4 {
			field := make([]byte, 4)
			copy(field, raw)
			buf.Write(field)
		} else {
			binary.Write(&buf, le, offsets[i])
		}
	}
	binary.Write(&buf, le, uint32(0))

	out := buf.Bytes()
	le.PutUint32(out[4:8], uint32(ifdOff))
	return out
}

// encodeGrayPNG writes values as an 8-bit grayscale PNG
func encodeGrayPNG(t *testing.T, values [][]uint8) []byte {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, len(values[0]), len(values)))
	for y, row := range values {
		for x, v := range row {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
