package raster

import (
	"bufio"
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/kiesman99/aoimatrix/pkg/affine"
	"github.com/rotisserie/eris"
)

// asciiHeader is the header of an ESRI ASCII grid
type asciiHeader struct {
	ncols, nrows int
	xll, yll     float64
	cellSize     float64
	xCentred     bool
	yCentred     bool
	seenX, seenY bool
}

// readASCIIGrid parses an ESRI ASCII grid. Cell values are truncated toward
// zero.
func readASCIIGrid(data []byte) (*Dataset, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Split(bufio.ScanWords)

	var h asciiHeader
	var first string
	for scanner.Scan() {
		key := strings.ToLower(scanner.Text())
		if !isHeaderKey(key) {
			first = scanner.Text()
			break
		}
		if !scanner.Scan() {
			return nil, eris.Errorf("raster: ascii grid header %q has no value", key)
		}
		if err := h.set(key, scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "raster: read ascii grid")
	}
	if h.ncols <= 0 || h.nrows <= 0 {
		return nil, eris.Errorf("raster: ascii grid has invalid size %dx%d", h.ncols, h.nrows)
	}
	if !h.seenX || !h.seenY || h.cellSize <= 0 {
		return nil, eris.New("raster: ascii grid header is missing origin or cellsize")
	}

	// Values are collected before the grid is allocated, so the header
	// size is only trusted once the file holds that many cells.
	var cells []int
	for token := first; token != ""; {
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "raster: ascii grid value %d", len(cells))
		}
		cells = append(cells, int(math.Trunc(v)))

		token = ""
		if scanner.Scan() {
			token = scanner.Text()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "raster: read ascii grid")
	}
	if len(cells)%h.ncols != 0 || len(cells)/h.ncols != h.nrows {
		return nil, eris.Errorf("raster: ascii grid has %d values, expected %d rows of %d", len(cells), h.nrows, h.ncols)
	}

	values := make([][]int, h.nrows)
	for r := range values {
		values[r] = cells[r*h.ncols : (r+1)*h.ncols : (r+1)*h.ncols]
	}

	xll, yll := h.xll, h.yll
	if h.xCentred {
		xll -= h.cellSize / 2
	}
	if h.yCentred {
		yll -= h.cellSize / 2
	}

	return &Dataset{
		Width:  h.ncols,
		Height: h.nrows,
		Values: values,
		Transform: affine.Transform{
			A: h.cellSize, C: xll,
			E: -h.cellSize, F: yll + float64(h.nrows)*h.cellSize,
		},
		Georeferenced: true,
	}, nil
}

func isHeaderKey(key string) bool {
	switch key {
	case "ncols", "nrows", "xllcorner", "yllcorner", "xllcenter", "yllcenter", "cellsize", "nodata_value":
		return true
	}
	return false
}

func (h *asciiHeader) set(key, value string) error {
	var err error
	switch key {
	case "ncols":
		h.ncols, err = strconv.Atoi(value)
	case "nrows":
		h.nrows, err = strconv.Atoi(value)
	case "xllcorner", "xllcenter":
		h.xll, err = strconv.ParseFloat(value, 64)
		h.seenX = true
		h.xCentred = key == "xllcenter"
	case "yllcorner", "yllcenter":
		h.yll, err = strconv.ParseFloat(value, 64)
		h.seenY = true
		h.yCentred = key == "yllcenter"
	case "cellsize":
		h.cellSize, err = strconv.ParseFloat(value, 64)
	case "nodata_value":
		_, err = strconv.ParseFloat(value, 64)
	}
	if err != nil {
		return eris.Wrapf(err, "raster: ascii grid header %s", key)
	}
	return nil
}
