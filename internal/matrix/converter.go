// Package matrix converts classified rasters into labelled text matrices.
package matrix

import (
	"bufio"
	"context"
	"path/filepath"

	"github.com/kiesman99/aoimatrix/internal/raster"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Defaults for Options
const (
	DefaultLabelEveryNCols = 10
	DefaultRoundDecimals   = 3
)

// ErrInputNotFound is returned when the input raster does not exist
var ErrInputNotFound = eris.New("input file not found")

// ConversionError wraps every failure other than a missing input
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return e.Err.Error()
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Options contains all conversion parameters
type Options struct {
	Input           string
	Output          string
	LabelEveryNCols int
	RoundDecimals   int
}

// DefaultOptions returns Options with the default label stride and precision
func DefaultOptions(input, output string) Options {
	return Options{
		Input:           input,
		Output:          output,
		LabelEveryNCols: DefaultLabelEveryNCols,
		RoundDecimals:   DefaultRoundDecimals,
	}
}

func (o Options) validate() error {
	if o.Input == "" {
		return eris.New("matrix: input path is required")
	}
	if o.Output == "" {
		return eris.New("matrix: output path is required")
	}
	if o.LabelEveryNCols < 1 {
		return eris.Errorf("matrix: label stride must be at least 1, got %d", o.LabelEveryNCols)
	}
	if o.RoundDecimals < 0 {
		return eris.Errorf("matrix: round decimals must not be negative, got %d", o.RoundDecimals)
	}
	return nil
}

// Converter turns rasters into text matrices
type Converter struct {
	fs  afero.Fs
	log *zap.Logger
}

// New creates a converter reading and writing through fsys. A nil logger
// falls back to the global one.
func New(fsys afero.Fs, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.L()
	}
	return &Converter{
		fs:  fsys,
		log: log,
	}
}

// Convert reads opts.Input and writes the text matrix to opts.Output,
// creating missing parent directories.
func (c *Converter) Convert(ctx context.Context, opts Options) error {
	if err := opts.validate(); err != nil {
		return &ConversionError{Err: err}
	}
	log := c.log.With(zap.String("input", opts.Input), zap.String("output", opts.Output))

	if err := ctx.Err(); err != nil {
		return &ConversionError{Err: err}
	}

	ds, err := raster.Open(c.fs, opts.Input)
	if err != nil {
		if eris.Is(err, raster.ErrNotFound) {
			return eris.Wrapf(ErrInputNotFound, "%s", opts.Input)
		}
		return &ConversionError{Err: eris.Wrap(err, "matrix: open raster")}
	}
	log.Debug("read raster",
		zap.Stringer("format", ds.Format),
		zap.Int("width", ds.Width),
		zap.Int("height", ds.Height),
	)

	if err := checkClasses(ds.Values); err != nil {
		return &ConversionError{Err: err}
	}

	coords := ComputeCoordinates(ds.Transform, ds.Width, ds.Height, opts.RoundDecimals)

	if err := ctx.Err(); err != nil {
		return &ConversionError{Err: err}
	}
	if err := c.write(opts, ds.Values, coords); err != nil {
		return &ConversionError{Err: err}
	}

	log.Info("wrote matrix", zap.Int("rows", ds.Height), zap.Int("columns", ds.Width))
	return nil
}

func (c *Converter) write(opts Options, values [][]int, coords Coordinates) error {
	if err := c.fs.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return eris.Wrap(err, "matrix: create output directory")
	}

	f, err := c.fs.Create(opts.Output)
	if err != nil {
		return eris.Wrap(err, "matrix: create output")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := Render(w, values, coords, opts.LabelEveryNCols, opts.RoundDecimals); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "matrix: flush output")
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "matrix: close output")
	}
	return nil
}

// checkClasses rejects values that would not render as a single digit
func checkClasses(values [][]int) error {
	for r, row := range values {
		for c, v := range row {
			if v < 0 || v > 9 {
				return eris.Errorf("matrix: class value %d at row %d, column %d is not a single digit", v, r, c)
			}
		}
	}
	return nil
}
