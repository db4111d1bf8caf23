package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/kiesman99/aoimatrix/internal/raster"
	"github.com/kiesman99/aoimatrix/pkg/worldfile"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"
)

var classNames = map[int]string{
	0: "outside",
	1: "inside",
	2: "boundary",
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print size, georeferencing and class counts of an AOI raster",
	Long: `Print what aoimatrix reads from a raster: its format, size, geotransform,
footprint and the number of pixels per class.

Examples:
  aoimatrix info -i AOI_Matrix_3km.tif

  # Store the georeferencing next to a derived image
  aoimatrix info -i aoi.tif --worldfile aoi.pgw

  # Render the classes as a georeferenced PNG
  aoimatrix info -i aoi.tif --preview aoi.png`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringP("input", "i", "", "path to input raster")
	infoCmd.Flags().StringP("worldfile", "w", "", "also write the geotransform as a world file")
	infoCmd.Flags().StringP("preview", "p", "", "also write a paletted PNG preview of the classes")

	cobra.CheckErr(infoCmd.MarkFlagRequired("input"))
}

func runInfo(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	worldPath, _ := cmd.Flags().GetString("worldfile")
	previewPath, _ := cmd.Flags().GetString("preview")

	fsys := afero.NewOsFs()
	ds, err := raster.Open(fsys, input)
	if err != nil {
		return err
	}

	if err := printInfo(cmd.OutOrStdout(), input, ds); err != nil {
		return err
	}

	if worldPath != "" {
		if err := writeWorldFile(fsys, worldPath, ds); err != nil {
			return err
		}
		zap.L().Info("wrote world file", zap.String("path", worldPath))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote world file to: %s\n", worldPath)
	}

	if previewPath != "" {
		wld, err := raster.WritePreview(fsys, previewPath, ds)
		if err != nil {
			return err
		}
		zap.L().Info("wrote preview", zap.String("path", previewPath), zap.String("worldfile", wld))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote preview to: %s\n", previewPath)
	}
	return nil
}

func printInfo(w io.Writer, input string, ds *raster.Dataset) error {
	footprint, err := wkt.Marshal(ds.Footprint())
	if err != nil {
		return eris.Wrap(err, "encode footprint")
	}
	gt := ds.Transform.GDAL()
	b := ds.Bounds()

	fmt.Fprintf(w, "File:         %s\n", filepath.Base(input))
	fmt.Fprintf(w, "Format:       %s\n", ds.Format)
	fmt.Fprintf(w, "Size:         %d x %d\n", ds.Width, ds.Height)
	fmt.Fprintf(w, "GeoTransform: %g, %g, %g, %g, %g, %g\n", gt[0], gt[1], gt[2], gt[3], gt[4], gt[5])
	fmt.Fprintf(w, "Affine:\n%s\n", ds.Transform)
	if !ds.Georeferenced {
		fmt.Fprintln(w, "              (not georeferenced, pixel coordinates)")
	}
	fmt.Fprintf(w, "Bounds:       %g, %g, %g, %g\n", b.Min(0), b.Min(1), b.Max(0), b.Max(1))
	fmt.Fprintf(w, "Footprint:    %s\n", footprint)

	counts := ds.ClassCounts()
	values := make([]int, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Ints(values)

	fmt.Fprintln(w, "Classes:")
	for _, v := range values {
		name, ok := classNames[v]
		if !ok {
			name = "other"
		}
		fmt.Fprintf(w, "  %d %-9s %d\n", v, name, counts[v])
	}
	return nil
}

func writeWorldFile(fsys afero.Fs, path string, ds *raster.Dataset) error {
	f, err := fsys.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create world file %s", path)
	}
	if err := worldfile.Write(f, ds.Transform); err != nil {
		f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "close world file")
}
