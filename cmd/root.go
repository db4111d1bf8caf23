package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiesman99/aoimatrix/internal/config"
	"github.com/kiesman99/aoimatrix/internal/matrix"
	"github.com/kiesman99/aoimatrix/internal/raster"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	cfg     *config.Config
)

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"label-every-n-cols": "matrix.label_every_n_cols",
	"round-decimals":     "matrix.round_decimals",
	"log-level":          "log.level",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aoimatrix",
	Short: "Convert a classified AOI raster into a labelled text matrix",
	Long: `aoimatrix converts a single-band AOI raster (0 = outside, 1 = inside,
2 = boundary) into a plain text matrix.

Every raster row becomes a line of digits followed by the row's latitude.
After a blank line, a final line labels every Nth column with its longitude.
Coordinates are the upper-left corners of the pixels.

Supported inputs are GeoTIFF, PNG with a world file and ESRI ASCII grids.

Examples:
  # Convert a GeoTIFF exported from Earth Engine
  aoimatrix -i AOI_Matrix_3km.tif -o AOI_Matrix_3km.txt

  # Label every 5th column, rounding coordinates to 2 decimals
  aoimatrix -i aoi.tif -o out/aoi.txt --label-every-n-cols 5 --round-decimals 2

  # Inspect a raster before converting it
  aoimatrix info -i aoi.tif`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return eris.Wrapf(err, "bind flag %s", name)
				}
			}
		}

		c, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return err
		}
		if f := v.ConfigFileUsed(); f != "" {
			zap.L().Debug("using config file", zap.String("path", f))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: runConvert,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if code != 0 {
		os.Exit(code)
	}
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

// reportError prints err for the user. A missing input gets a dedicated hint.
func reportError(w io.Writer, err error) {
	if eris.Is(err, matrix.ErrInputNotFound) || eris.Is(err, raster.ErrNotFound) {
		fmt.Fprintln(w, "ERROR: Input file not found. Double-check the --input path.")
		return
	}
	fmt.Fprintf(w, "ERROR: %v\n", err)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.aoimatrix.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")

	// Conversion flags
	rootCmd.Flags().StringP("input", "i", "", "path to input raster (GeoTIFF, PNG + world file, ESRI ASCII grid)")
	rootCmd.Flags().StringP("output", "o", "", "path to output text file")
	rootCmd.Flags().Int("label-every-n-cols", matrix.DefaultLabelEveryNCols, "label every Nth longitude column")
	rootCmd.Flags().Int("round-decimals", matrix.DefaultRoundDecimals, "rounding for lat/lon labels")

	cobra.CheckErr(rootCmd.MarkFlagRequired("input"))
	cobra.CheckErr(rootCmd.MarkFlagRequired("output"))
}

func runConvert(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")

	opts := matrix.Options{
		Input:           input,
		Output:          output,
		LabelEveryNCols: cfg.Matrix.LabelEveryNCols,
		RoundDecimals:   cfg.Matrix.RoundDecimals,
	}

	conv := matrix.New(afero.NewOsFs(), zap.L().With(zap.String("command", "convert")))
	if err := conv.Convert(cmd.Context(), opts); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote matrix to: %s\n", output)
	return nil
}
