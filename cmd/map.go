package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zalepa/commutemap/classify"
	"github.com/zalepa/commutemap/render"
)

var (
	mapMode     string
	mapOut      string
	mapFormat   string
	mapWidth    int
	mapHeight   int
	mapNoLabels bool
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Render a choropleth map",
	Long: `Render a choropleth of every community.

Modes:
  dominant    color by the most common travel mode
  percentage  color by share of the citywide total of the designated mode
  breakdown   uncolored, with every count available to the dashboard tooltip`,
	Example: `  commutemap map --mode dominant --out dominant.png
  commutemap map --mode percentage --designated walk --out walk.svg
  commutemap map --mode percentage --out bikes.pdf --palette palette.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := classify.ParseMode(mapMode)
		if err != nil {
			return err
		}
		format := mapFormat
		if format == "" {
			format = render.FormatFromPath(mapOut)
		}
		if err := render.ValidFormat(format); err != nil {
			return err
		}

		d, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		res, err := d.Classify(mode)
		if err != nil {
			return err
		}
		pal, err := loadPalette()
		if err != nil {
			return err
		}

		width, height := cfg.Render.Width, cfg.Render.Height
		if mapWidth > 0 {
			width = mapWidth
		}
		if mapHeight > 0 {
			height = mapHeight
		}

		m := &render.Map{
			Dataset: d,
			Result:  res,
			Palette: pal,
			Labels:  cfg.Render.Labels && !mapNoLabels,
			Caption: render.Caption,
		}
		if err := writeFile(mapOut, func(f *os.File) error {
			return render.WriteMap(f, format, width, height, m)
		}); err != nil {
			return err
		}

		zap.L().Info("map written",
			zap.String("mode", string(mode)),
			zap.String("path", mapOut),
			zap.Int("communities", len(res.Communities)),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", mapOut)
		return nil
	},
}

func init() {
	mapCmd.Flags().StringVar(&mapMode, "mode", string(classify.ModeDominant), "classification: dominant, percentage, breakdown")
	mapCmd.Flags().StringVarP(&mapOut, "out", "o", "map.png", "output file")
	mapCmd.Flags().StringVar(&mapFormat, "format", "", "png, jpg, svg or pdf (default from --out extension)")
	mapCmd.Flags().IntVar(&mapWidth, "width", 0, "width in pixels (default from config)")
	mapCmd.Flags().IntVar(&mapHeight, "height", 0, "height in pixels (default from config)")
	mapCmd.Flags().BoolVar(&mapNoLabels, "no-labels", false, "omit community code labels")
	rootCmd.AddCommand(mapCmd)
}

// writeFile creates path (and its directory) and hands it to fn.
func writeFile(path string, fn func(f *os.File) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "create directory for %s", path)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
