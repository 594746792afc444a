package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zalepa/commutemap/classify"
	"github.com/zalepa/commutemap/render"
)

var chartOut string

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render a bar chart of the designated mode per community",
	Example: `  commutemap chart --out bikes.png
  commutemap chart --designated transit --out transit.svg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := render.FormatFromPath(chartOut)
		if err := render.ValidFormat(format); err != nil {
			return err
		}

		d, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		res, err := d.Classify(classify.ModePercentage)
		if err != nil {
			return err
		}
		pal, err := loadPalette()
		if err != nil {
			return err
		}

		p, err := render.BarChart(d, res, pal)
		if err != nil {
			return err
		}
		if err := writeFile(chartOut, func(f *os.File) error {
			return render.WriteChart(f, format, cfg.Render.ChartWidth, cfg.Render.ChartHeight, p)
		}); err != nil {
			return err
		}

		zap.L().Info("chart written", zap.String("path", chartOut), zap.Int("bars", d.Index.Len()))
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", chartOut)
		return nil
	},
}

func init() {
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "chart.png", "output file (png, jpg, svg or pdf)")
	rootCmd.AddCommand(chartCmd)
}
