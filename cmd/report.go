package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zalepa/commutemap/classify"
	"github.com/zalepa/commutemap/dataset"
	"github.com/zalepa/commutemap/render"
	"github.com/zalepa/commutemap/report"
)

var (
	reportOut       string
	reportBreakdown bool
	reportInspect   bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render every map and the chart into one PDF",
	Long: `Render the dominant-mode map, the percentage map of the designated mode and
its bar chart as PDF pages and merge them into a single document.`,
	Example: `  commutemap report --out report.pdf
  commutemap report --breakdown --inspect`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		pal, err := loadPalette()
		if err != nil {
			return err
		}

		sections, err := reportSections(d, pal, reportBreakdown)
		if err != nil {
			return err
		}
		pages, err := report.Build(reportOut, sections)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d pages)\n", reportOut, pages)

		if !reportInspect {
			return nil
		}
		summaries, err := report.Inspect(reportOut)
		if err != nil {
			return err
		}
		for _, s := range summaries {
			fmt.Fprintf(cmd.OutOrStdout(), "  page %d: %d content bytes, %d fills, text=%v\n",
				s.Page, s.ContentBytes, s.Fills, s.HasText)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "report.pdf", "output PDF")
	reportCmd.Flags().BoolVar(&reportBreakdown, "breakdown", false, "include the uncolored breakdown map")
	reportCmd.Flags().BoolVar(&reportInspect, "inspect", false, "print a per-page summary of the merged PDF")
	rootCmd.AddCommand(reportCmd)
}

// reportSections classifies d in each mode up front so that a zero citywide
// total fails before any page is rendered.
func reportSections(d *dataset.Dataset, pal *render.Palette, breakdown bool) ([]report.Section, error) {
	modes := []classify.Mode{classify.ModeDominant, classify.ModePercentage}
	if breakdown {
		modes = append(modes, classify.ModeBreakdown)
	}

	var sections []report.Section
	var pct *classify.Result
	for _, mode := range modes {
		res, err := d.Classify(mode)
		if err != nil {
			return nil, err
		}
		if mode == classify.ModePercentage {
			pct = res
		}
		m := &render.Map{
			Dataset: d,
			Result:  res,
			Palette: pal,
			Labels:  cfg.Render.Labels,
			Caption: render.Caption,
		}
		sections = append(sections, report.Section{
			Name: string(mode) + "-map",
			Write: func(w io.Writer) error {
				return render.WriteMap(w, "pdf", cfg.Render.Width, cfg.Render.Height, m)
			},
		})
	}

	p, err := render.BarChart(d, pct, pal)
	if err != nil {
		return nil, err
	}
	sections = append(sections, report.Section{
		Name: "chart",
		Write: func(w io.Writer) error {
			return render.WriteChart(w, "pdf", cfg.Render.ChartWidth, cfg.Render.ChartHeight, p)
		},
	})

	zap.L().Debug("report sections ready", zap.Int("sections", len(sections)))
	return sections, nil
}
