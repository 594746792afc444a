package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zalepa/commutemap/census"
	"github.com/zalepa/commutemap/classify"
	"github.com/zalepa/commutemap/dataset"
	"github.com/zalepa/commutemap/render"
)

var validSorts = []string{"code", "name", "total", "share"}

var (
	summarySort  string
	summaryLimit int
	summaryJSON  bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print a per-community table in the terminal",
	Long: `Print one row per mapped community: total respondents, dominant mode,
count and citywide share of the designated mode, its bucket, and a sparkline
of the travel-mode mix in category order.`,
	Example: `  commutemap summary
  commutemap summary --sort share --limit 20
  commutemap summary --designated walk --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !slices.Contains(validSorts, summarySort) {
			return fmt.Errorf("invalid --sort %q; valid options: %s", summarySort, strings.Join(validSorts, ", "))
		}

		d, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		rows, err := buildSummary(d)
		if err != nil {
			return err
		}
		sortSummary(rows, summarySort)
		if summaryLimit > 0 && summaryLimit < len(rows) {
			rows = rows[:summaryLimit]
		}

		if summaryJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}
		renderTable(cmd.OutOrStdout(), d, rows)
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summarySort, "sort", "code", "sort by: "+strings.Join(validSorts, ", "))
	summaryCmd.Flags().IntVar(&summaryLimit, "limit", 0, "show at most this many rows (0 = all)")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "emit JSON instead of a table")
	rootCmd.AddCommand(summaryCmd)
}

type summaryRow struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	HasData  bool            `json:"hasData"`
	Total    int             `json:"total"`
	Dominant census.Category `json:"dominant,omitempty"`
	Count    int             `json:"count"`
	Percent  float64         `json:"percent"`
	Bucket   string          `json:"bucket"`
	Mix      []int           `json:"mix"`
}

// buildSummary classifies every mapped community in both modes and joins
// the results into one row each.
func buildSummary(d *dataset.Dataset) ([]summaryRow, error) {
	dom, err := d.Classify(classify.ModeDominant)
	if err != nil {
		return nil, err
	}
	pct, err := d.Classify(classify.ModePercentage)
	if err != nil {
		return nil, err
	}

	codes := d.Boundaries.Codes()
	rows := make([]summaryRow, 0, len(codes))
	for _, code := range codes {
		dc, pc := dom.Get(code), pct.Get(code)
		r := summaryRow{
			Code:     code,
			Name:     d.Name(code),
			HasData:  dc.HasData,
			Total:    dc.Record.Total,
			Dominant: dc.Dominant,
			Count:    pc.Count,
			Percent:  pc.Percent,
			Bucket:   pc.Bucket.String(),
			Mix:      make([]int, len(d.Categories)),
		}
		for i, c := range d.Categories {
			r.Mix[i] = dc.Record.Count(c)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func sortSummary(rows []summaryRow, by string) {
	sort.SliceStable(rows, func(i, j int) bool {
		switch by {
		case "name":
			return rows[i].Name < rows[j].Name
		case "total":
			return rows[i].Total > rows[j].Total
		case "share":
			return rows[i].Percent > rows[j].Percent
		}
		return rows[i].Code < rows[j].Code
	})
}

func renderTable(w io.Writer, d *dataset.Dataset, rows []summaryRow) {
	maxName, withData := 10, 0
	for _, r := range rows {
		if n := len([]rune(r.Name)); n > maxName {
			maxName = n
		}
		if r.HasData {
			withData++
		}
	}
	if maxName > 32 {
		maxName = 32
	}

	fmt.Fprintf(w, "%d communities, %d with survey data\n", len(rows), withData)
	fmt.Fprintf(w, "Citywide %s: %s\n", d.Designated, render.FormatCount(d.CitywideTotal))
	fmt.Fprintf(w, "Mix: %s\n\n", categoryKey(d.Categories))

	rowFmt := fmt.Sprintf("%%-5s %%-%ds %%9s  %%-16s %%8s %%7s  %%-15s %%s\n", maxName)
	header := fmt.Sprintf(rowFmt, "Code", "Name", "Total", "Dominant", string(d.Designated), "Share", "Bucket", "Mix")
	fmt.Fprint(w, header)
	fmt.Fprintln(w, strings.Repeat("─", len([]rune(header))-1+len(d.Categories)))

	for _, r := range rows {
		dominant := "-"
		if r.Dominant != classify.None {
			dominant = render.CategoryLabel(r.Dominant)
		}
		total, count, share := "-", "-", "-"
		if r.HasData {
			total = render.FormatCount(r.Total)
			count = render.FormatCount(r.Count)
			share = render.FormatPercent(r.Percent)
		}
		mix := make([]float64, len(r.Mix))
		for i, v := range r.Mix {
			mix[i] = float64(v)
			if !r.HasData {
				mix[i] = math.NaN()
			}
		}
		fmt.Fprintf(w, rowFmt, r.Code, truncate(r.Name, maxName), total, dominant, count, share, r.Bucket, sparkline(mix))
	}
}

func categoryKey(cats []census.Category) string {
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// sparkline draws one block per count, scaled from zero up to the largest
// count. NaN renders as a blank.
func sparkline(values []float64) string {
	const blocks = "▁▂▃▄▅▆▇█"
	levels := []rune(blocks)
	top := len(levels) - 1

	peak := math.NaN()
	for _, v := range values {
		if !math.IsNaN(v) && (math.IsNaN(peak) || v > peak) {
			peak = v
		}
	}

	out := make([]rune, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = ' '
		case peak <= 0:
			out[i] = levels[0]
		default:
			out[i] = levels[max(0, min(top, int(v/peak*float64(top))))]
		}
	}
	return string(out)
}
