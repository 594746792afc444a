package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zalepa/commutemap/dataset"
)

// nameSuffixes lists trailing designations dropped before names are compared.
// Longer suffixes come first.
var nameSuffixes = []string{
	"COMMUNITY", "DISTRICT", "AREA",
}

// normalizeName uppercases name, drops punctuation, collapses whitespace and
// strips a trailing designation from nameSuffixes.
func normalizeName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '/':
			sb.WriteRune(' ')
		}
	}
	upper := strings.Join(strings.Fields(sb.String()), " ")
	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(upper, " "+suffix) {
			return upper[:len(upper)-len(suffix)-1]
		}
	}
	return upper
}

type codeCandidate struct {
	name         string
	boundaryCode string // mapped community without census data
	censusCode   string // census row without a boundary
}

// findCodeCandidates pairs unmatched boundary codes with unmatched census
// codes whose names normalize to the same value. Such pairs usually mean a
// community was recoded between the two datasets.
func findCodeCandidates(d *dataset.Dataset, m dataset.Mismatch) []codeCandidate {
	census := make(map[string][]string)
	for _, code := range m.NoBoundary {
		rec, ok := d.Index.Get(code)
		if !ok || rec.Name == "" {
			continue
		}
		n := normalizeName(rec.Name)
		census[n] = append(census[n], code)
	}

	var out []codeCandidate
	for _, code := range m.NoData {
		f, ok := d.Boundaries.Find(code)
		if !ok || f.Name == "" {
			continue
		}
		n := normalizeName(f.Name)
		for _, cc := range census[n] {
			out = append(out, codeCandidate{name: n, boundaryCode: code, censusCode: cc})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].name != out[j].name {
			return out[i].name < out[j].name
		}
		return out[i].censusCode < out[j].censusCode
	})
	return out
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report join problems between boundaries and census rows",
	Long: `Report duplicate census codes, mapped communities without census data,
census rows without a boundary, and unmatched code pairs that share a name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		n := writeAudit(cmd.OutOrStdout(), d)
		zap.L().Info("audit complete", zap.Int("findings", n))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

// writeAudit prints the audit report and returns the number of findings.
func writeAudit(w io.Writer, d *dataset.Dataset) int {
	m := d.Mismatches()
	dups := d.Index.Duplicates()
	candidates := findCodeCandidates(d, m)

	fmt.Fprintf(w, "Boundaries: %d communities\n", len(d.Boundaries.Features))
	fmt.Fprintf(w, "Census:     %d communities\n\n", d.Index.Len())

	section := func(title string, codes []string) {
		fmt.Fprintf(w, "%s (%d)\n", title, len(codes))
		for _, code := range codes {
			fmt.Fprintf(w, "  %-5s %s\n", code, d.Name(code))
		}
		fmt.Fprintln(w)
	}
	section("Duplicate census codes, last row kept", dups)
	section("Mapped without census data", m.NoData)
	section("Census rows without a boundary", m.NoBoundary)

	fmt.Fprintf(w, "Possible recodes (%d)\n", len(candidates))
	for _, c := range candidates {
		fmt.Fprintf(w, "  %s: boundary %s <-> census %s\n", c.name, c.boundaryCode, c.censusCode)
	}

	return len(dups) + len(m.NoData) + len(m.NoBoundary)
}
