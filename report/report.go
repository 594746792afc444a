// Package report assembles rendered PDF pages into a single document.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Section is one part of the report. Write must emit a complete PDF.
type Section struct {
	Name  string
	Write func(w io.Writer) error
}

// Build renders each section to its own PDF in a scratch directory and
// merges them, in order, into out. It returns the page count of the result.
func Build(out string, sections []Section) (int, error) {
	if len(sections) == 0 {
		return 0, eris.New("report: no sections")
	}

	dir, err := os.MkdirTemp("", "commutemap-report-*")
	if err != nil {
		return 0, eris.Wrap(err, "report: create scratch dir")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	files := make([]string, 0, len(sections))
	for i, s := range sections {
		path := filepath.Join(dir, sectionFile(i, s.Name))
		if err := writeSection(path, s); err != nil {
			return 0, err
		}
		files = append(files, path)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return 0, eris.Wrapf(err, "report: create directory for %s", out)
	}
	if err := api.MergeCreateFile(files, out, false, nil); err != nil {
		return 0, eris.Wrapf(err, "report: merge into %s", out)
	}

	n, err := api.PageCountFile(out)
	if err != nil {
		return 0, eris.Wrapf(err, "report: count pages of %s", out)
	}
	zap.L().Info("report: written",
		zap.String("path", out),
		zap.Int("sections", len(sections)),
		zap.Int("pages", n),
	)
	return n, nil
}

func writeSection(path string, s Section) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create section %s", s.Name)
	}
	if err := s.Write(f); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "report: render section %s", s.Name)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "report: close section %s", s.Name)
	}
	return nil
}

func sectionFile(i int, name string) string {
	if name == "" {
		name = "section"
	}
	return fmt.Sprintf("%02d-%s.pdf", i, filepath.Base(name))
}
