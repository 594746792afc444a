package report

import (
	"bytes"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rotisserie/eris"
)

// PageSummary describes one page of a rendered PDF.
type PageSummary struct {
	Page int `json:"page"`
	// ContentBytes is the decoded size of the page's content streams.
	ContentBytes int `json:"contentBytes"`
	// HasText reports whether the page draws any text.
	HasText bool `json:"hasText"`
	// Fills counts fill operators, roughly one per drawn region.
	Fills int `json:"fills"`
}

// Inspect opens a PDF and summarizes the decoded content stream of each
// page.
func Inspect(path string) ([]PageSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: open %s", path)
	}
	defer f.Close()

	ctx, err := pdfcpu.Read(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, eris.Wrapf(err, "report: read %s", path)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, eris.Wrapf(err, "report: page count of %s", path)
	}

	out := make([]PageSummary, 0, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		pageDict, _, _, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, eris.Wrapf(err, "report: page %d dict", i)
		}

		var contents [][]byte
		if obj, found := pageDict.Find("Contents"); found {
			contents, err = pageContents(ctx, obj)
			if err != nil {
				return nil, eris.Wrapf(err, "report: page %d content stream", i)
			}
		}
		out = append(out, summarizePage(i, contents))
	}
	return out, nil
}

// pageContents flattens a page's Contents entry, a stream or an array of
// streams, and returns each decoded stream in drawing order.
func pageContents(ctx *model.Context, root types.Object) ([][]byte, error) {
	var out [][]byte
	pending := []types.Object{root}
	for len(pending) > 0 {
		obj, err := ctx.Dereference(pending[0])
		pending = pending[1:]
		if err != nil {
			return nil, err
		}
		switch v := obj.(type) {
		case types.StreamDict:
			if err := v.Decode(); err != nil {
				return nil, eris.Wrap(err, "decode stream")
			}
			out = append(out, v.Content)
		case types.Array:
			pending = append(append([]types.Object{}, v...), pending...)
		default:
			return nil, eris.Errorf("unexpected Contents type: %T", obj)
		}
	}
	return out, nil
}

// summarizePage tallies the drawing operators across a page's streams.
func summarizePage(page int, contents [][]byte) PageSummary {
	s := PageSummary{Page: page}
	for _, data := range contents {
		s.ContentBytes += len(data)
		s.HasText = s.HasText || bytes.Contains(data, []byte("Tj")) || bytes.Contains(data, []byte("TJ"))
		s.Fills += countOps(data, "f") + countOps(data, "f*")
	}
	return s
}

// countOps counts whitespace-delimited occurrences of operator op.
func countOps(data []byte, op string) int {
	n := 0
	for _, tok := range bytes.Fields(data) {
		if string(tok) == op {
			n++
		}
	}
	return n
}
