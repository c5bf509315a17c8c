package catalog

import (
	"bytes"
	"context"
	"os"
	"regexp"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"promodraft/internal/util"
)

var rePriceTail = regexp.MustCompile(`(?i)^(.*?)[\s:|;-]+((?:[$€£]|usd\s?)?\d[\d.,]*(?:\s?(?:[$€£]|usd|l\.l\.))?)$`)

// PDFSource reads a printed price list. Every text line becomes a row of
// [name, price] when it ends in a price-like token, and [line] otherwise.
type PDFSource struct {
	Path string
}

func (s *PDFSource) Describe() string { return "pdf:" + s.Path }

func (s *PDFSource) Rows(_ context.Context) ([][]any, error) {
	content, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	out := [][]any{}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
			line = util.NormalizeSpaces(line)
			if line == "" {
				continue
			}
			out = append(out, splitPriceLine(line))
		}
	}
	return out, nil
}

func splitPriceLine(line string) []any {
	m := rePriceTail.FindStringSubmatch(line)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return []any{line}
	}
	return []any{strings.TrimSpace(m[1]), strings.TrimSpace(m[2])}
}
