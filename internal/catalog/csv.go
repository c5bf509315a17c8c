package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"strings"

	"promodraft/internal/fetch"
)

// CSVSource reads a CSV document from a URL (through the shared fetch client)
// or from a local path.
type CSVSource struct {
	URL    string
	Path   string
	client *fetch.Client
}

func NewCSVSource(url string, client *fetch.Client) *CSVSource {
	return &CSVSource{URL: url, client: client}
}

func (s *CSVSource) Describe() string {
	if s.URL != "" {
		return "csv:" + s.URL
	}
	return "csv:" + s.Path
}

func (s *CSVSource) Rows(ctx context.Context) ([][]any, error) {
	var blob []byte
	var err error
	switch {
	case s.URL != "":
		if s.client == nil {
			return nil, errors.New("csv source has no http client")
		}
		blob, err = s.client.Get(ctx, s.URL, nil, map[string]string{"Accept": "text/csv,*/*;q=0.5"})
	case s.Path != "":
		blob, err = os.ReadFile(s.Path)
	default:
		return nil, errors.New("csv source has neither url nor path")
	}
	if err != nil {
		return nil, err
	}
	return parseCSV(blob)
}

func parseCSV(blob []byte) ([][]any, error) {
	blob = bytes.TrimPrefix(blob, []byte("\xef\xbb\xbf"))
	head := strings.ToLower(strings.TrimSpace(string(blob[:min(len(blob), 256)])))
	if strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") {
		return nil, errors.New("expected csv, got an html page (is the sheet shared publicly?)")
	}

	r := csv.NewReader(bytes.NewReader(blob))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	out := make([][]any, 0, len(records))
	for _, rec := range records {
		cells := make([]any, 0, len(rec))
		for _, c := range rec {
			cells = append(cells, c)
		}
		out = append(out, cells)
	}
	return out, nil
}
