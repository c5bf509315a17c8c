package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"promodraft/internal"
	"promodraft/internal/config"
	"promodraft/internal/fetch"
)

var ErrSourceUnavailable = errors.New("catalog source unavailable")

var reSheetID = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

type Source interface {
	Rows(ctx context.Context) ([][]any, error)
	Describe() string
}

// Load reads every row of src and normalizes it. When the source itself
// fails the result is an empty slice together with an error wrapping
// ErrSourceUnavailable, so callers can treat "no items" the same way for an
// empty sheet and an unreachable one.
func Load(ctx context.Context, src Source, layout internal.Layout, log *zap.Logger) ([]internal.CatalogItem, error) {
	if log == nil {
		log = zap.NewNop()
	}

	rows, err := src.Rows(ctx)
	if err != nil {
		log.Error("catalog load failed", zap.String("source", src.Describe()), zap.Error(err))
		return []internal.CatalogItem{}, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, src.Describe(), err)
	}

	items := Normalize(rows, layout, log)
	log.Info("catalog loaded", zap.String("source", src.Describe()), zap.Int("rows", len(rows)), zap.Int("items", len(items)))
	return items, nil
}

// OpenSource resolves a source spec: "sheets:<id>[/<range>]", an http(s) URL
// to a CSV export (Google Sheets edit links are rewritten), or a local
// .xlsx/.csv/.pdf path. An empty spec falls back to CATALOG_SOURCE.
func OpenSource(ctx context.Context, cfg config.Config, client *fetch.Client, spec string) (Source, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = strings.TrimSpace(cfg.CatalogSource)
	}
	if spec == "" {
		return nil, errors.New("no catalog source configured (CATALOG_SOURCE)")
	}

	lower := strings.ToLower(spec)
	switch {
	case strings.HasPrefix(lower, "sheets:"):
		id, rng, _ := strings.Cut(spec[len("sheets:"):], "/")
		if rng == "" {
			rng = defaultRange(cfg)
		}
		return NewSheetsSource(ctx, cfg, id, rng)
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		return &CSVSource{URL: CSVExportURL(spec), client: client}, nil
	}

	switch strings.ToLower(filepath.Ext(spec)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return &XLSXSource{Path: spec, Sheet: cfg.CatalogSheet}, nil
	case ".csv":
		return &CSVSource{Path: spec}, nil
	case ".pdf":
		return &PDFSource{Path: spec}, nil
	default:
		return nil, fmt.Errorf("unsupported catalog source: %s", spec)
	}
}

// CSVExportURL rewrites a Google Sheets link into its CSV export form. Other
// URLs are returned unchanged.
func CSVExportURL(raw string) string {
	m := reSheetID.FindStringSubmatch(raw)
	if m == nil || strings.Contains(raw, "/export") || strings.Contains(raw, "/pub") {
		return raw
	}

	gid := ""
	if u, err := url.Parse(raw); err == nil {
		gid = u.Query().Get("gid")
		if gid == "" && strings.HasPrefix(u.Fragment, "gid=") {
			gid = strings.TrimPrefix(u.Fragment, "gid=")
		}
	}

	out := "https://docs.google.com/spreadsheets/d/" + m[1] + "/export?format=csv"
	if gid != "" {
		out += "&gid=" + gid
	}
	return out
}

func defaultRange(cfg config.Config) string {
	if strings.TrimSpace(cfg.CatalogSheet) != "" {
		return cfg.CatalogSheet
	}
	return "A:Z"
}
