package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"promodraft/internal/config"
)

type SheetsSource struct {
	SpreadsheetID string
	Range         string
	service       *sheets.Service
}

// NewSheetsSource authenticates with an OAuth refresh token when one is
// configured (private sheets) and with GOOGLE_API_KEY otherwise.
func NewSheetsSource(ctx context.Context, cfg config.Config, spreadsheetID, rng string) (*SheetsSource, error) {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(cfg.GoogleRefreshToken) != "":
		if err := cfg.Require("GOOGLE_CLIENT_ID", cfg.GoogleClientID); err != nil {
			return nil, err
		}
		if err := cfg.Require("GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret); err != nil {
			return nil, err
		}
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes:       []string{sheets.SpreadsheetsReadonlyScope},
		}
		ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GoogleRefreshToken})
		opts = append(opts, option.WithTokenSource(ts))
	case strings.TrimSpace(cfg.GoogleAPIKey) != "":
		opts = append(opts, option.WithAPIKey(cfg.GoogleAPIKey))
	default:
		return nil, errors.New("sheets source needs GOOGLE_API_KEY or GOOGLE_REFRESH_TOKEN")
	}
	return NewSheetsSourceWithOptions(ctx, spreadsheetID, rng, opts...)
}

func NewSheetsSourceWithOptions(ctx context.Context, spreadsheetID, rng string, opts ...option.ClientOption) (*SheetsSource, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("sheets source needs a spreadsheet id")
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &SheetsSource{SpreadsheetID: spreadsheetID, Range: rng, service: svc}, nil
}

func (s *SheetsSource) Describe() string {
	return fmt.Sprintf("sheets:%s/%s", s.SpreadsheetID, s.Range)
}

func (s *SheetsSource) Rows(ctx context.Context) ([][]any, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.SpreadsheetID, s.Range).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	out := make([][]any, 0, len(resp.Values))
	for _, row := range resp.Values {
		out = append(out, row)
	}
	return out, nil
}
