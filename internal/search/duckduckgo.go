package search

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"promodraft/internal"
	"promodraft/internal/config"
	"promodraft/internal/fetch"
	"promodraft/internal/util"
)

type Searcher struct {
	client     *fetch.Client
	endpoint   string
	maxResults int
	maxChars   int
	log        *zap.Logger
}

func NewSearcher(cfg config.Config, client *fetch.Client, log *zap.Logger) *Searcher {
	if log == nil {
		log = zap.NewNop()
	}
	maxResults := cfg.SearchMaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Searcher{
		client:     client,
		endpoint:   cfg.SearchEndpoint,
		maxResults: maxResults,
		maxChars:   cfg.SearchMaxChars,
		log:        log,
	}
}

// Specs gathers result snippets about a product from the DuckDuckGo HTML
// endpoint and folds them into one text block for the prompt.
func (s *Searcher) Specs(ctx context.Context, name string) (internal.SpecSheet, error) {
	query := strings.TrimSpace(name) + " specifications"
	sheet := internal.SpecSheet{Query: query}

	body, err := s.client.Get(ctx, s.endpoint, map[string]string{"q": query}, map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
	})
	if err != nil {
		return sheet, fmt.Errorf("search %q: %w", query, err)
	}

	results, err := ParseResults(body, s.maxResults)
	if err != nil {
		return sheet, fmt.Errorf("parse search results: %w", err)
	}
	sheet.Results = results
	sheet.Text = util.Truncate(joinSnippets(results), s.maxChars)
	s.log.Debug("search done", zap.String("query", query), zap.Int("results", len(results)), zap.Int("chars", len(sheet.Text)))
	return sheet, nil
}

func ParseResults(html []byte, max int) ([]internal.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	out := []internal.SearchResult{}
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if max > 0 && len(out) >= max {
			return false
		}
		if sel.HasClass("result--ad") {
			return true
		}
		link := sel.Find("a.result__a").First()
		title := util.NormalizeSpaces(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return true
		}
		out = append(out, internal.SearchResult{
			Title:   title,
			URL:     unwrapRedirect(href),
			Snippet: util.NormalizeSpaces(sel.Find(".result__snippet").First().Text()),
		})
		return true
	})
	return out, nil
}

func unwrapRedirect(href string) string {
	if !strings.Contains(href, "duckduckgo.com/l/") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func joinSnippets(results []internal.SearchResult) string {
	var b strings.Builder
	for _, r := range results {
		if r.Snippet == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", r.Title, r.Snippet)
	}
	return strings.TrimSpace(b.String())
}
