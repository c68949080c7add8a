package research

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher recovers full page text for results the provider returned without
// raw content. Enrichment is best-effort: a page that cannot be fetched or
// parsed leaves its result unchanged.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
	log        *slog.Logger
}

func NewFetcher(timeout time.Duration, maxBytes int64, log *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 2 << 20
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxBytes,
		log:        log,
	}
}

// Enrich returns a copy of results where every entry that lacked raw content
// and points at a fetchable URL carries the page's paragraph text instead.
func (f *Fetcher) Enrich(ctx context.Context, results []SearchResult) []SearchResult {
	out := make([]SearchResult, len(results))
	copy(out, results)

	for i := range out {
		if strings.TrimSpace(out[i].RawContent) != "" {
			continue
		}
		if !strings.HasPrefix(out[i].URL, "http://") && !strings.HasPrefix(out[i].URL, "https://") {
			continue
		}

		text, err := f.fetchText(ctx, out[i].URL)
		if err != nil {
			f.log.Warn("raw content fetch failed", "url", out[i].URL, "error", err)
			continue
		}
		// Only an upgrade counts: never replace a longer snippet with a
		// thinner scrape.
		if len(text) > len(out[i].Content) {
			out[i].RawContent = text
		}
	}
	return out
}

func (f *Fetcher) fetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "document-writer/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	doc.Find("script, style, nav, footer, header").Remove()

	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return "", fmt.Errorf("no paragraph text found")
	}
	return strings.Join(paragraphs, "\n\n"), nil
}
