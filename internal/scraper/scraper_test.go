package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/teslawire/teslawire/internal/config"
	"github.com/teslawire/teslawire/internal/fetcher"
	"github.com/teslawire/teslawire/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testCfg() *config.ScraperConfig {
	return &config.ScraperConfig{
		MinContentChars:   100,
		MinContainerChars: 500,
		MinImageWidth:     400,
		MinImageHeight:    300,
	}
}

type pageFetcher struct {
	pages map[string]string
}

func (f *pageFetcher) Get(_ context.Context, url string) (*fetcher.Response, error) {
	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no canned page for %s", url)
	}
	return &fetcher.Response{URL: url, FinalURL: url, StatusCode: 200, Body: []byte(body)}, nil
}

func (f *pageFetcher) Close() error { return nil }
func (f *pageFetcher) Type() string { return "fake" }

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse test html: %v", err)
	}
	return doc
}

func longText(n int) string {
	return strings.Repeat("Tesla shipped more vehicles this quarter than analysts expected. ", n)
}

func TestExtractPrefersArticleElement(t *testing.T) {
	s := New(&pageFetcher{}, testCfg(), testLogger)
	html := fmt.Sprintf(`<html><body>
		<main><p>%s</p></main>
		<article><p>%s</p></article>
	</body></html>`, longText(5), longText(5))

	result := s.Extract(docFrom(t, html), "https://example.com/post")
	if !result.Success {
		t.Fatalf("expected success, reason: %s", result.Reason)
	}
	if result.Strategy != "article-element" {
		t.Errorf("strategy = %q, want article-element", result.Strategy)
	}
}

func TestExtractNamedContainerNeedsMoreSubstance(t *testing.T) {
	s := New(&pageFetcher{}, testCfg(), testLogger)

	// 200 chars is enough for an <article> but not for a class-named div.
	short := longText(4)
	if len(short) < 200 || len(short) >= 500 {
		t.Fatalf("test text has wrong length %d", len(short))
	}

	html := fmt.Sprintf(`<html><body><div class="entry-content"><p>%s</p></div></body></html>`, short)
	result := s.Extract(docFrom(t, html), "https://example.com/post")
	if result.Success && result.Strategy == "named-container" {
		t.Errorf("named container accepted below its floor")
	}

	html = fmt.Sprintf(`<html><body><div class="entry-content"><p>%s</p></div></body></html>`, longText(10))
	result = s.Extract(docFrom(t, html), "https://example.com/post")
	if !result.Success || result.Strategy != "named-container" {
		t.Errorf("strategy = %q success=%v, want named-container", result.Strategy, result.Success)
	}
}

func TestExtractStrippedBodyFallback(t *testing.T) {
	s := New(&pageFetcher{}, testCfg(), testLogger)
	html := fmt.Sprintf(`<html><body>
		<nav>Home News About</nav>
		<p>%s</p>
		<footer>Copyright</footer>
	</body></html>`, longText(5))

	result := s.Extract(docFrom(t, html), "https://example.com/post")
	if !result.Success {
		t.Fatalf("expected a fallback strategy to succeed, reason: %s", result.Reason)
	}
	if strings.Contains(result.PlainText, "Copyright") {
		t.Errorf("footer text survived: %q", result.PlainText)
	}
}

func TestExtractTooShortIsSoftFailure(t *testing.T) {
	s := New(&pageFetcher{}, testCfg(), testLogger)
	html := `<html><body><article><p>Fifty characters of text is not enough here.</p></article></body></html>`

	result := s.Extract(docFrom(t, html), "https://example.com/post")
	if result.Success {
		t.Fatal("expected Success=false for a page below the content floor")
	}
	if result.Reason == "" {
		t.Error("expected a reason on failure")
	}
}

func TestScrapeReturnsResultNotError(t *testing.T) {
	f := &pageFetcher{pages: map[string]string{
		"https://example.com/thin": `<html><body><p>tiny</p></body></html>`,
	}}
	s := New(f, testCfg(), testLogger)

	result, err := s.Scrape(context.Background(), "https://example.com/thin", types.FamilyGeneric)
	if err != nil {
		t.Fatalf("thin content must be a soft outcome, got error: %v", err)
	}
	if result.Success {
		t.Error("expected Success=false")
	}
}

func TestScrapeFetchFailureIsError(t *testing.T) {
	s := New(&pageFetcher{}, testCfg(), testLogger)

	_, err := s.Scrape(context.Background(), "https://example.com/down", types.FamilyGeneric)
	if err == nil {
		t.Fatal("expected an error for an unreachable page")
	}
	var scrapeErr *types.ScrapeError
	if !errors.As(err, &scrapeErr) {
		t.Errorf("error type = %T", err)
	}
}

func TestHeroImageTaggedSelector(t *testing.T) {
	s := New(&pageFetcher{}, testCfg(), testLogger)
	html := `<html><body>
		<img src="/img/logo.png" class="site-logo">
		<img src="/img/lead.jpg" class="featured-image">
	</body></html>`

	got := s.heroImage(docFrom(t, html), types.FamilyGeneric, "https://example.com/post")
	if got != "https://example.com/img/lead.jpg" {
		t.Errorf("hero = %q", got)
	}
}

func TestHeroImageSizeHeuristic(t *testing.T) {
	s := New(&pageFetcher{}, testCfg(), testLogger)
	html := `<html><body>
		<img src="/img/tiny.jpg" width="100" height="80">
		<img src="/img/big.jpg" width="800px" height="600px">
	</body></html>`

	got := s.heroImage(docFrom(t, html), types.FamilyGeneric, "https://example.com/post")
	if got != "https://example.com/img/big.jpg" {
		t.Errorf("hero = %q", got)
	}
}

func TestHeroImageFamilySelectorWinsFirst(t *testing.T) {
	s := New(&pageFetcher{}, testCfg(), testLogger)
	html := `<html><body>
		<div class="entry-header"><img src="/img/family-lead.jpg"></div>
		<img src="/img/generic-lead.jpg" class="featured-image">
	</body></html>`

	got := s.heroImage(docFrom(t, html), types.FamilyTeslarati, "https://example.com/post")
	if got != "https://example.com/img/family-lead.jpg" {
		t.Errorf("hero = %q", got)
	}
}

func TestHeroImageNone(t *testing.T) {
	s := New(&pageFetcher{}, testCfg(), testLogger)
	html := `<html><body><img src="/img/avatar.png" width="900" height="900"></body></html>`

	if got := s.heroImage(docFrom(t, html), types.FamilyGeneric, "https://example.com/post"); got != "" {
		t.Errorf("expected no hero, got %q", got)
	}
}
