// Package scraper extracts full article text from source pages. Extraction
// walks an ordered strategy list; the first strategy yielding non-trivial
// content wins. Total failure is a soft outcome: callers fall back to the
// adapter-supplied summary.
package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/teslawire/teslawire/internal/config"
	"github.com/teslawire/teslawire/internal/fetcher"
	"github.com/teslawire/teslawire/internal/types"
)

// namedContainerSelectors matches the content wrappers publications commonly
// use. These require more substance than the other strategies because class
// names like "content" also decorate sidebars and teasers.
var namedContainerSelectors = []string{
	"div[class*=article-content]",
	"div[class*=entry-content]",
	"div[class*=post-content]",
	"div[class*=article-body]",
	"div[class*=post-body]",
	"div[itemprop=articleBody]",
	"div[id*=article-content]",
	"div[id*=post-content]",
	"div[class*=content]",
}

// Result is the outcome of scraping one article URL.
type Result struct {
	PlainText    string
	HTML         string
	HeroImageURL string
	Strategy     string
	Success      bool
	Reason       string
}

// Scraper fetches article pages and runs the extraction chain.
type Scraper struct {
	fetcher fetcher.Fetcher
	cfg     *config.ScraperConfig
	logger  *slog.Logger
}

// strategy is one step of the extraction chain.
type strategy struct {
	name     string
	minChars func(s *Scraper) int
	extract  func(s *Scraper, doc *goquery.Document, pageURL string) (html, text string)
}

var strategies = []strategy{
	{
		name:     "article-element",
		minChars: func(s *Scraper) int { return s.cfg.MinContentChars },
		extract: func(s *Scraper, doc *goquery.Document, _ string) (string, string) {
			return selectionContent(doc.Find("article").First())
		},
	},
	{
		name:     "named-container",
		minChars: func(s *Scraper) int { return s.cfg.MinContainerChars },
		extract: func(s *Scraper, doc *goquery.Document, _ string) (string, string) {
			for _, selector := range namedContainerSelectors {
				html, text := selectionContent(doc.Find(selector).First())
				if len(text) >= s.cfg.MinContainerChars {
					return html, text
				}
			}
			return "", ""
		},
	},
	{
		name:     "main-element",
		minChars: func(s *Scraper) int { return s.cfg.MinContentChars },
		extract: func(s *Scraper, doc *goquery.Document, _ string) (string, string) {
			return selectionContent(doc.Find("main").First())
		},
	},
	{
		name:     "readability",
		minChars: func(s *Scraper) int { return s.cfg.MinContentChars },
		extract: func(s *Scraper, doc *goquery.Document, pageURL string) (string, string) {
			raw, err := doc.Html()
			if err != nil {
				return "", ""
			}
			u, _ := url.Parse(pageURL)
			article, err := readability.FromReader(strings.NewReader(raw), u)
			if err != nil {
				return "", ""
			}
			return article.Content, collapseSpace(article.TextContent)
		},
	},
	{
		name:     "stripped-body",
		minChars: func(s *Scraper) int { return s.cfg.MinContentChars },
		extract: func(s *Scraper, doc *goquery.Document, _ string) (string, string) {
			body := doc.Find("body").First()
			if body.Length() == 0 {
				return "", ""
			}
			clone := body.Clone()
			clone.Find("nav, header, footer, aside, script, style").Remove()
			return selectionContent(clone)
		},
	},
}

// New creates a Scraper.
func New(f fetcher.Fetcher, cfg *config.ScraperConfig, logger *slog.Logger) *Scraper {
	return &Scraper{
		fetcher: f,
		cfg:     cfg,
		logger:  logger.With("component", "scraper"),
	}
}

// Scrape fetches the page and extracts its main content region and hero
// image. A Result with Success=false is not an error: the page had nothing
// extractable and the caller degrades to the feed summary.
func (s *Scraper) Scrape(ctx context.Context, pageURL string, family types.SourceFamily) (*Result, error) {
	resp, err := s.fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, &types.ScrapeError{URL: pageURL, Err: err}
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ScrapeError{URL: pageURL, Err: err}
	}

	result := s.Extract(doc, pageURL)
	result.HeroImageURL = s.heroImage(doc, family, pageURL)

	if result.Success {
		s.logger.Debug("scrape complete",
			"url", pageURL,
			"strategy", result.Strategy,
			"chars", len(result.PlainText),
			"hero", result.HeroImageURL != "",
		)
	} else {
		s.logger.Warn("no extractable content", "url", pageURL)
	}

	return result, nil
}

// Extract runs the strategy chain over a parsed document.
func (s *Scraper) Extract(doc *goquery.Document, pageURL string) *Result {
	for _, st := range strategies {
		html, text := st.extract(s, doc, pageURL)
		if len(text) >= st.minChars(s) {
			return &Result{
				PlainText: text,
				HTML:      html,
				Strategy:  st.name,
				Success:   true,
			}
		}
	}
	return &Result{
		Success: false,
		Reason:  "no extraction strategy yielded enough content",
	}
}

// selectionContent returns the inner HTML and collapsed text of a selection.
func selectionContent(sel *goquery.Selection) (string, string) {
	if sel == nil || sel.Length() == 0 {
		return "", ""
	}
	html, err := sel.Html()
	if err != nil {
		return "", ""
	}
	return html, collapseSpace(sel.Text())
}

// collapseSpace trims and squeezes runs of whitespace to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
