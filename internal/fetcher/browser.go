package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"github.com/teslawire/teslawire/internal/config"
)

// BrowserFetcher implements Fetcher with a headless browser via Rod. Used for
// scrape targets that serve empty shells or block plain HTTP clients outright;
// selected with fetcher.type: browser.
type BrowserFetcher struct {
	browser *rod.Browser
	cfg     *config.FetcherConfig
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewBrowserFetcher launches a headless Chromium and connects to it.
func NewBrowserFetcher(cfg *config.FetcherConfig, logger *slog.Logger) (*BrowserFetcher, error) {
	launchURL, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &BrowserFetcher{
		browser: browser,
		cfg:     cfg,
		logger:  logger.With("component", "browser_fetcher"),
	}, nil
}

// Get navigates a stealth page to the URL and returns the rendered HTML.
func (f *BrowserFetcher) Get(ctx context.Context, url string) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	page, err := stealth.Page(f.browser)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("create page: %w", err)}
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(f.cfg.RequestTimeout)

	if err := page.Navigate(url); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("navigate: %w", err), Retryable: true}
	}
	if err := page.WaitLoad(); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("wait load: %w", err), Retryable: true}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("read html: %w", err)}
	}

	info, err := page.Info()
	finalURL := url
	if err == nil && info.URL != "" {
		finalURL = info.URL
	}

	f.logger.Debug("browser fetch complete", "url", url, "size", len(html))

	return &Response{
		URL:         url,
		FinalURL:    finalURL,
		StatusCode:  http.StatusOK,
		Body:        []byte(html),
		ContentType: "text/html",
	}, nil
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() error {
	return f.browser.Close()
}

// Type returns the fetcher type identifier.
func (f *BrowserFetcher) Type() string {
	return "browser"
}

// New creates the fetcher named by the config.
func New(cfg *config.FetcherConfig, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Type {
	case "browser":
		return NewBrowserFetcher(cfg, logger)
	default:
		return NewHTTPFetcher(cfg, logger)
	}
}
