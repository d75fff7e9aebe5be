package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/teslawire/teslawire/internal/config"
	"github.com/teslawire/teslawire/internal/fetcher"
	"github.com/teslawire/teslawire/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeFetcher serves canned bodies by URL.
type fakeFetcher struct {
	pages map[string]string
	calls map[string]int
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, calls: make(map[string]int)}
}

func (f *fakeFetcher) Get(_ context.Context, url string) (*fetcher.Response, error) {
	f.calls[url]++
	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no canned page for %s", url)
	}
	return &fetcher.Response{
		URL:        url,
		FinalURL:   url,
		StatusCode: 200,
		Body:       []byte(body),
	}, nil
}

func (f *fakeFetcher) Close() error { return nil }
func (f *fakeFetcher) Type() string { return "fake" }

func TestBuildAdapters(t *testing.T) {
	cfgs := []config.SourceConfig{
		{Name: "teslarati", Kind: "rss", Family: "teslarati", URLs: []string{"https://example.com/feed"}},
		{Name: "notateslaapp", Kind: "wordpress", Family: "wordpress", URLs: []string{"https://example.com"}},
	}

	adapters, err := Build(cfgs, newFakeFetcher(nil), testLogger)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if len(adapters) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(adapters))
	}
	if adapters[0].Name() != types.SourceTeslarati {
		t.Errorf("adapter 0 name = %q", adapters[0].Name())
	}
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	cfgs := []config.SourceConfig{
		{Name: "x", Kind: "scrape", URLs: []string{"https://example.com"}},
	}
	if _, err := Build(cfgs, newFakeFetcher(nil), testLogger); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestDedupByNaturalKey(t *testing.T) {
	articles := []*types.RawArticle{
		{NaturalID: "https://example.com/a/", Title: "A"},
		{NaturalID: "https://example.com/a?utm_source=rss", Title: "A again"},
		{NaturalID: "https://example.com/b", Title: "B"},
	}

	out := dedupByNaturalKey(articles)
	if len(out) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(out))
	}
	if out[0].Title != "A" || out[1].Title != "B" {
		t.Errorf("wrong survivors: %q, %q", out[0].Title, out[1].Title)
	}
}
