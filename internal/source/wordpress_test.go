package source

import (
	"context"
	"testing"
	"time"

	"github.com/teslawire/teslawire/internal/config"
)

const testPosts = `[
  {
    "id": 101,
    "date_gmt": "2024-03-10T09:15:00",
    "link": "https://example.com/model-y-refresh",
    "guid": {"rendered": "https://example.com/?p=101"},
    "title": {"rendered": "Model Y Refresh &#8211; What Changed"},
    "excerpt": {"rendered": "<p>The refresh brings a new interior.</p>"},
    "content": {"rendered": "<p>Full body text here.</p><img src=\"https://example.com/img/interior.jpg\">"},
    "featured_media": 55,
    "_embedded": {
      "wp:featuredmedia": [
        {
          "source_url": "https://example.com/img/full.jpg",
          "media_details": {
            "sizes": {
              "large": {"source_url": "https://example.com/img/large.jpg"},
              "thumbnail": {"source_url": "https://example.com/img/thumb-icon.jpg"}
            }
          }
        }
      ]
    }
  },
  {
    "id": 102,
    "date_gmt": "2024-03-11T18:00:00",
    "link": "https://example.com/charging-news",
    "guid": {"rendered": ""},
    "title": {"rendered": "Charging News"},
    "excerpt": {"rendered": "<p>Short excerpt.</p>"},
    "content": {"rendered": "<p>Body.</p>"},
    "featured_media": 77
  },
  {
    "id": 103,
    "date_gmt": "not-a-date",
    "link": "https://example.com/broken",
    "guid": {"rendered": ""},
    "title": {"rendered": "Broken Date"},
    "excerpt": {"rendered": ""},
    "content": {"rendered": ""}
  }
]`

const testMedia77 = `{
  "source_url": "https://example.com/img/charger-full.jpg",
  "media_details": {
    "sizes": {
      "medium_large": {"source_url": "https://example.com/img/charger-ml.jpg"}
    }
  }
}`

func wpCfg() config.SourceConfig {
	return config.SourceConfig{
		Name:   "notateslaapp",
		Kind:   "wordpress",
		Family: "wordpress",
		URLs:   []string{"https://example.com"},
	}
}

func wpPages() map[string]string {
	return map[string]string{
		"https://example.com/wp-json/wp/v2/posts?_embed=1&per_page=20": testPosts,
		"https://example.com/wp-json/wp/v2/media/77":                   testMedia77,
	}
}

func TestWordPressFetch(t *testing.T) {
	f := newFakeFetcher(wpPages())
	a := NewWordPressAdapter(wpCfg(), f, testLogger)

	articles, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}

	// The post with the unparseable date_gmt is rejected.
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "Model Y Refresh – What Changed" {
		t.Errorf("entities not unescaped: %q", first.Title)
	}
	if first.NaturalID != "https://example.com/?p=101" {
		t.Errorf("naturalID = %q", first.NaturalID)
	}
	if first.Summary != "The refresh brings a new interior." {
		t.Errorf("excerpt not flattened: %q", first.Summary)
	}

	want := time.Date(2024, 3, 10, 9, 15, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Errorf("publishedAt = %v, want %v", first.PublishedAt, want)
	}
}

func TestWordPressEmbeddedFeaturedImage(t *testing.T) {
	f := newFakeFetcher(wpPages())
	a := NewWordPressAdapter(wpCfg(), f, testLogger)

	articles, _ := a.Fetch(context.Background())

	// "large" wins over the raw source_url; the icon-named thumbnail is not
	// in the preference list at all.
	if articles[0].ImageURL != "https://example.com/img/large.jpg" {
		t.Errorf("featured image = %q", articles[0].ImageURL)
	}
}

func TestWordPressMediaLookupFallback(t *testing.T) {
	f := newFakeFetcher(wpPages())
	a := NewWordPressAdapter(wpCfg(), f, testLogger)

	articles, _ := a.Fetch(context.Background())

	// Post 102 has no embed, so the media endpoint resolves the image.
	if articles[1].ImageURL != "https://example.com/img/charger-ml.jpg" {
		t.Errorf("media lookup image = %q", articles[1].ImageURL)
	}
	if f.calls["https://example.com/wp-json/wp/v2/media/77"] != 1 {
		t.Errorf("media endpoint called %d times", f.calls["https://example.com/wp-json/wp/v2/media/77"])
	}
}

func TestWordPressMediaLookupCached(t *testing.T) {
	f := newFakeFetcher(wpPages())
	a := NewWordPressAdapter(wpCfg(), f, testLogger)

	if _, err := a.Fetch(context.Background()); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := a.Fetch(context.Background()); err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if got := f.calls["https://example.com/wp-json/wp/v2/media/77"]; got != 1 {
		t.Errorf("media endpoint called %d times, want 1 (cached)", got)
	}
}

func TestWordPressGUIDFallsBackToLink(t *testing.T) {
	f := newFakeFetcher(wpPages())
	a := NewWordPressAdapter(wpCfg(), f, testLogger)

	articles, _ := a.Fetch(context.Background())
	if articles[1].NaturalID != "https://example.com/charging-news" {
		t.Errorf("naturalID = %q, want the link", articles[1].NaturalID)
	}
}
