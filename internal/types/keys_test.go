package types

import (
	"testing"
	"time"
)

func TestNormalizeNaturalKey(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trailing slash", "https://example.com/post/", "https://example.com/post"},
		{"query stripped", "https://example.com/post?utm_source=rss&utm_medium=feed", "https://example.com/post"},
		{"fragment stripped", "https://example.com/post#comments", "https://example.com/post"},
		{"host case folded", "https://Example.COM/Post", "https://example.com/Post"},
		{"scheme case folded", "HTTPS://example.com/post", "https://example.com/post"},
		{"non-url guid", "Post-12345/", "post-12345"},
		{"whitespace", "  https://example.com/post  ", "https://example.com/post"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeNaturalKey(tc.in)
			if got != tc.want {
				t.Errorf("NormalizeNaturalKey(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeNaturalKeyCollapsesVariants(t *testing.T) {
	a := NormalizeNaturalKey("https://example.com/post/")
	b := NormalizeNaturalKey("https://example.com/post?utm_source=rss")
	if a != b {
		t.Errorf("variants did not collapse: %q vs %q", a, b)
	}
}

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Tesla Delivers   Record Quarter  ", "tesla delivers record quarter"},
		{"Tesla\tDelivers\nRecord Quarter", "tesla delivers record quarter"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeTitle(tc.in); got != tc.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	got := Slugify("Tesla Delivers Record Quarter!")
	if got != "tesla-delivers-record-quarter" {
		t.Errorf("Slugify = %q", got)
	}
}

func TestRawArticleKeys(t *testing.T) {
	a := &RawArticle{
		NaturalID:   "https://example.com/post/?ref=feed",
		Title:       "  Big   NEWS ",
		PublishedAt: time.Now().UTC(),
	}

	if got := a.NaturalKey(); got != "https://example.com/post" {
		t.Errorf("NaturalKey = %q", got)
	}
	if got := a.TitleKey(); got != "big news" {
		t.Errorf("TitleKey = %q", got)
	}
}
