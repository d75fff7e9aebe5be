// Package images harvests content images from article HTML and uploads them
// to the asset store, producing the URL remapping table the enrichment pass
// rewrites the body with.
package images

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// excludedSubstrings marks decorative or iconographic image URLs that are
// never worth importing.
var excludedSubstrings = []string{
	"icon", "avatar", "logo", "watermark", "placeholder",
	"favicon", "badge", "sprite", "emoji", "gravatar",
	"spacer", "pixel", "1x1",
}

// UsableURL reports whether an image URL looks like real content rather than
// site chrome. Purely a filename heuristic.
func UsableURL(raw string) bool {
	if raw == "" {
		return false
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "data:") {
		return false
	}
	for _, sub := range excludedSubstrings {
		if strings.Contains(lower, sub) {
			return false
		}
	}
	return true
}

// Collect returns the ordered set of absolute, usable image URLs found in the
// HTML. Relative and protocol-relative sources are resolved against baseURL;
// duplicates keep their first position.
func Collect(html, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]struct{})
	var urls []string

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			// Lazy-loaded images keep the real source in data-src.
			src, _ = sel.Attr("data-src")
		}
		src = strings.TrimSpace(src)
		if src == "" {
			return
		}

		abs := Absolutize(src, base)
		if abs == "" || !UsableURL(abs) {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		urls = append(urls, abs)
	})

	return urls
}

// Absolutize resolves an image source against a base URL. Protocol-relative
// sources inherit the base scheme (https when the base is unknown). Returns
// "" for anything that does not end up http(s).
func Absolutize(src string, base *url.URL) string {
	if strings.HasPrefix(src, "//") {
		scheme := "https"
		if base != nil && base.Scheme != "" {
			scheme = base.Scheme
		}
		src = scheme + ":" + src
	}

	u, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
