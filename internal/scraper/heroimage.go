package scraper

import (
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/teslawire/teslawire/internal/images"
	"github.com/teslawire/teslawire/internal/types"
)

// heroSelectors finds images explicitly tagged as the page's lead visual.
// Tried before any size heuristic.
var heroSelectors = []string{
	"img[class*=featured]",
	"img[class*=hero]",
	"img[class*=main-image]",
	"figure[class*=featured] img",
	"figure[class*=hero] img",
	"div[class*=featured-image] img",
	"div[class*=post-thumbnail] img",
	"header img",
}

// familyHeroSelectors puts a family's known lead-image markup ahead of the
// generic list.
var familyHeroSelectors = map[types.SourceFamily][]string{
	types.FamilyTeslarati: {"div[class*=entry-header] img", "figure[class*=wp-block-post-featured-image] img"},
	types.FamilyElectrek:  {"div[class*=post-hero] img", "picture img"},
}

// heroImage finds the page's representative image: tagged hero elements
// first, then the first sufficiently large image by declared dimensions.
func (s *Scraper) heroImage(doc *goquery.Document, family types.SourceFamily, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	selectors := append(append([]string{}, familyHeroSelectors[family]...), heroSelectors...)
	for _, selector := range selectors {
		if u := firstUsable(doc, selector, base); u != "" {
			return u
		}
	}

	// Generic fallback: first image whose declared dimensions look like
	// content rather than chrome.
	found := ""
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		w := attrInt(sel, "width")
		h := attrInt(sel, "height")
		if w < s.cfg.MinImageWidth || h < s.cfg.MinImageHeight {
			return true
		}
		if u := usableSrc(sel, base); u != "" {
			found = u
			return false
		}
		return true
	})
	return found
}

// firstUsable returns the first usable image source matching the selector.
func firstUsable(doc *goquery.Document, selector string, base *url.URL) string {
	found := ""
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if u := usableSrc(sel, base); u != "" {
			found = u
			return false
		}
		return true
	})
	return found
}

// usableSrc resolves and filters one <img>'s source.
func usableSrc(sel *goquery.Selection, base *url.URL) string {
	src, ok := sel.Attr("src")
	if !ok || src == "" {
		src, _ = sel.Attr("data-src")
	}
	abs := images.Absolutize(src, base)
	if abs == "" || !images.UsableURL(abs) {
		return ""
	}
	return abs
}

// attrInt parses a numeric attribute, tolerating "px" suffixes.
func attrInt(sel *goquery.Selection, name string) int {
	raw, ok := sel.Attr(name)
	if !ok {
		return 0
	}
	raw = trimPx(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func trimPx(s string) string {
	if len(s) > 2 && s[len(s)-2:] == "px" {
		return s[:len(s)-2]
	}
	return s
}
