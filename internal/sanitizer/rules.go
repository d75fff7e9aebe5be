package sanitizer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/teslawire/teslawire/internal/types"
)

// relatedHeadingKeywords mark headings that open a "related stories" section.
// Everything from the first match onward is cut: these sections sit at the
// true end of article content.
var relatedHeadingKeywords = []string{
	"related", "more stories", "read more", "you might also like",
	"recommended for you", "trending now",
}

// universalPreRules run before any family rules.
var universalPreRules = []Rule{
	{Name: "remove-scripts", Apply: removeAll("script", "style", "noscript")},
	{Name: "remove-comments", Apply: removeComments},
	{Name: "remove-embeds", Apply: removeAll("iframe", "form", "ins")},
}

// universalPostRules run after the family rules.
var universalPostRules = []Rule{
	{
		Name: "remove-captions",
		Apply: removeAll(
			"figcaption",
			"span[class*=caption]", "div[class*=caption]",
			"span[class*=credit]", "div[class*=credit]",
		),
	},
	{
		// The title is rendered separately by the caller; a body-level h1
		// would double it.
		Name:  "remove-duplicate-h1",
		Apply: removeAll("h1"),
	},
	{
		Name: "remove-duplicate-hero",
		Apply: func(doc *goquery.Document, opts Options) {
			if opts.HeroImageURL == "" {
				return
			}
			doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
				if src, _ := sel.Attr("src"); src == opts.HeroImageURL {
					if fig := sel.Closest("figure"); fig.Length() > 0 {
						fig.Remove()
						return
					}
					sel.Remove()
				}
			})
		},
	},
}

// stripLinksRule replaces every anchor with its text and removes bare URL
// text left behind in the copy.
var stripLinksRule = Rule{
	Name: "strip-links",
	Apply: func(doc *goquery.Document, _ Options) {
		doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
			sel.ReplaceWithHtml(sel.Text())
		})
		stripBareURLs(doc)
	},
}

// truncateAtRelated cuts the document at the first element matching a
// selector or a heading containing one of the keywords.
func truncateAtRelated(selectors ...string) func(*goquery.Document, Options) {
	return func(doc *goquery.Document, _ Options) {
		for _, selector := range selectors {
			if sel := doc.Find(selector).First(); sel.Length() > 0 {
				truncateFrom(sel)
				return
			}
		}
		doc.Find("h2, h3, h4").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := strings.ToLower(strings.TrimSpace(sel.Text()))
			for _, kw := range relatedHeadingKeywords {
				if strings.Contains(text, kw) {
					truncateFrom(sel)
					return false
				}
			}
			return true
		})
	}
}

// familyRules builds the per-family ordered rule sets.
func familyRules() map[types.SourceFamily][]Rule {
	wordpressCommon := []Rule{
		{Name: "remove-ads", Apply: removeAll(
			"div[class*=advert]", "div[id*=advert]",
			"div[class*=ad-container]", "div[class*=ad-wrapper]", "aside[class*=ad]",
		)},
		{Name: "remove-share-widgets", Apply: removeAll(
			"div[class*=sharedaddy]", "div[class*=share-buttons]",
			"div[class*=social-share]", "ul[class*=share]",
		)},
		{Name: "remove-author-bio", Apply: removeAll(
			"div[class*=author-bio]", "div[class*=author-box]", "section[class*=author]",
		)},
		{Name: "truncate-related", Apply: truncateAtRelated(
			"div[class*=jp-relatedposts]", "div[class*=related-posts]",
			"div[id*=related]", "section[class*=related]",
		)},
	}

	teslarati := append([]Rule{
		{Name: "remove-newsletter", Apply: removeAll(
			"div[class*=newsletter]", "div[class*=subscribe]",
		)},
	}, wordpressCommon...)

	electrek := append([]Rule{
		{Name: "remove-affiliate-note", Apply: removeAll(
			"div[class*=affiliate]", "p[class*=disclaimer]",
		)},
		{Name: "remove-video-player", Apply: removeAll(
			"div[class*=video-player]", "div[class*=jwplayer]",
		)},
	}, wordpressCommon...)

	return map[types.SourceFamily][]Rule{
		types.FamilyTeslarati: teslarati,
		types.FamilyWordPress: wordpressCommon,
		types.FamilyElectrek:  electrek,
		types.FamilyGeneric:   wordpressCommon,
	}
}
