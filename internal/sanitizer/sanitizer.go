// Package sanitizer strips source-site chrome from extracted article HTML.
// Removal runs as an ordered list of named rules per source family. The
// contract is best-effort: remove what can be identified, pass the rest
// through unchanged, and never fail: any parse anomaly degrades to a no-op.
package sanitizer

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/teslawire/teslawire/internal/types"
)

// Rule is one named transform over the parsed document.
type Rule struct {
	Name  string
	Apply func(doc *goquery.Document, opts Options)
}

// Options carries per-article context into the rules.
type Options struct {
	// StripLinks drops every outbound hyperlink (text kept, href dropped)
	// and removes bare URL text. A licensing policy of some sources, so it
	// is set per configured source rather than per family.
	StripLinks bool

	// HeroImageURL is the image already rendered in the page header; its
	// duplicate inside the body is removed.
	HeroImageURL string
}

// Sanitizer applies the family rule sets.
type Sanitizer struct {
	rulesets map[types.SourceFamily][]Rule
	logger   *slog.Logger
}

// New creates a Sanitizer with the built-in family rule sets.
func New(logger *slog.Logger) *Sanitizer {
	return &Sanitizer{
		rulesets: familyRules(),
		logger:   logger.With("component", "sanitizer"),
	}
}

// Sanitize runs the structural removals for the family over the HTML. On any
// internal anomaly the input is returned unchanged.
func (s *Sanitizer) Sanitize(htmlIn string, family types.SourceFamily, opts Options) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlIn))
	if err != nil {
		s.logger.Warn("sanitize parse failed, passing through", "error", err)
		return htmlIn
	}

	for _, rule := range universalPreRules {
		rule.Apply(doc, opts)
	}
	for _, rule := range s.rulesets[family] {
		rule.Apply(doc, opts)
	}
	if opts.StripLinks {
		stripLinksRule.Apply(doc, opts)
	}
	for _, rule := range universalPostRules {
		rule.Apply(doc, opts)
	}

	out, err := doc.Find("body").First().Html()
	if err != nil {
		s.logger.Warn("sanitize render failed, passing through", "error", err)
		return htmlIn
	}
	return out
}

// removeAll is the common rule body: delete every match of each selector.
func removeAll(selectors ...string) func(*goquery.Document, Options) {
	return func(doc *goquery.Document, _ Options) {
		for _, selector := range selectors {
			doc.Find(selector).Remove()
		}
	}
}

// truncateFrom removes the matched node and everything after it in document
// order. Used for "related stories" blocks, which mark the true end of
// article content.
func truncateFrom(sel *goquery.Selection) {
	if sel.Length() == 0 {
		return
	}
	node := sel.Get(0)
	for n := node; n != nil && n.Parent != nil; n = n.Parent {
		for sib := n.NextSibling; sib != nil; {
			next := sib.NextSibling
			n.Parent.RemoveChild(sib)
			sib = next
		}
	}
	node.Parent.RemoveChild(node)
}

// removeComments walks the tree and deletes comment nodes.
func removeComments(doc *goquery.Document, _ Options) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == html.CommentNode {
				n.RemoveChild(c)
			} else {
				walk(c)
			}
			c = next
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
}

// stripBareURLs deletes URL-looking runs from text nodes. Only applied when
// links are being stripped, so leftover "https://…" fragments do not survive
// the removed anchors.
func stripBareURLs(doc *goquery.Document) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				c.Data = removeURLRuns(c.Data)
				continue
			}
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
}

// removeURLRuns drops whitespace-delimited tokens that start with a URL
// scheme or "www.".
func removeURLRuns(text string) string {
	if !strings.Contains(text, "http") && !strings.Contains(text, "www.") {
		return text
	}
	var buf bytes.Buffer
	for _, field := range strings.Fields(text) {
		lower := strings.ToLower(field)
		if strings.HasPrefix(lower, "http://") ||
			strings.HasPrefix(lower, "https://") ||
			strings.HasPrefix(lower, "www.") {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(field)
	}
	// Preserve leading/trailing space so adjacent inline text does not fuse.
	out := buf.String()
	if strings.HasPrefix(text, " ") && !strings.HasPrefix(out, " ") {
		out = " " + out
	}
	if strings.HasSuffix(text, " ") && !strings.HasSuffix(out, " ") {
		out += " "
	}
	return out
}
