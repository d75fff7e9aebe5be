package enrich

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/teslawire/teslawire/internal/types"
)

// Structural floor for generated article bodies. Enforced, not advisory.
const (
	minParagraphs = 5
	minHeadings   = 2

	// maxParagraphShare rejects a single oversized paragraph masquerading
	// as full structure.
	maxParagraphShare = 0.7
)

// forbiddenAttrs are stripped from every element even when the model was told
// not to emit them.
var forbiddenAttrs = []string{"style", "class", "id"}

// attributionMarkers identify residual source-attribution paragraphs.
var attributionMarkers = []string{
	"source:", "quelle:", "via ", "originally published",
	"originally appeared", "this article first appeared",
}

// ValidateAndClean checks generated HTML against the structural contract and
// returns the cleaned markup. Any violation is an EnrichmentError; there is
// no repaired or partial output.
func ValidateAndClean(htmlIn string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlIn))
	if err != nil {
		return "", &types.EnrichmentError{Stage: "generate", Reason: "output is not parseable HTML", Err: err}
	}

	// Defensive stripping happens before counting so attribution removal
	// cannot be dodged by styled wrappers.
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range forbiddenAttrs {
			sel.RemoveAttr(attr)
		}
	})

	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		for _, marker := range attributionMarkers {
			if strings.HasPrefix(text, marker) || strings.Contains(text, "first appeared on") {
				sel.Remove()
				return
			}
		}
	})

	paragraphs := doc.Find("p")
	if paragraphs.Length() < minParagraphs {
		return "", &types.EnrichmentError{
			Stage:  "generate",
			Reason: "too few paragraphs",
		}
	}

	if doc.Find("h2, h3").Length() < minHeadings {
		return "", &types.EnrichmentError{
			Stage:  "generate",
			Reason: "too few section headings",
		}
	}

	total := 0
	longest := 0
	paragraphs.Each(func(_ int, sel *goquery.Selection) {
		n := len(strings.TrimSpace(sel.Text()))
		total += n
		if n > longest {
			longest = n
		}
	})
	if total == 0 {
		return "", &types.EnrichmentError{Stage: "generate", Reason: "empty paragraphs"}
	}
	if float64(longest)/float64(total) > maxParagraphShare {
		return "", &types.EnrichmentError{
			Stage:  "generate",
			Reason: "single oversized paragraph dominates the body",
		}
	}

	out, err := doc.Find("body").First().Html()
	if err != nil {
		return "", &types.EnrichmentError{Stage: "generate", Reason: "render failed", Err: err}
	}
	return strings.TrimSpace(out), nil
}
