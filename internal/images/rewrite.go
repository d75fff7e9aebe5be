package images

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/teslawire/teslawire/internal/assets"
)

// bodyImageWidth is the transform width for inline content images.
const bodyImageWidth = 1200

// Rewrite replaces every mapped image source in the HTML with its CDN URL
// and returns the rewritten markup plus the asset refs now embedded in it.
// Sources without a mapping keep their original URL.
func Rewrite(htmlIn string, mapping map[string]string, store assets.Store) (string, []string) {
	if len(mapping) == 0 {
		return htmlIn, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlIn))
	if err != nil {
		return htmlIn, nil
	}

	var refs []string
	seen := make(map[string]struct{})

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok {
			return
		}
		ref, mapped := mapping[src]
		if !mapped {
			return
		}
		sel.SetAttr("src", store.URL(ref, bodyImageWidth, 0, "webp"))
		sel.RemoveAttr("srcset")
		sel.RemoveAttr("data-src")
		if _, dup := seen[ref]; !dup {
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	})

	out, err := doc.Find("body").First().Html()
	if err != nil {
		return htmlIn, nil
	}
	return out, refs
}
