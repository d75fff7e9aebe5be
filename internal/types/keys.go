package types

import (
	"net/url"
	"strings"

	"github.com/gosimple/slug"
)

// NormalizeNaturalKey canonicalizes a GUID or URL for deduplication:
// case-folded, query and fragment stripped, trailing slash removed. Two feeds
// carrying the same article under "https://example.com/post/" and
// "https://example.com/post?utm_source=rss" collapse to one key.
func NormalizeNaturalKey(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}

	if u, err := url.Parse(id); err == nil && u.Scheme != "" && u.Host != "" {
		u.Scheme = strings.ToLower(u.Scheme)
		u.Host = strings.ToLower(u.Host)
		u.RawQuery = ""
		u.Fragment = ""
		u.Path = strings.TrimRight(u.Path, "/")
		return u.String()
	}

	return strings.ToLower(strings.TrimRight(id, "/"))
}

// NormalizeTitle canonicalizes a title for deduplication: trimmed,
// case-folded, inner whitespace collapsed.
func NormalizeTitle(title string) string {
	fields := strings.Fields(title)
	return strings.ToLower(strings.Join(fields, " "))
}

// Slugify derives a URL slug from a title. Uniqueness is not guaranteed here;
// the orchestrator checks the store and suffixes on collision.
func Slugify(title string) string {
	return slug.Make(title)
}
