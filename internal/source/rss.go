package source

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/teslawire/teslawire/internal/config"
	"github.com/teslawire/teslawire/internal/fetcher"
	"github.com/teslawire/teslawire/internal/images"
	"github.com/teslawire/teslawire/internal/types"
)

// RSSAdapter pulls one publication's RSS feeds. A publication may expose
// several category feeds; items are merged and deduplicated by natural key.
type RSSAdapter struct {
	cfg     config.SourceConfig
	fetcher fetcher.Fetcher
	parser  *gofeed.Parser
	logger  *slog.Logger
}

// NewRSSAdapter creates an adapter for the configured RSS source.
func NewRSSAdapter(cfg config.SourceConfig, f fetcher.Fetcher, logger *slog.Logger) *RSSAdapter {
	return &RSSAdapter{
		cfg:     cfg,
		fetcher: f,
		parser:  gofeed.NewParser(),
		logger:  logger.With("component", "rss_adapter", "source", cfg.Name),
	}
}

// Name returns the publication tag.
func (a *RSSAdapter) Name() types.SourceName {
	return types.SourceName(a.cfg.Name)
}

// Fetch downloads and parses every configured feed URL. A feed that fails to
// download or parse is logged and skipped; the remaining feeds still count.
func (a *RSSAdapter) Fetch(ctx context.Context) ([]*types.RawArticle, error) {
	var articles []*types.RawArticle
	var lastErr error

	for _, feedURL := range a.cfg.URLs {
		resp, err := a.fetcher.Get(ctx, feedURL)
		if err != nil {
			lastErr = &types.SourceFetchError{Source: a.Name(), URL: feedURL, Err: err}
			a.logger.Warn("feed fetch failed", "url", feedURL, "error", err)
			continue
		}

		feed, err := a.parser.ParseString(string(resp.Body))
		if err != nil {
			lastErr = &types.ParseError{Source: a.Name(), Err: err}
			a.logger.Warn("feed parse failed", "url", feedURL, "error", err)
			continue
		}

		for _, item := range feed.Items {
			article, err := a.toArticle(item)
			if err != nil {
				a.logger.Warn("feed item dropped", "url", feedURL, "title", item.Title, "error", err)
				continue
			}
			articles = append(articles, article)
		}
	}

	if len(articles) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return dedupByNaturalKey(articles), nil
}

// toArticle normalizes one feed item. Items whose publish date does not parse
// are rejected rather than defaulted: a guessed date would defeat both the
// publish-date floor and the publish-instant dedup key.
func (a *RSSAdapter) toArticle(item *gofeed.Item) (*types.RawArticle, error) {
	link := strings.TrimSpace(item.Link)
	if link == "" && strings.HasPrefix(item.GUID, "http") {
		link = item.GUID
	}
	if link == "" {
		return nil, &types.ParseError{Source: a.Name(), Field: "link", Value: item.Title, Err: types.ErrNoContent}
	}

	if item.PublishedParsed == nil {
		return nil, &types.ParseError{Source: a.Name(), Field: "pubDate", Value: item.Published, Err: types.ErrNoContent}
	}

	naturalID := item.GUID
	if naturalID == "" {
		naturalID = link
	}

	return &types.RawArticle{
		NaturalID:    naturalID,
		Source:       a.Name(),
		Family:       types.SourceFamily(a.cfg.Family),
		Title:        strings.TrimSpace(item.Title),
		Summary:      strings.TrimSpace(item.Description),
		BodyHTML:     item.Content,
		CanonicalURL: link,
		ImageURL:     leadImage(item),
		PublishedAt:  item.PublishedParsed.UTC(),
	}, nil
}

// leadImage picks the adapter-best-guess image from an item: enclosure first,
// then media:content / media:thumbnail extensions, then the channel-level
// item image. Icons, avatars and logos are not usable.
func leadImage(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && images.UsableURL(enc.URL) {
			return enc.URL
		}
	}

	if media, ok := item.Extensions["media"]; ok {
		for _, tag := range []string{"content", "thumbnail"} {
			for _, ext := range media[tag] {
				if u := ext.Attrs["url"]; u != "" && images.UsableURL(u) {
					return u
				}
			}
		}
	}

	if item.Image != nil && images.UsableURL(item.Image.URL) {
		return item.Image.URL
	}
	return ""
}
