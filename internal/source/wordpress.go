package source

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	gocache "github.com/patrickmn/go-cache"

	"github.com/teslawire/teslawire/internal/config"
	"github.com/teslawire/teslawire/internal/fetcher"
	"github.com/teslawire/teslawire/internal/images"
	"github.com/teslawire/teslawire/internal/types"
)

// wpDateLayout is what the REST API puts in date_gmt.
const wpDateLayout = "2006-01-02T15:04:05"

// WordPressAdapter pulls one publication's posts from the WordPress REST API
// with embedded media expansion.
type WordPressAdapter struct {
	cfg        config.SourceConfig
	fetcher    fetcher.Fetcher
	mediaCache *gocache.Cache // media ID → image URL; the embed is often absent or stale
	logger     *slog.Logger
}

type wpRendered struct {
	Rendered string `json:"rendered"`
}

type wpMedia struct {
	SourceURL    string `json:"source_url"`
	MediaDetails struct {
		Sizes map[string]struct {
			SourceURL string `json:"source_url"`
		} `json:"sizes"`
	} `json:"media_details"`
}

type wpPost struct {
	ID            int        `json:"id"`
	DateGMT       string     `json:"date_gmt"`
	Link          string     `json:"link"`
	GUID          wpRendered `json:"guid"`
	Title         wpRendered `json:"title"`
	Excerpt       wpRendered `json:"excerpt"`
	Content       wpRendered `json:"content"`
	FeaturedMedia int        `json:"featured_media"`
	Embedded      *struct {
		FeaturedMedia []wpMedia `json:"wp:featuredmedia"`
	} `json:"_embedded"`
}

// NewWordPressAdapter creates an adapter for the configured WordPress source.
func NewWordPressAdapter(cfg config.SourceConfig, f fetcher.Fetcher, logger *slog.Logger) *WordPressAdapter {
	return &WordPressAdapter{
		cfg:        cfg,
		fetcher:    f,
		mediaCache: gocache.New(30*time.Minute, time.Hour),
		logger:     logger.With("component", "wordpress_adapter", "source", cfg.Name),
	}
}

// Name returns the publication tag.
func (a *WordPressAdapter) Name() types.SourceName {
	return types.SourceName(a.cfg.Name)
}

// Fetch queries the posts endpoint of every configured site base URL.
func (a *WordPressAdapter) Fetch(ctx context.Context) ([]*types.RawArticle, error) {
	var articles []*types.RawArticle
	var lastErr error

	for _, baseURL := range a.cfg.URLs {
		postsURL := strings.TrimRight(baseURL, "/") + "/wp-json/wp/v2/posts?_embed=1&per_page=20"

		resp, err := a.fetcher.Get(ctx, postsURL)
		if err != nil {
			lastErr = &types.SourceFetchError{Source: a.Name(), URL: postsURL, Err: err}
			a.logger.Warn("posts fetch failed", "url", postsURL, "error", err)
			continue
		}

		var posts []wpPost
		if err := json.Unmarshal(resp.Body, &posts); err != nil {
			lastErr = &types.ParseError{Source: a.Name(), Err: err}
			a.logger.Warn("posts parse failed", "url", postsURL, "error", err)
			continue
		}

		for i := range posts {
			article, err := a.toArticle(ctx, baseURL, &posts[i])
			if err != nil {
				a.logger.Warn("post dropped", "id", posts[i].ID, "error", err)
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

// toArticle normalizes one REST post. Unparseable dates reject the post.
func (a *WordPressAdapter) toArticle(ctx context.Context, baseURL string, post *wpPost) (*types.RawArticle, error) {
	publishedAt, err := time.Parse(wpDateLayout, post.DateGMT)
	if err != nil {
		return nil, &types.ParseError{Source: a.Name(), Field: "date_gmt", Value: post.DateGMT, Err: err}
	}

	link := strings.TrimSpace(post.Link)
	if link == "" {
		return nil, &types.ParseError{Source: a.Name(), Field: "link", Value: fmt.Sprint(post.ID), Err: types.ErrNoContent}
	}

	naturalID := strings.TrimSpace(post.GUID.Rendered)
	if naturalID == "" {
		naturalID = link
	}

	return &types.RawArticle{
		NaturalID:    naturalID,
		Source:       a.Name(),
		Family:       types.SourceFamily(a.cfg.Family),
		Title:        html.UnescapeString(strings.TrimSpace(post.Title.Rendered)),
		Summary:      renderedText(post.Excerpt.Rendered),
		BodyHTML:     post.Content.Rendered,
		CanonicalURL: link,
		ImageURL:     a.featuredImage(ctx, baseURL, post),
		PublishedAt:  publishedAt.UTC(),
	}, nil
}

// featuredImage resolves the post's lead image through a fallback chain:
// embedded featured-media sizes, a direct by-ID media lookup (cached, since
// the embed may be absent or stale), the first usable image in the rendered
// content, and finally the first usable image in the excerpt.
func (a *WordPressAdapter) featuredImage(ctx context.Context, baseURL string, post *wpPost) string {
	if post.Embedded != nil && len(post.Embedded.FeaturedMedia) > 0 {
		if u := bestMediaSize(&post.Embedded.FeaturedMedia[0]); u != "" {
			return u
		}
	}

	if post.FeaturedMedia > 0 {
		if u := a.mediaByID(ctx, baseURL, post.FeaturedMedia); u != "" {
			return u
		}
	}

	if u := firstContentImage(post.Content.Rendered); u != "" {
		return u
	}

	return firstExcerptImage(post.Excerpt.Rendered)
}

// bestMediaSize walks the size preference order and falls back to the raw
// source URL.
func bestMediaSize(media *wpMedia) string {
	for _, size := range []string{"large", "medium_large", "full"} {
		if s, ok := media.MediaDetails.Sizes[size]; ok && images.UsableURL(s.SourceURL) {
			return s.SourceURL
		}
	}
	if images.UsableURL(media.SourceURL) {
		return media.SourceURL
	}
	return ""
}

// mediaByID looks a media item up directly, memoizing per media ID.
func (a *WordPressAdapter) mediaByID(ctx context.Context, baseURL string, id int) string {
	cacheKey := fmt.Sprintf("%s#%d", baseURL, id)
	if cached, ok := a.mediaCache.Get(cacheKey); ok {
		return cached.(string)
	}

	mediaURL := fmt.Sprintf("%s/wp-json/wp/v2/media/%d", strings.TrimRight(baseURL, "/"), id)
	resp, err := a.fetcher.Get(ctx, mediaURL)
	if err != nil {
		a.logger.Debug("media lookup failed", "url", mediaURL, "error", err)
		return ""
	}

	var media wpMedia
	if err := json.Unmarshal(resp.Body, &media); err != nil {
		a.logger.Debug("media parse failed", "url", mediaURL, "error", err)
		return ""
	}

	u := bestMediaSize(&media)
	a.mediaCache.SetDefault(cacheKey, u)
	return u
}

// firstContentImage returns the first usable <img> source in rendered HTML.
func firstContentImage(rendered string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return ""
	}
	found := ""
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, _ := sel.Attr("src")
		if images.UsableURL(src) {
			found = src
			return false
		}
		return true
	})
	return found
}

// firstExcerptImage scans the excerpt markup for a usable image.
func firstExcerptImage(rendered string) string {
	doc, err := htmlquery.Parse(strings.NewReader(rendered))
	if err != nil {
		return ""
	}
	for _, node := range htmlquery.Find(doc, "//img/@src") {
		if src := htmlquery.InnerText(node); images.UsableURL(src) {
			return src
		}
	}
	return ""
}

// renderedText strips markup from a rendered HTML fragment.
func renderedText(rendered string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return strings.TrimSpace(html.UnescapeString(rendered))
	}
	return strings.TrimSpace(doc.Text())
}
