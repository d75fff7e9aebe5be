// Package source contains the upstream adapters. Each adapter turns one
// publication's feeds or API into RawArticle records; a failing adapter is
// isolated to zero articles for that run, never a run abort.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teslawire/teslawire/internal/config"
	"github.com/teslawire/teslawire/internal/fetcher"
	"github.com/teslawire/teslawire/internal/types"
)

// Adapter fetches and normalizes articles from one configured publication.
type Adapter interface {
	// Name returns the publication tag.
	Name() types.SourceName

	// Fetch returns the current articles, already deduplicated by natural
	// key within this invocation. A partial result with a nil error is
	// valid when some underlying feeds failed.
	Fetch(ctx context.Context) ([]*types.RawArticle, error)
}

// Build constructs adapters for every configured source.
func Build(cfgs []config.SourceConfig, f fetcher.Fetcher, logger *slog.Logger) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(cfgs))
	for _, sc := range cfgs {
		switch sc.Kind {
		case "rss":
			adapters = append(adapters, NewRSSAdapter(sc, f, logger))
		case "wordpress":
			adapters = append(adapters, NewWordPressAdapter(sc, f, logger))
		default:
			return nil, fmt.Errorf("source %q: unknown kind %q", sc.Name, sc.Kind)
		}
	}
	return adapters, nil
}

// dedupByNaturalKey keeps the first article per normalized natural key. The
// same article legitimately shows up in more than one category feed of a
// publication, so adapters dedup before returning.
func dedupByNaturalKey(articles []*types.RawArticle) []*types.RawArticle {
	seen := make(map[string]struct{}, len(articles))
	out := articles[:0]
	for _, a := range articles {
		key := a.NaturalKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
