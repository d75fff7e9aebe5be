// Package store persists enriched articles. The interface is deliberately
// narrow: point existence checks on the three dedup keys plus single-document
// creates, so a backend can add real indexes without touching orchestrator
// logic.
package store

import (
	"context"
	"time"

	"github.com/teslawire/teslawire/internal/types"
)

// ArticleStore is the content store seen by the pipeline.
type ArticleStore interface {
	// ExistsByNaturalKey checks the normalized GUID/URL key.
	ExistsByNaturalKey(ctx context.Context, key string) (bool, error)

	// ExistsByTitle checks the normalized title key.
	ExistsByTitle(ctx context.Context, titleKey string) (bool, error)

	// ExistsByPublishedAt checks for an exact publish-instant match.
	ExistsByPublishedAt(ctx context.Context, publishedAt time.Time) (bool, error)

	// SlugExists reports whether a slug is already taken.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// Create persists one article. CreatedAt/UpdatedAt are store-managed.
	Create(ctx context.Context, article *types.EnrichedArticle) error

	// ListRecent returns the newest articles by publish instant.
	ListRecent(ctx context.Context, limit int) ([]*types.EnrichedArticle, error)

	// Close releases the backend connection.
	Close(ctx context.Context) error
}
