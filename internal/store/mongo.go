package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teslawire/teslawire/internal/config"
	"github.com/teslawire/teslawire/internal/types"
)

// mongoDoc is the persisted shape: the entity plus the precomputed dedup keys
// the existence checks and indexes run against.
type mongoDoc struct {
	types.EnrichedArticle `bson:",inline"`

	NaturalKey string `bson:"naturalKey"`
	TitleKey   string `bson:"titleKey"`
}

// MongoStore implements ArticleStore on a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoStore connects to MongoDB and ensures the dedup-key indexes.
func NewMongoStore(ctx context.Context, cfg *config.StoreConfig, logger *slog.Logger) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	s := &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:     logger.With("component", "mongo_store"),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureIndexes backs each dedup key and the slug with an index so existence
// checks stay point reads.
func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	idxCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	_, err := s.collection.Indexes().CreateMany(idxCtx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "naturalKey", Value: 1}}},
		{Keys: bson.D{{Key: "titleKey", Value: 1}}},
		{Keys: bson.D{{Key: "publishedAt", Value: 1}}},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongodb indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) exists(ctx context.Context, filter bson.M) (bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := s.collection.FindOne(opCtx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, &types.StoreError{Op: "exists", Err: err}
}

// ExistsByNaturalKey checks the normalized GUID/URL key.
func (s *MongoStore) ExistsByNaturalKey(ctx context.Context, key string) (bool, error) {
	return s.exists(ctx, bson.M{"naturalKey": key})
}

// ExistsByTitle checks the normalized title key.
func (s *MongoStore) ExistsByTitle(ctx context.Context, titleKey string) (bool, error) {
	return s.exists(ctx, bson.M{"titleKey": titleKey})
}

// ExistsByPublishedAt checks for an exact publish-instant match.
func (s *MongoStore) ExistsByPublishedAt(ctx context.Context, publishedAt time.Time) (bool, error) {
	return s.exists(ctx, bson.M{"publishedAt": publishedAt.UTC()})
}

// SlugExists reports whether a slug is already taken.
func (s *MongoStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.exists(ctx, bson.M{"slug": slug})
}

// Create persists one article as a single-document insert.
func (s *MongoStore) Create(ctx context.Context, article *types.EnrichedArticle) error {
	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now

	doc := mongoDoc{
		EnrichedArticle: *article,
		NaturalKey:      types.NormalizeNaturalKey(article.NaturalID),
		TitleKey:        types.NormalizeTitle(article.Title),
	}

	opCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.collection.InsertOne(opCtx, doc); err != nil {
		return &types.StoreError{Op: "create", Err: err}
	}

	s.logger.Debug("article stored", "slug", article.Slug, "source", article.Source)
	return nil
}

// ListRecent returns the newest articles by publish instant.
func (s *MongoStore) ListRecent(ctx context.Context, limit int) ([]*types.EnrichedArticle, error) {
	opCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cursor, err := s.collection.Find(opCtx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "publishedAt", Value: -1}}).
			SetLimit(int64(limit)))
	if err != nil {
		return nil, &types.StoreError{Op: "list", Err: err}
	}
	defer cursor.Close(opCtx)

	var docs []mongoDoc
	if err := cursor.All(opCtx, &docs); err != nil {
		return nil, &types.StoreError{Op: "list", Err: err}
	}

	articles := make([]*types.EnrichedArticle, len(docs))
	for i := range docs {
		articles[i] = &docs[i].EnrichedArticle
	}
	return articles, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(closeCtx)
}
