package types

import (
	"time"
)

// SourceName identifies an originating publication.
type SourceName string

const (
	SourceTeslarati    SourceName = "teslarati"
	SourceNotATeslaApp SourceName = "notateslaapp"
	SourceElectrek     SourceName = "electrek"
	SourceTeslaNorth   SourceName = "teslanorth"
)

// SourceFamily groups publications that share a common HTML structure and
// therefore the same sanitizer rule set.
type SourceFamily string

const (
	FamilyTeslarati SourceFamily = "teslarati"
	FamilyWordPress SourceFamily = "wordpress"
	FamilyElectrek  SourceFamily = "electrek"
	FamilyGeneric   SourceFamily = "generic"
)

// RawArticle is the adapter-normalized form of an upstream feed item or API
// post. It is immutable once returned by an adapter: the pipeline either
// folds it into an EnrichedArticle or discards it.
type RawArticle struct {
	// NaturalID is the source-provided GUID, or the canonical URL if the
	// source supplies no GUID.
	NaturalID string

	Source SourceName
	Family SourceFamily

	Title        string
	Summary      string
	BodyHTML     string // raw from the source, may be empty
	CanonicalURL string
	ImageURL     string // adapter best guess, may be empty

	// PublishedAt is always UTC. Adapters reject items whose dates do not
	// parse rather than defaulting them.
	PublishedAt time.Time
}

// NaturalKey returns the normalized dedup key for this article.
func (a *RawArticle) NaturalKey() string {
	return NormalizeNaturalKey(a.NaturalID)
}

// TitleKey returns the normalized title dedup key.
func (a *RawArticle) TitleKey() string {
	return NormalizeTitle(a.Title)
}

// EnrichedArticle is the persisted entity. It extends RawArticle with
// translated text, the rewritten body, and asset references.
type EnrichedArticle struct {
	NaturalID    string     `bson:"naturalId"    json:"naturalId"`
	Source       SourceName `bson:"sourceName"   json:"sourceName"`
	Title        string     `bson:"title"        json:"title"`
	Summary      string     `bson:"summary"      json:"summary"`
	CanonicalURL string     `bson:"canonicalUrl" json:"canonicalUrl"`

	Slug string `bson:"slug" json:"slug"`

	TitleTranslated   string `bson:"titleTranslated"   json:"titleTranslated"`
	SummaryTranslated string `bson:"summaryTranslated" json:"summaryTranslated"`
	BodyPlainText     string `bson:"bodyPlainText"     json:"bodyPlainText"`

	// BodyHTMLTranslated is AI-generated and structurally validated. It is
	// never empty when any upstream text existed: a failed enrichment aborts
	// persistence of the article instead of falling back to raw content.
	BodyHTMLTranslated string `bson:"bodyHtmlTranslated" json:"bodyHtmlTranslated"`

	// HeroImageRef is exclusively owned by this article.
	HeroImageRef     string   `bson:"heroImageRef"     json:"heroImageRef"`
	ContentImageRefs []string `bson:"contentImageRefs" json:"contentImageRefs"`

	IsPublished bool      `bson:"isPublished" json:"isPublished"`
	PublishedAt time.Time `bson:"publishedAt" json:"publishedAt"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
