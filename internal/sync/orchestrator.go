// Package sync drives one pipeline run: fetch from every adapter, drop
// duplicates and stale items, then walk each surviving article through
// scraping, sanitizing, image upload, enrichment and the idempotent create.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/teslawire/teslawire/internal/assets"
	"github.com/teslawire/teslawire/internal/config"
	"github.com/teslawire/teslawire/internal/enrich"
	"github.com/teslawire/teslawire/internal/images"
	"github.com/teslawire/teslawire/internal/sanitizer"
	"github.com/teslawire/teslawire/internal/scraper"
	"github.com/teslawire/teslawire/internal/source"
	"github.com/teslawire/teslawire/internal/store"
	"github.com/teslawire/teslawire/internal/types"
)

// Scraper extracts full text from an article page.
type Scraper interface {
	Scrape(ctx context.Context, pageURL string, family types.SourceFamily) (*scraper.Result, error)
}

// HTMLSanitizer strips source-site chrome.
type HTMLSanitizer interface {
	Sanitize(html string, family types.SourceFamily, opts sanitizer.Options) string
}

// Uploader mirrors external images into the asset store.
type Uploader interface {
	UploadAll(ctx context.Context, urls []string) map[string]string
}

// Orchestrator owns one run of the ingestion pipeline. Articles are processed
// strictly one after another: the binding constraint is third-party rate
// limits and the wall-clock budget, not CPU.
type Orchestrator struct {
	adapters  []source.Adapter
	scraper   Scraper
	sanitizer HTMLSanitizer
	uploader  Uploader
	assets    assets.Store
	enricher  enrich.Service
	store     store.ArticleStore
	cfg       *config.SyncConfig
	sources   map[types.SourceName]config.SourceConfig
	logger    *slog.Logger
}

// New wires an Orchestrator.
func New(
	adapters []source.Adapter,
	sc Scraper,
	sn HTMLSanitizer,
	up Uploader,
	as assets.Store,
	en enrich.Service,
	st store.ArticleStore,
	cfg *config.SyncConfig,
	sourceCfgs []config.SourceConfig,
	logger *slog.Logger,
) *Orchestrator {
	sources := make(map[types.SourceName]config.SourceConfig, len(sourceCfgs))
	for _, c := range sourceCfgs {
		sources[types.SourceName(c.Name)] = c
	}
	return &Orchestrator{
		adapters:  adapters,
		scraper:   sc,
		sanitizer: sn,
		uploader:  up,
		assets:    as,
		enricher:  en,
		store:     st,
		cfg:       cfg,
		sources:   sources,
		logger:    logger.With("component", "orchestrator"),
	}
}

// Run executes one batch. It always returns a Summary; the error is non-nil
// only for catastrophic conditions (the store unreachable during the
// existence-check phase), and even then the Summary describes what happened.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	summary := NewSummary()
	defer summary.Finish()

	if o.cfg.RunBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RunBudget)
		defer cancel()
	}

	candidates, err := o.collectCandidates(ctx, summary)
	if err != nil {
		summary.AddError(fmt.Sprintf("existence check phase: %v", err))
		summary.Failed++
		return summary, err
	}
	if len(candidates) > o.cfg.MaxArticlesPerRun {
		summary.Skipped += len(candidates) - o.cfg.MaxArticlesPerRun
		candidates = candidates[:o.cfg.MaxArticlesPerRun]
	}

	for i, article := range candidates {
		if ctx.Err() != nil {
			remaining := len(candidates) - i
			summary.Skipped += remaining
			summary.AddError(fmt.Sprintf("%v, %d candidates not processed", types.ErrRunBudget, remaining))
			break
		}
		if i > 0 && o.cfg.StageDelay > 0 {
			time.Sleep(o.cfg.StageDelay)
		}

		state, err := o.processOne(ctx, article)
		switch state {
		case StatePersisted:
			summary.Imported++
		case StateSkipped:
			summary.Skipped++
		default:
			summary.Failed++
			if err != nil {
				summary.AddError(fmt.Sprintf("%s: %v", article.CanonicalURL, err))
			}
		}
	}

	o.logger.Info("run complete",
		"run_id", summary.RunID,
		"fetched", summary.Fetched,
		"imported", summary.Imported,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// collectCandidates runs the fetch and dedup phases and returns the capped,
// newest-first candidate list.
func (o *Orchestrator) collectCandidates(ctx context.Context, summary *Summary) ([]*types.RawArticle, error) {
	batch := o.fetchAll(ctx, summary)
	summary.Fetched = len(batch)

	batch = o.dedupBatch(batch, summary)
	batch = o.applyDateFloor(batch, summary)

	candidates, err := o.dropPersisted(ctx, batch, summary)
	if err != nil {
		return nil, err
	}

	// Newest first, then cap the run. The cap bounds external-API spend:
	// this is a batch job with a wall-clock budget, not a stream processor.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].PublishedAt.After(candidates[j].PublishedAt)
	})
	return candidates, nil
}

// DryRun executes the fetch and dedup phases only, returning the candidates
// that a real run would process. Nothing is scraped, enriched or written.
func (o *Orchestrator) DryRun(ctx context.Context) ([]*types.RawArticle, *Summary, error) {
	summary := NewSummary()
	defer summary.Finish()

	candidates, err := o.collectCandidates(ctx, summary)
	if err != nil {
		return nil, summary, err
	}
	if len(candidates) > o.cfg.MaxArticlesPerRun {
		candidates = candidates[:o.cfg.MaxArticlesPerRun]
	}
	return candidates, summary, nil
}

// fetchAll fans out to every adapter and fans the partial results back in.
// Adapters hit distinct hosts, so they run in parallel; a failing source
// contributes zero articles and an error string, never a run abort.
func (o *Orchestrator) fetchAll(ctx context.Context, summary *Summary) []*types.RawArticle {
	type result struct {
		articles []*types.RawArticle
		err      error
		name     types.SourceName
	}

	results := make(chan result, len(o.adapters))
	for _, adapter := range o.adapters {
		go func(a source.Adapter) {
			articles, err := a.Fetch(ctx)
			results <- result{articles: articles, err: err, name: a.Name()}
		}(adapter)
	}

	var batch []*types.RawArticle
	for range o.adapters {
		r := <-results
		if r.err != nil {
			o.logger.Warn("source failed", "source", r.name, "error", r.err)
			summary.AddError(fmt.Sprintf("source %s: %v", r.name, r.err))
			continue
		}
		batch = append(batch, r.articles...)
	}
	return batch
}

// dedupBatch removes intra-batch duplicates by natural key and title. Sources
// overlap: the same story syndicates across publications with the same URL or
// a near-identical headline.
func (o *Orchestrator) dedupBatch(batch []*types.RawArticle, summary *Summary) []*types.RawArticle {
	seenKeys := make(map[string]struct{}, len(batch))
	seenTitles := make(map[string]struct{}, len(batch))

	out := batch[:0]
	for _, a := range batch {
		key, titleKey := a.NaturalKey(), a.TitleKey()
		if _, dup := seenKeys[key]; dup {
			summary.Skipped++
			continue
		}
		if _, dup := seenTitles[titleKey]; dup && titleKey != "" {
			summary.Skipped++
			continue
		}
		seenKeys[key] = struct{}{}
		seenTitles[titleKey] = struct{}{}
		out = append(out, a)
	}
	return out
}

// applyDateFloor drops articles older than the configured minimum.
func (o *Orchestrator) applyDateFloor(batch []*types.RawArticle, summary *Summary) []*types.RawArticle {
	floor := o.cfg.MinPublishTime()
	if floor.IsZero() {
		return batch
	}
	out := batch[:0]
	for _, a := range batch {
		if a.PublishedAt.Before(floor) {
			summary.Skipped++
			continue
		}
		out = append(out, a)
	}
	return out
}

// dropPersisted removes articles already in the store under any dedup key.
// A store error here is catastrophic: without reliable existence checks the
// run would re-import everything.
func (o *Orchestrator) dropPersisted(ctx context.Context, batch []*types.RawArticle, summary *Summary) ([]*types.RawArticle, error) {
	out := batch[:0]
	for _, a := range batch {
		dup, err := o.isPersisted(ctx, a)
		if err != nil {
			return nil, err
		}
		if dup {
			summary.Skipped++
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// isPersisted checks the three dedup keys. A match on any one is a duplicate;
// biased toward skipping rather than duplicating.
func (o *Orchestrator) isPersisted(ctx context.Context, a *types.RawArticle) (bool, error) {
	if ok, err := o.store.ExistsByNaturalKey(ctx, a.NaturalKey()); err != nil || ok {
		return ok, err
	}
	if ok, err := o.store.ExistsByTitle(ctx, a.TitleKey()); err != nil || ok {
		return ok, err
	}
	if o.cfg.DedupByPublishedAt {
		if ok, err := o.store.ExistsByPublishedAt(ctx, a.PublishedAt); err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// processOne runs the per-article stage chain. Any unrecoverable stage error
// fails this article only; the run continues with the next candidate.
func (o *Orchestrator) processOne(ctx context.Context, raw *types.RawArticle) (State, error) {
	log := o.logger.With("url", raw.CanonicalURL, "source", raw.Source)

	// Scrape. A soft failure falls back to the adapter-supplied text.
	fullText := ""
	bodyHTML := raw.BodyHTML
	heroURL := raw.ImageURL

	result, err := o.scraper.Scrape(ctx, raw.CanonicalURL, raw.Family)
	if err != nil {
		log.Warn("scrape failed, using adapter summary", "error", err)
	} else if result.Success {
		fullText = result.PlainText
		bodyHTML = result.HTML
		if heroURL == "" {
			heroURL = result.HeroImageURL
		}
	} else {
		log.Warn("no extractable content, using adapter summary", "reason", result.Reason)
	}
	if fullText == "" && raw.Summary == "" && bodyHTML == "" {
		return StateFailed, &types.ScrapeError{URL: raw.CanonicalURL, Err: types.ErrNoContent}
	}

	// Sanitize. Never fails; degrades to pass-through.
	srcCfg := o.sources[raw.Source]
	cleaned := o.sanitizer.Sanitize(bodyHTML, raw.Family, sanitizer.Options{
		StripLinks:   srcCfg.StripLinks,
		HeroImageURL: heroURL,
	})

	// Harvest and upload images. Per-image failures already swallowed; the
	// mapping just lacks those URLs.
	contentImages := images.Collect(cleaned, raw.CanonicalURL)
	uploadList := contentImages
	if heroURL != "" {
		uploadList = append([]string{heroURL}, contentImages...)
	}
	mapping := o.uploader.UploadAll(ctx, uploadList)

	// Enrich. Hard failures reject the article: shipping raw or partially
	// structured content is worse than shipping nothing.
	titleTranslated, err := o.enricher.Translate(ctx, raw.Title)
	if err != nil {
		return StateFailed, err
	}
	summaryTranslated, err := o.enricher.Translate(ctx, raw.Summary)
	if err != nil {
		return StateFailed, err
	}
	generated, err := o.enricher.GenerateArticleHTML(ctx, raw.Title, raw.Summary, fullText, contentImages)
	if err != nil {
		return StateFailed, err
	}

	bodyTranslated, contentRefs := images.Rewrite(generated, mapping, o.assets)

	heroRef := ""
	if heroURL != "" {
		heroRef = mapping[heroURL]
	}

	slug, err := o.uniqueSlug(ctx, titleTranslated, raw.Title)
	if err != nil {
		return StateFailed, err
	}

	// Re-check existence right before the write: a concurrent run may have
	// imported the same article since the batch-level check.
	dup, err := o.isPersisted(ctx, raw)
	if err != nil {
		return StateFailed, err
	}
	if dup {
		log.Info("imported by a concurrent run, skipping")
		return StateSkipped, nil
	}

	article := &types.EnrichedArticle{
		NaturalID:          raw.NaturalID,
		Source:             raw.Source,
		Title:              raw.Title,
		Summary:            raw.Summary,
		CanonicalURL:       raw.CanonicalURL,
		Slug:               slug,
		TitleTranslated:    titleTranslated,
		SummaryTranslated:  summaryTranslated,
		BodyPlainText:      fullText,
		BodyHTMLTranslated: bodyTranslated,
		HeroImageRef:       heroRef,
		ContentImageRefs:   contentRefs,
		IsPublished:        o.cfg.PublishByDefault,
		PublishedAt:        raw.PublishedAt,
	}

	if err := o.store.Create(ctx, article); err != nil {
		return StateFailed, err
	}

	log.Info("article imported", "slug", slug, "images", len(contentRefs), "hero", heroRef != "")
	return StatePersisted, nil
}

// uniqueSlug derives a slug from the translated title (falling back to the
// original) and suffixes on collision.
func (o *Orchestrator) uniqueSlug(ctx context.Context, titleTranslated, title string) (string, error) {
	base := types.Slugify(titleTranslated)
	if base == "" {
		base = types.Slugify(title)
	}
	if base == "" {
		base = "article"
	}

	slug := base
	for i := 2; ; i++ {
		taken, err := o.store.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
