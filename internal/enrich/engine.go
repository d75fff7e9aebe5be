package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/teslawire/teslawire/internal/config"
	"github.com/teslawire/teslawire/internal/types"
)

// Service is what the orchestrator needs from the enrichment engine.
type Service interface {
	// Translate converts text between the configured language pair.
	Translate(ctx context.Context, text string) (string, error)

	// GenerateArticleHTML produces the rewritten, styled body in the target
	// language, embedding the given image URLs. The returned HTML has
	// already passed structural validation.
	GenerateArticleHTML(ctx context.Context, title, summary, fullText string, imageURLs []string) (string, error)
}

// Engine implements Service on an LLM client with a text-level cache. The
// cache is keyed by exact input text plus language pair and lives only for
// the process lifetime, so repeated short strings (titles, descriptions) are
// not paid for twice within a run.
type Engine struct {
	llm    *LLMClient
	cache  *gocache.Cache
	cfg    *config.AIConfig
	logger *slog.Logger
}

// NewEngine creates an enrichment engine.
func NewEngine(cfg *config.AIConfig, logger *slog.Logger) *Engine {
	return &Engine{
		llm:    NewLLMClient(cfg, logger),
		cache:  gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		cfg:    cfg,
		logger: logger.With("component", "enrichment"),
	}
}

// Translate converts text from the configured source to the target language.
func (e *Engine) Translate(ctx context.Context, text string) (string, error) {
	return e.TranslatePair(ctx, text, e.cfg.FromLang, e.cfg.ToLang)
}

// TranslatePair translates between an explicit language pair.
func (e *Engine) TranslatePair(ctx context.Context, text, from, to string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	cacheKey := from + "\x00" + to + "\x00" + text
	if cached, ok := e.cache.Get(cacheKey); ok {
		return cached.(string), nil
	}

	prompt := fmt.Sprintf(
		"Translate the following text from %s to %s. Return only the translation, no explanations:\n\n%s",
		from, to, text,
	)

	translated, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return "", &types.EnrichmentError{Stage: "translate", Reason: "generation call failed", Err: err}
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		return "", &types.EnrichmentError{Stage: "translate", Reason: "empty translation"}
	}

	e.cache.SetDefault(cacheKey, translated)
	return translated, nil
}

// GenerateArticleHTML asks the LLM for a restructured article body and
// enforces the structural contract on the output. A rejected output hard-fails
// the article: partially structured HTML would ship a broken reading
// experience, which is worse than skipping the article for this run.
func (e *Engine) GenerateArticleHTML(ctx context.Context, title, summary, fullText string, imageURLs []string) (string, error) {
	source := fullText
	if strings.TrimSpace(source) == "" {
		source = summary
	}
	if len(source) > 12000 {
		source = source[:12000]
	}

	imageBlock := ""
	if len(imageURLs) > 0 {
		imageBlock = "\n\nPlace these images at sensible positions between sections, each as a plain <img src=\"...\"> tag with its URL unchanged:\n" +
			strings.Join(imageURLs, "\n")
	}

	prompt := fmt.Sprintf(`Rewrite the following news article in %s as clean HTML.

Requirements:
- at least %d paragraphs wrapped in <p> tags
- at least %d section headings using <h2> tags
- only semantic tags: p, h2, h3, ul, li, strong, em, blockquote, img
- no style, class or id attributes
- no links
- do not mention the original publication or add any source attribution
- do not repeat the title

Title: %s

Article:
%s%s`, e.cfg.ToLang, minParagraphs, minHeadings, title, source, imageBlock)

	raw, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return "", &types.EnrichmentError{Stage: "generate", Reason: "generation call failed", Err: err}
	}

	cleaned, err := ValidateAndClean(extractHTML(raw))
	if err != nil {
		return "", err
	}

	e.logger.Debug("article body generated", "title", title, "chars", len(cleaned))
	return cleaned, nil
}

// extractHTML unwraps markdown code fences the model sometimes adds.
func extractHTML(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```html")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx >= 0 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
