package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if len(cfg.Sources.List) == 0 {
		return fmt.Errorf("sources.list must contain at least one source")
	}
	for i, src := range cfg.Sources.List {
		if src.Name == "" {
			return fmt.Errorf("sources.list[%d].name is required", i)
		}
		if src.Kind != "rss" && src.Kind != "wordpress" {
			return fmt.Errorf("source %q: kind must be 'rss' or 'wordpress', got %q", src.Name, src.Kind)
		}
		if len(src.URLs) == 0 {
			return fmt.Errorf("source %q: at least one URL is required", src.Name)
		}
		for _, raw := range src.URLs {
			u, err := url.Parse(raw)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("source %q: invalid URL %q", src.Name, raw)
			}
		}
	}

	if cfg.Scraper.MinContentChars < 1 {
		return fmt.Errorf("scraper.min_content_chars must be >= 1")
	}
	if cfg.Scraper.MinContainerChars < cfg.Scraper.MinContentChars {
		return fmt.Errorf("scraper.min_container_chars must be >= scraper.min_content_chars")
	}

	if cfg.Images.UploadDelay < 0 {
		return fmt.Errorf("images.upload_delay must be >= 0")
	}

	if cfg.AI.Provider != "openai" && cfg.AI.Provider != "ollama" && cfg.AI.Provider != "custom" {
		return fmt.Errorf("ai.provider must be 'openai', 'ollama' or 'custom', got %q", cfg.AI.Provider)
	}
	if cfg.AI.FromLang == "" || cfg.AI.ToLang == "" {
		return fmt.Errorf("ai.from_lang and ai.to_lang are required")
	}

	if cfg.Store.URI == "" || cfg.Store.Database == "" || cfg.Store.Collection == "" {
		return fmt.Errorf("store.uri, store.database and store.collection are required")
	}

	if cfg.Sync.MaxArticlesPerRun < 1 {
		return fmt.Errorf("sync.max_articles_per_run must be >= 1")
	}
	if cfg.Sync.MinPublishDate != "" {
		if _, err := time.Parse(time.RFC3339, cfg.Sync.MinPublishDate); err != nil {
			return fmt.Errorf("sync.min_publish_date must be RFC 3339: %w", err)
		}
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}

	return nil
}

// MinPublishTime parses the configured publish-date floor. The zero time
// means no floor. Validate has already checked the format.
func (c *SyncConfig) MinPublishTime() time.Time {
	if c.MinPublishDate == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, c.MinPublishDate)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
