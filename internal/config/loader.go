package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("TESLAWIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("teslawire")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".teslawire"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides work even
// for keys absent from the config file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.tls_insecure", cfg.Fetcher.TLSInsecure)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)
	v.SetDefault("fetcher.cache_ttl", cfg.Fetcher.CacheTTL)
	v.SetDefault("fetcher.user_agents", cfg.Fetcher.UserAgents)

	v.SetDefault("scraper.min_content_chars", cfg.Scraper.MinContentChars)
	v.SetDefault("scraper.min_container_chars", cfg.Scraper.MinContainerChars)
	v.SetDefault("scraper.min_image_width", cfg.Scraper.MinImageWidth)
	v.SetDefault("scraper.min_image_height", cfg.Scraper.MinImageHeight)

	v.SetDefault("images.upload_delay", cfg.Images.UploadDelay)
	v.SetDefault("images.max_per_body", cfg.Images.MaxPerBody)
	v.SetDefault("images.max_size_mb", cfg.Images.MaxSizeMB)

	v.SetDefault("assets.endpoint", cfg.Assets.Endpoint)
	// Secrets are usually env-only; they must be registered here or
	// AutomaticEnv never sees them during Unmarshal.
	v.SetDefault("assets.token", cfg.Assets.Token)
	v.SetDefault("assets.cdn_base_url", cfg.Assets.CDNBaseURL)
	v.SetDefault("assets.timeout", cfg.Assets.Timeout)

	v.SetDefault("ai.provider", cfg.AI.Provider)
	v.SetDefault("ai.model", cfg.AI.Model)
	v.SetDefault("ai.api_key", cfg.AI.APIKey)
	v.SetDefault("ai.max_tokens", cfg.AI.MaxTokens)
	v.SetDefault("ai.temperature", cfg.AI.Temperature)
	v.SetDefault("ai.timeout", cfg.AI.Timeout)
	v.SetDefault("ai.from_lang", cfg.AI.FromLang)
	v.SetDefault("ai.to_lang", cfg.AI.ToLang)
	v.SetDefault("ai.cache_ttl", cfg.AI.CacheTTL)

	v.SetDefault("store.uri", cfg.Store.URI)
	v.SetDefault("store.database", cfg.Store.Database)
	v.SetDefault("store.collection", cfg.Store.Collection)

	v.SetDefault("sync.max_articles_per_run", cfg.Sync.MaxArticlesPerRun)
	v.SetDefault("sync.min_publish_date", cfg.Sync.MinPublishDate)
	v.SetDefault("sync.run_budget", cfg.Sync.RunBudget)
	v.SetDefault("sync.stage_delay", cfg.Sync.StageDelay)
	v.SetDefault("sync.dedup_by_published_at", cfg.Sync.DedupByPublishedAt)
	v.SetDefault("sync.publish_by_default", cfg.Sync.PublishByDefault)

	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.sync_secret", cfg.Server.SyncSecret)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
