package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for teslawire.
type Config struct {
	Sources  SourcesConfig  `mapstructure:"sources"  yaml:"sources"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"  yaml:"fetcher"`
	Scraper  ScraperConfig  `mapstructure:"scraper"  yaml:"scraper"`
	Images   ImagesConfig   `mapstructure:"images"   yaml:"images"`
	Assets   AssetsConfig   `mapstructure:"assets"   yaml:"assets"`
	AI       AIConfig       `mapstructure:"ai"       yaml:"ai"`
	Store    StoreConfig    `mapstructure:"store"    yaml:"store"`
	Sync     SyncConfig     `mapstructure:"sync"     yaml:"sync"`
	Server   ServerConfig   `mapstructure:"server"   yaml:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// SourceConfig describes one configured upstream publication.
type SourceConfig struct {
	Name   string   `mapstructure:"name"   yaml:"name"`
	Kind   string   `mapstructure:"kind"   yaml:"kind"`   // rss, wordpress
	Family string   `mapstructure:"family" yaml:"family"` // sanitizer rule set
	URLs   []string `mapstructure:"urls"   yaml:"urls"`   // feed URLs or the WP site base URL

	// StripLinks drops all outbound hyperlinks and bare URL text during
	// sanitization. A licensing/attribution policy, so per source rather
	// than hard-coded per family.
	StripLinks bool `mapstructure:"strip_links" yaml:"strip_links"`
}

// SourcesConfig lists the upstream publications to pull from.
type SourcesConfig struct {
	List []SourceConfig `mapstructure:"list" yaml:"list"`
}

// FetcherConfig controls the shared HTTP fetcher.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"` // http, browser
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"         yaml:"cache_ttl"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`
}

// ScraperConfig controls full-text extraction.
type ScraperConfig struct {
	MinContentChars   int `mapstructure:"min_content_chars"   yaml:"min_content_chars"`
	MinContainerChars int `mapstructure:"min_container_chars" yaml:"min_container_chars"`
	MinImageWidth     int `mapstructure:"min_image_width"     yaml:"min_image_width"`
	MinImageHeight    int `mapstructure:"min_image_height"    yaml:"min_image_height"`
}

// ImagesConfig controls image harvesting and upload pacing.
type ImagesConfig struct {
	UploadDelay time.Duration `mapstructure:"upload_delay" yaml:"upload_delay"`
	MaxPerBody  int           `mapstructure:"max_per_body" yaml:"max_per_body"`
	MaxSizeMB   int64         `mapstructure:"max_size_mb"  yaml:"max_size_mb"`
}

// AssetsConfig points at the asset store.
type AssetsConfig struct {
	Endpoint   string        `mapstructure:"endpoint"    yaml:"endpoint"`
	Token      string        `mapstructure:"token"       yaml:"token"`
	CDNBaseURL string        `mapstructure:"cdn_base_url" yaml:"cdn_base_url"`
	Timeout    time.Duration `mapstructure:"timeout"     yaml:"timeout"`
}

// AIConfig controls the translation/generation service.
type AIConfig struct {
	Provider    string        `mapstructure:"provider"     yaml:"provider"` // openai, ollama, custom
	Endpoint    string        `mapstructure:"endpoint"     yaml:"endpoint"`
	Model       string        `mapstructure:"model"        yaml:"model"`
	APIKey      string        `mapstructure:"api_key"      yaml:"api_key"`
	MaxTokens   int           `mapstructure:"max_tokens"   yaml:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"  yaml:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"      yaml:"timeout"`
	FromLang    string        `mapstructure:"from_lang"    yaml:"from_lang"`
	ToLang      string        `mapstructure:"to_lang"      yaml:"to_lang"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"    yaml:"cache_ttl"`
}

// StoreConfig points at the content store.
type StoreConfig struct {
	URI        string `mapstructure:"uri"        yaml:"uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// SyncConfig controls one pipeline run.
type SyncConfig struct {
	MaxArticlesPerRun  int           `mapstructure:"max_articles_per_run" yaml:"max_articles_per_run"`
	MinPublishDate     string        `mapstructure:"min_publish_date"     yaml:"min_publish_date"` // RFC 3339, empty = no floor
	RunBudget          time.Duration `mapstructure:"run_budget"           yaml:"run_budget"`
	StageDelay         time.Duration `mapstructure:"stage_delay"          yaml:"stage_delay"`
	DedupByPublishedAt bool          `mapstructure:"dedup_by_published_at" yaml:"dedup_by_published_at"`
	PublishByDefault   bool          `mapstructure:"publish_by_default"   yaml:"publish_by_default"`
}

// ServerConfig controls the HTTP trigger surface.
type ServerConfig struct {
	Port       int    `mapstructure:"port"        yaml:"port"`
	SyncSecret string `mapstructure:"sync_secret" yaml:"sync_secret"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			Type:            "http",
			RequestTimeout:  30 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024,
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    20,
			CacheTTL:        10 * time.Minute,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
			},
		},
		Scraper: ScraperConfig{
			MinContentChars:   100,
			MinContainerChars: 500,
			MinImageWidth:     400,
			MinImageHeight:    300,
		},
		Images: ImagesConfig{
			UploadDelay: 500 * time.Millisecond,
			MaxPerBody:  12,
			MaxSizeMB:   15,
		},
		Assets: AssetsConfig{
			Timeout: 60 * time.Second,
		},
		AI: AIConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			MaxTokens:   4096,
			Temperature: 0.4,
			Timeout:     120 * time.Second,
			FromLang:    "en",
			ToLang:      "de",
			CacheTTL:    1 * time.Hour,
		},
		Store: StoreConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "teslawire",
			Collection: "articles",
		},
		Sync: SyncConfig{
			MaxArticlesPerRun:  10,
			RunBudget:          8 * time.Minute,
			StageDelay:         300 * time.Millisecond,
			DedupByPublishedAt: true,
			PublishByDefault:   true,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
