package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a DefaultConfig completed with the fields that have no
// sensible defaults.
func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Sources.List = []SourceConfig{
		{Name: "teslarati", Kind: "rss", Family: "teslarati", URLs: []string{"https://www.teslarati.com/feed/"}},
	}
	return cfg
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"no sources", func(c *Config) { c.Sources.List = nil }, "sources.list"},
		{"bad kind", func(c *Config) { c.Sources.List[0].Kind = "atom" }, "kind"},
		{"bad source url", func(c *Config) { c.Sources.List[0].URLs = []string{"not a url"} }, "invalid URL"},
		{"bad fetcher type", func(c *Config) { c.Fetcher.Type = "carrier-pigeon" }, "fetcher.type"},
		{"zero timeout", func(c *Config) { c.Fetcher.RequestTimeout = 0 }, "request_timeout"},
		{"container below content floor", func(c *Config) { c.Scraper.MinContainerChars = 10 }, "min_container_chars"},
		{"bad provider", func(c *Config) { c.AI.Provider = "llama.txt" }, "ai.provider"},
		{"missing langs", func(c *Config) { c.AI.ToLang = "" }, "to_lang"},
		{"zero batch cap", func(c *Config) { c.Sync.MaxArticlesPerRun = 0 }, "max_articles_per_run"},
		{"bad date floor", func(c *Config) { c.Sync.MinPublishDate = "01.02.2024" }, "min_publish_date"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestMinPublishTime(t *testing.T) {
	sc := &SyncConfig{}
	if !sc.MinPublishTime().IsZero() {
		t.Error("empty floor should be the zero time")
	}

	sc.MinPublishDate = "2024-01-01T00:00:00+02:00"
	got := sc.MinPublishTime()
	want := time.Date(2023, 12, 31, 22, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("MinPublishTime = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("floor not in UTC: %v", got.Location())
	}
}
