package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Fetcher.Type != "http" {
		t.Errorf("fetcher.type = %q", cfg.Fetcher.Type)
	}
	if cfg.Sync.MaxArticlesPerRun != 10 {
		t.Errorf("sync.max_articles_per_run = %d", cfg.Sync.MaxArticlesPerRun)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TESLAWIRE_AI_MODEL", "env-model")
	t.Setenv("TESLAWIRE_AI_API_KEY", "env-api-key")
	t.Setenv("TESLAWIRE_ASSETS_TOKEN", "env-asset-token")
	t.Setenv("TESLAWIRE_SERVER_SYNC_SECRET", "env-secret")
	t.Setenv("TESLAWIRE_STORE_DATABASE", "env-db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if cfg.AI.Model != "env-model" {
		t.Errorf("ai.model = %q", cfg.AI.Model)
	}
	// Env-only keys with no yaml presence must still land: secrets are
	// exactly the values operators never put in the config file.
	if cfg.AI.APIKey != "env-api-key" {
		t.Errorf("ai.api_key from env lost: got %q", cfg.AI.APIKey)
	}
	if cfg.Assets.Token != "env-asset-token" {
		t.Errorf("assets.token from env lost: got %q", cfg.Assets.Token)
	}
	if cfg.Server.SyncSecret != "env-secret" {
		t.Errorf("server.sync_secret from env lost: got %q", cfg.Server.SyncSecret)
	}
	if cfg.Store.Database != "env-db" {
		t.Errorf("store.database = %q", cfg.Store.Database)
	}
}

func TestLoadFilePlusEnvPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "teslawire.yaml")
	yaml := []byte("ai:\n  model: file-model\n  api_key: file-key\nserver:\n  port: 9999\n")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TESLAWIRE_AI_MODEL", "env-model")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.AI.Model != "env-model" {
		t.Errorf("env must beat file: ai.model = %q", cfg.AI.Model)
	}
	if cfg.AI.APIKey != "file-key" {
		t.Errorf("ai.api_key = %q", cfg.AI.APIKey)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d", cfg.Server.Port)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for an explicitly named missing file")
	}
}
