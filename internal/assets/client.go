// Package assets is the client for the external asset store: binary in,
// opaque asset reference out. References are turned into CDN URLs with
// width/height/format transform parameters.
package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/teslawire/teslawire/internal/config"
)

// Store uploads binaries and resolves asset references to serving URLs.
type Store interface {
	// Upload stores the payload and returns an opaque asset reference.
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)

	// URL builds a CDN URL for a reference. A zero dimension is omitted.
	URL(ref string, width, height int, format string) string
}

// HTTPStore talks to the asset store's upload endpoint.
type HTTPStore struct {
	cfg    *config.AssetsConfig
	client *http.Client
	logger *slog.Logger
}

// NewHTTPStore creates an asset store client.
func NewHTTPStore(cfg *config.AssetsConfig, logger *slog.Logger) *HTTPStore {
	return &HTTPStore{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("component", "asset_store"),
	}
}

// Upload posts the binary with its content type and filename. The store
// answers with the reference that CDN URLs are built from.
func (s *HTTPStore) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	endpoint := strings.TrimRight(s.cfg.Endpoint, "/") + "/assets?filename=" + url.QueryEscape(filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("asset upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("asset upload: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		Ref string `json:"ref"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode asset response: %w", err)
	}
	if result.Ref == "" {
		return "", fmt.Errorf("asset upload: empty reference in response")
	}

	s.logger.Debug("asset uploaded", "filename", filename, "ref", result.Ref, "size", len(data))
	return result.Ref, nil
}

// URL builds a CDN URL for the reference with optional transform parameters.
func (s *HTTPStore) URL(ref string, width, height int, format string) string {
	base := strings.TrimRight(s.cfg.CDNBaseURL, "/") + "/" + ref

	params := url.Values{}
	if width > 0 {
		params.Set("w", strconv.Itoa(width))
	}
	if height > 0 {
		params.Set("h", strconv.Itoa(height))
	}
	if format != "" {
		params.Set("fm", format)
	}
	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}
