package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/teslawire/teslawire/internal/assets"
	"github.com/teslawire/teslawire/internal/config"
	"github.com/teslawire/teslawire/internal/types"
)

// Uploader downloads harvested images and pushes them to the asset store.
// Uploads run sequentially with a fixed inter-call delay; a per-image failure
// is recorded and skipped, never aborting the batch. Consumers treat a
// missing mapping as "keep the original URL".
type Uploader struct {
	store  assets.Store
	cfg    *config.ImagesConfig
	client *http.Client
	logger *slog.Logger
}

// NewUploader creates an image uploader backed by the given asset store.
func NewUploader(store assets.Store, cfg *config.ImagesConfig, logger *slog.Logger) *Uploader {
	return &Uploader{
		store:  store,
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger.With("component", "image_uploader"),
	}
}

// UploadAll mirrors each external image into the asset store and returns the
// original-URL to asset-ref mapping. At most MaxPerBody images are taken per
// call; URLs beyond the cap and failed URLs are simply absent, and downstream
// consumers keep their original source.
func (u *Uploader) UploadAll(ctx context.Context, urls []string) map[string]string {
	if u.cfg.MaxPerBody > 0 && len(urls) > u.cfg.MaxPerBody {
		u.logger.Debug("image list capped", "total", len(urls), "cap", u.cfg.MaxPerBody)
		urls = urls[:u.cfg.MaxPerBody]
	}

	mapping := make(map[string]string, len(urls))

	for i, imageURL := range urls {
		if i > 0 && u.cfg.UploadDelay > 0 {
			select {
			case <-time.After(u.cfg.UploadDelay):
			case <-ctx.Done():
				u.logger.Warn("image upload batch cut short", "done", i, "total", len(urls))
				return mapping
			}
		}

		ref, err := u.uploadOne(ctx, imageURL)
		if err != nil {
			u.logger.Warn("image upload failed", "url", imageURL, "error", err)
			continue
		}
		mapping[imageURL] = ref
	}

	return mapping
}

// uploadOne downloads a single image and stores it.
func (u *Uploader) uploadOne(ctx context.Context, imageURL string) (string, error) {
	data, contentType, err := u.download(ctx, imageURL)
	if err != nil {
		return "", &types.UploadError{URL: imageURL, Err: err}
	}

	ref, err := u.store.Upload(ctx, filenameFor(imageURL, contentType), contentType, data)
	if err != nil {
		return "", &types.UploadError{URL: imageURL, Err: err}
	}
	return ref, nil
}

// download fetches the image bytes, enforcing the configured size cap.
func (u *Uploader) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx > 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("not an image: content type %q", contentType)
	}

	maxBytes := u.cfg.MaxSizeMB * 1024 * 1024
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("image exceeds %d MB limit", u.cfg.MaxSizeMB)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image body")
	}

	return data, contentType, nil
}

// filenameFor derives an upload filename from the source URL, adding an
// extension from the content type when the path has none.
func filenameFor(imageURL, contentType string) string {
	name := "image"
	if u, err := url.Parse(imageURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			name = base
		}
	}
	if path.Ext(name) == "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			name += exts[0]
		}
	}
	return name
}
