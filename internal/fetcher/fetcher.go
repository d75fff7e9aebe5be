package fetcher

import (
	"bytes"
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Response is the result of fetching a URL.
type Response struct {
	URL         string
	FinalURL    string // after redirects
	StatusCode  int
	Body        []byte
	ContentType string
	FromCache   bool
}

// Document parses the response body as HTML.
func (r *Response) Document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
}

// Fetcher is the interface for all fetch implementations.
type Fetcher interface {
	// Get retrieves the content at the given URL.
	Get(ctx context.Context, url string) (*Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}
