package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for designed (non-failure) pipeline outcomes.
var (
	ErrRunBudget    = errors.New("run budget exhausted")
	ErrNoContent    = errors.New("no extractable content")
	ErrUnauthorized = errors.New("missing or invalid sync credential")
)

// SourceFetchError wraps a network or HTTP failure reaching an adapter's
// upstream. The orchestrator isolates it to that source and continues.
type SourceFetchError struct {
	Source SourceName
	URL    string
	Err    error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("source %s: fetch %s: %v", e.Source, e.URL, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// ParseError wraps a malformed payload or an unparseable date. The offending
// item is dropped; the batch continues.
type ParseError struct {
	Source SourceName
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("source %s: parse %s=%q: %v", e.Source, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("source %s: parse: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ScrapeError is a soft failure: the target page is unreachable or yielded no
// extractable content. Callers fall back to the adapter-supplied summary.
type ScrapeError struct {
	URL string
	Err error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s: %v", e.URL, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// EnrichmentError is a hard per-article failure: either the generation call
// errored or its output failed structural validation. There is no fallback to
// un-rewritten text.
type EnrichmentError struct {
	Stage  string // "translate" or "generate"
	Reason string
	Err    error
}

func (e *EnrichmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("enrichment %s: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("enrichment %s: %s", e.Stage, e.Reason)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// UploadError is a soft per-image failure; the batch proceeds without the
// mapping and downstream consumers keep the original URL.
type UploadError struct {
	URL string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.URL, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// StoreError wraps a content store failure. A write failure hard-fails that
// article; retry is left to the next scheduled run.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
