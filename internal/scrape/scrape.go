package scrape

import (
	"context"
	"errors"
)

// ErrMetricNotFound is returned when a profile page was fetched but no
// extraction strategy produced a positive count. The profile may be
// private, empty, or nonexistent.
var ErrMetricNotFound = errors.New("scrape: metric not found on page")

// ErrForeignURL is returned when a URL does not belong to the scraper's
// platform domain.
var ErrForeignURL = errors.New("scrape: URL does not belong to this platform")

// ErrBadHandle is returned when a handle cannot be extracted from the input.
var ErrBadHandle = errors.New("scrape: cannot extract a handle")

// Metric is a successfully measured profile metric.
type Metric struct {
	Platform Platform   `json:"platform"`
	Handle   string     `json:"handle"`
	Kind     MetricKind `json:"kind"`
	Value    int64      `json:"value"`
}

// Scraper measures one platform.
//
// ValidateURL and ExtractHandle are pure; Scrape performs a single fetch
// attempt with no internal retry; the verifier owns the retry policy.
type Scraper interface {
	Platform() Platform
	// ValidateURL checks that raw is a profile URL on this platform's domain.
	ValidateURL(raw string) error
	// ExtractHandle pulls the canonical handle out of a profile URL,
	// an "@handle" form, or a bare handle.
	ExtractHandle(raw string) (string, error)
	// ProfileURL builds the canonical profile URL for a handle.
	ProfileURL(handle string) string
	// Scrape fetches the profile page for handle and extracts the metric.
	Scrape(ctx context.Context, handle string) (*Metric, error)
}

// FetchFunc retrieves the body of a page. The plain HTTP path comes from
// internal/fetch; a second FetchFunc backed by headless Chrome can be
// supplied as a fallback for JS-rendered profiles.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)
