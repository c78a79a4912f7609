package scrape

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// base carries the machinery shared by the three platform scrapers.
type base struct {
	platform Platform
	fetch    FetchFunc
	render   FetchFunc // optional headless-Chrome fallback
	chain    []Extractor
}

func (b *base) Platform() Platform { return b.platform }

// scrape fetches profileURL and runs the extraction chain. When the plain
// HTTP body yields nothing and a renderer is configured, the page is
// re-fetched through headless Chrome once before giving up.
func (b *base) scrape(ctx context.Context, handle, profileURL string) (*Metric, error) {
	body, err := b.fetch(ctx, profileURL)
	if err != nil {
		return nil, err
	}

	if v, _, ok := ExtractFirst(b.chain, NewPage(body)); ok {
		return b.metric(handle, v), nil
	}

	if b.render != nil {
		body, err = b.render(ctx, profileURL)
		if err == nil {
			if v, _, ok := ExtractFirst(b.chain, NewPage(body)); ok {
				return b.metric(handle, v), nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %s %s", ErrMetricNotFound, b.platform, handle)
}

func (b *base) metric(handle string, value int64) *Metric {
	return &Metric{
		Platform: b.platform,
		Handle:   handle,
		Kind:     b.platform.MetricKind(),
		Value:    value,
	}
}

// parseProfileURL parses raw as a URL, tolerating a missing scheme
// ("www.instagram.com/foo"), and checks the host against hosts.
func parseProfileURL(raw string, hosts map[string]bool) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty URL", ErrForeignURL)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForeignURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrForeignURL, u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if !hosts[host] {
		return nil, fmt.Errorf("%w: host %q", ErrForeignURL, host)
	}
	return u, nil
}

// firstPathSegment returns the first non-empty path segment of u.
func firstPathSegment(u *url.URL) string {
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}

// checkHandle validates a candidate handle against re.
func checkHandle(handle string, re *regexp.Regexp) (string, error) {
	if handle == "" || !re.MatchString(handle) {
		return "", fmt.Errorf("%w: %q", ErrBadHandle, handle)
	}
	return handle, nil
}

// domainish suffixes that disqualify a string from being a bare handle.
var domainSuffixes = []string{".com", ".net", ".org", ".kr", ".io"}

// bareHandle accepts raw as a bare handle when it has no URL structure
// and matches the platform's handle pattern. Handles may contain dots
// (Instagram allows them), so only domain-looking suffixes disqualify.
func bareHandle(raw string, re *regexp.Regexp) (string, error) {
	if strings.Contains(raw, "/") || strings.Contains(raw, "://") {
		return "", fmt.Errorf("%w: %q", ErrBadHandle, raw)
	}
	lower := strings.ToLower(raw)
	for _, suf := range domainSuffixes {
		if strings.HasSuffix(lower, suf) {
			return "", fmt.Errorf("%w: %q looks like a domain", ErrBadHandle, raw)
		}
	}
	return checkHandle(raw, re)
}
