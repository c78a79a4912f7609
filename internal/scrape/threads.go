package scrape

import (
	"context"
	"regexp"
	"strings"
)

var thHosts = map[string]bool{
	"threads.net":     true,
	"www.threads.net": true,
	"threads.com":     true,
	"www.threads.com": true,
}

// Threads handles follow Instagram's rules.
var thHandleRe = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)

// ThreadsScraper measures Threads follower counts from the public profile
// page.
type ThreadsScraper struct {
	base
}

// NewThreads creates the Threads scraper. render may be nil.
func NewThreads(fetch, render FetchFunc) *ThreadsScraper {
	return &ThreadsScraper{base{
		platform: Threads,
		fetch:    fetch,
		render:   render,
		chain: []Extractor{
			NewJSONPattern(`"follower_count"\s*:\s*(\d+)`),
			NewJSONPattern(`"followers"\s*:\s*\{\s*"count"\s*:\s*(\d+)`),
			NewTextPattern(`팔로워\s*([\d,.]+[천만억KkMmBb]?)\s*명?`),
			NewTextPattern(`([\d,.]+[KkMmBb]?)\s*[Ff]ollowers`),
			NewMetaPattern(`([\d,.]+[KkMmBb]?)\s*[Ff]ollowers`),
			NewMetaPattern(`팔로워\s*([\d,.]+[천만억KkMmBb]?)\s*명?`),
			NewSelectorText(`div[role="link"] span span`),
		},
	}}
}

// ValidateURL checks that raw is a threads.net (or threads.com) profile URL.
func (s *ThreadsScraper) ValidateURL(raw string) error {
	u, err := parseProfileURL(raw, thHosts)
	if err != nil {
		return err
	}
	seg := strings.TrimPrefix(firstPathSegment(u), "@")
	if _, err := checkHandle(seg, thHandleRe); err != nil {
		return err
	}
	return nil
}

// ExtractHandle accepts a profile URL, an "@handle", or a bare handle.
// Threads profile paths always carry the "@" ("threads.net/@handle") but
// the bare form without it is tolerated.
func (s *ThreadsScraper) ExtractHandle(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if h, ok := strings.CutPrefix(raw, "@"); ok {
		return checkHandle(h, thHandleRe)
	}
	if u, err := parseProfileURL(raw, thHosts); err == nil {
		seg := strings.TrimPrefix(firstPathSegment(u), "@")
		return checkHandle(seg, thHandleRe)
	}
	return bareHandle(raw, thHandleRe)
}

// ProfileURL builds the canonical profile URL for handle.
func (s *ThreadsScraper) ProfileURL(handle string) string {
	return "https://www.threads.net/@" + handle
}

// Scrape fetches the profile page and extracts the follower count.
func (s *ThreadsScraper) Scrape(ctx context.Context, handle string) (*Metric, error) {
	return s.scrape(ctx, handle, s.ProfileURL(handle))
}
