package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var igHosts = map[string]bool{
	"instagram.com":     true,
	"www.instagram.com": true,
	"m.instagram.com":   true,
}

// igHandleRe: letters, digits, dots, underscores, max 30 chars.
var igHandleRe = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)

// igReserved path segments that are never profiles.
var igReserved = map[string]bool{
	"p": true, "reel": true, "reels": true, "stories": true,
	"explore": true, "accounts": true, "direct": true,
}

// InstagramScraper measures Instagram follower counts from the public
// profile page.
type InstagramScraper struct {
	base
}

// NewInstagram creates the Instagram scraper. render may be nil; when set
// it is used as a headless fallback for bodies the login wall left empty.
func NewInstagram(fetch, render FetchFunc) *InstagramScraper {
	return &InstagramScraper{base{
		platform: Instagram,
		fetch:    fetch,
		render:   render,
		chain: []Extractor{
			NewJSONPattern(`"edge_followed_by"\s*:\s*\{\s*"count"\s*:\s*(\d+)`),
			NewJSONPattern(`"follower_count"\s*:\s*(\d+)`),
			NewTextPattern(`팔로워\s*([\d,.]+[천만억KkMmBb]?)\s*명?`),
			NewTextPattern(`([\d,.]+[KkMmBb]?)\s*[Ff]ollowers`),
			NewMetaPattern(`([\d,.]+[KkMmBb]?)\s*[Ff]ollowers`),
			NewMetaPattern(`팔로워\s*([\d,.]+[천만억KkMmBb]?)\s*명?`),
			NewSelectorAttr(`header section ul li a span[title]`, "title"),
			NewSelectorText(`header section ul li button span`),
		},
	}}
}

// ValidateURL checks that raw is an instagram.com profile URL.
func (s *InstagramScraper) ValidateURL(raw string) error {
	u, err := parseProfileURL(raw, igHosts)
	if err != nil {
		return err
	}
	seg := strings.TrimPrefix(firstPathSegment(u), "@")
	if seg == "" || igReserved[strings.ToLower(seg)] {
		return fmt.Errorf("%w: no profile in path %q", ErrForeignURL, u.Path)
	}
	return nil
}

// ExtractHandle accepts a profile URL, an "@handle", or a bare handle.
func (s *InstagramScraper) ExtractHandle(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if h, ok := strings.CutPrefix(raw, "@"); ok {
		return checkHandle(h, igHandleRe)
	}
	if u, err := parseProfileURL(raw, igHosts); err == nil {
		seg := strings.TrimPrefix(firstPathSegment(u), "@")
		if igReserved[strings.ToLower(seg)] {
			return "", fmt.Errorf("%w: %q is not a profile path", ErrBadHandle, seg)
		}
		return checkHandle(seg, igHandleRe)
	}
	return bareHandle(raw, igHandleRe)
}

// ProfileURL builds the canonical profile URL for handle.
func (s *InstagramScraper) ProfileURL(handle string) string {
	return "https://www.instagram.com/" + handle + "/"
}

// Scrape fetches the profile page and extracts the follower count.
func (s *InstagramScraper) Scrape(ctx context.Context, handle string) (*Metric, error) {
	return s.scrape(ctx, handle, s.ProfileURL(handle))
}
