package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var nbHosts = map[string]bool{
	"blog.naver.com":   true,
	"m.blog.naver.com": true,
}

// Naver blog IDs: letters, digits, underscore, hyphen.
var nbHandleRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

// NaverBlogScraper measures a Naver blog's daily visitor count. The mobile
// page renders the "오늘 N · 전체 M" counter without JS, so it is the
// canonical fetch target.
type NaverBlogScraper struct {
	base
}

// NewNaverBlog creates the Naver blog scraper. render may be nil.
func NewNaverBlog(fetch, render FetchFunc) *NaverBlogScraper {
	return &NaverBlogScraper{base{
		platform: NaverBlog,
		fetch:    fetch,
		render:   render,
		chain: []Extractor{
			NewJSONPattern(`"visitorcnt"\s*:\s*"?(\d+)"?`),
			NewJSONPattern(`"todayVisitorCount"\s*:\s*"?(\d+)"?`),
			NewTextPattern(`오늘\s*([\d,]+)`),
			NewTextPattern(`방문자\s*수?\s*:?\s*([\d,]+)`),
			NewMetaPattern(`방문자\s*([\d,]+)`),
			NewSelectorText(`.visitor_num, .today_visitor, #visitor_cnt`),
		},
	}}
}

// ValidateURL checks that raw is a blog.naver.com URL carrying a blog ID,
// either as the first path segment or a blogId query parameter.
func (s *NaverBlogScraper) ValidateURL(raw string) error {
	u, err := parseProfileURL(raw, nbHosts)
	if err != nil {
		return err
	}
	if id := u.Query().Get("blogId"); id != "" {
		_, err := checkHandle(id, nbHandleRe)
		return err
	}
	seg := firstPathSegment(u)
	if seg == "" || strings.HasSuffix(seg, ".naver") {
		return fmt.Errorf("%w: no blog ID in %q", ErrForeignURL, raw)
	}
	_, err = checkHandle(seg, nbHandleRe)
	return err
}

// ExtractHandle accepts a blog URL (path or blogId query form) or a bare
// blog ID.
func (s *NaverBlogScraper) ExtractHandle(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if u, err := parseProfileURL(raw, nbHosts); err == nil {
		if id := u.Query().Get("blogId"); id != "" {
			return checkHandle(id, nbHandleRe)
		}
		seg := firstPathSegment(u)
		if seg == "" || strings.HasSuffix(seg, ".naver") {
			return "", fmt.Errorf("%w: no blog ID in %q", ErrBadHandle, raw)
		}
		return checkHandle(seg, nbHandleRe)
	}
	return bareHandle(raw, nbHandleRe)
}

// ProfileURL builds the mobile blog URL for a blog ID.
func (s *NaverBlogScraper) ProfileURL(handle string) string {
	return "https://m.blog.naver.com/" + handle
}

// Scrape fetches the blog page and extracts the daily visitor count.
func (s *NaverBlogScraper) Scrape(ctx context.Context, handle string) (*Metric, error) {
	return s.scrape(ctx, handle, s.ProfileURL(handle))
}
