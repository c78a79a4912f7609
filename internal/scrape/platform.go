// Package scrape fetches public SNS profile pages and extracts an influence
// metric (follower or visitor count) using an ordered chain of extraction
// strategies: embedded JSON, text patterns, meta description, CSS selectors.
//
// One Scraper per platform; all share the same fetcher and strategy
// machinery and differ only in URL rules and patterns.
package scrape

// Platform identifies a supported SNS platform.
type Platform string

const (
	NaverBlog Platform = "naver_blog"
	Instagram Platform = "instagram"
	Threads   Platform = "threads"
)

// MetricKind names what a platform's metric counts.
type MetricKind string

const (
	Visitors  MetricKind = "visitors"
	Followers MetricKind = "followers"
)

// All returns the supported platforms in canonical order.
func All() []Platform {
	return []Platform{NaverBlog, Instagram, Threads}
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case NaverBlog, Instagram, Threads:
		return true
	}
	return false
}

// DisplayName returns the Korean display name used in reason strings and
// spreadsheet write-back.
func (p Platform) DisplayName() string {
	switch p {
	case NaverBlog:
		return "네이버 블로그"
	case Instagram:
		return "인스타그램"
	case Threads:
		return "스레드"
	}
	return string(p)
}

// MetricKind returns the metric a platform is measured by.
func (p Platform) MetricKind() MetricKind {
	if p == NaverBlog {
		return Visitors
	}
	return Followers
}

// MetricLabel returns the Korean label for the platform metric, used when
// composing rejection reasons ("일 방문자" / "팔로워").
func (p Platform) MetricLabel() string {
	if p == NaverBlog {
		return "일 방문자"
	}
	return "팔로워"
}
