package verify

import (
	"github.com/modurecruit/snspick/internal/scrape"
)

// Criteria holds the minimum-metric threshold per platform.
type Criteria struct {
	NaverBlogVisitors  int64 `yaml:"naver_blog_visitors" json:"naverBlogVisitors"`
	InstagramFollowers int64 `yaml:"instagram_followers" json:"instagramFollowers"`
	ThreadsFollowers   int64 `yaml:"threads_followers" json:"threadsFollowers"`
}

// DefaultCriteria returns the standing campaign thresholds.
func DefaultCriteria() Criteria {
	return Criteria{
		NaverBlogVisitors:  300,
		InstagramFollowers: 1000,
		ThreadsFollowers:   500,
	}
}

// Threshold returns the minimum metric for a platform.
func (c Criteria) Threshold(p scrape.Platform) int64 {
	switch p {
	case scrape.NaverBlog:
		return c.NaverBlogVisitors
	case scrape.Instagram:
		return c.InstagramFollowers
	case scrape.Threads:
		return c.ThreadsFollowers
	}
	return 0
}

// Merge fills zero-valued thresholds from other. Lets an API caller
// override a subset of the configured criteria.
func (c Criteria) Merge(other Criteria) Criteria {
	if c.NaverBlogVisitors == 0 {
		c.NaverBlogVisitors = other.NaverBlogVisitors
	}
	if c.InstagramFollowers == 0 {
		c.InstagramFollowers = other.InstagramFollowers
	}
	if c.ThreadsFollowers == 0 {
		c.ThreadsFollowers = other.ThreadsFollowers
	}
	return c
}

// URLs carries the profile URLs an applicant supplied. Empty fields mean
// the platform was not submitted and is excluded from the requirement.
type URLs struct {
	NaverBlog string `json:"naverBlog,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Threads   string `json:"threads,omitempty"`
}

// ByPlatform returns the URL supplied for p, or "".
func (u URLs) ByPlatform(p scrape.Platform) string {
	switch p {
	case scrape.NaverBlog:
		return u.NaverBlog
	case scrape.Instagram:
		return u.Instagram
	case scrape.Threads:
		return u.Threads
	}
	return ""
}

// Empty reports whether no URL was supplied at all.
func (u URLs) Empty() bool {
	return u.NaverBlog == "" && u.Instagram == "" && u.Threads == ""
}

// SNSProfile is one platform's measurement for one verification attempt.
// Immutable once produced.
type SNSProfile struct {
	Platform     scrape.Platform   `json:"platform"`
	URL          string            `json:"url"`
	Handle       string            `json:"handle,omitempty"`
	MetricKind   scrape.MetricKind `json:"metricKind"`
	MetricValue  int64             `json:"metricValue"`
	CheckedAt    int64             `json:"checkedAt"`
	Valid        bool              `json:"valid"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
}

// Verification aggregates an applicant's profiles against criteria.
type Verification struct {
	ApplicantEmail string       `json:"applicantEmail"`
	Profiles       []SNSProfile `json:"profiles"`
	// MeetsCriteria has an entry for every supplied platform only.
	MeetsCriteria    map[scrape.Platform]bool `json:"meetsCriteria"`
	MeetsAllCriteria bool                     `json:"meetsAllCriteria"`
	// Score is 0–100: mean over valid profiles of min(100, metric/threshold×100).
	Score      float64 `json:"score"`
	VerifiedAt int64   `json:"verifiedAt"`
}

// Supplied reports whether platform p was part of this verification.
func (v *Verification) Supplied(p scrape.Platform) bool {
	_, ok := v.MeetsCriteria[p]
	return ok
}

// Profile returns the profile entry for p, or nil.
func (v *Verification) Profile(p scrape.Platform) *SNSProfile {
	for i := range v.Profiles {
		if v.Profiles[i].Platform == p {
			return &v.Profiles[i]
		}
	}
	return nil
}
