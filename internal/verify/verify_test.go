package verify

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/modurecruit/snspick/internal/scrape"
)

// stubScraper scripts one platform's behavior per test.
type stubScraper struct {
	platform scrape.Platform
	value    int64
	err      error
	calls    int
}

func (s *stubScraper) Platform() scrape.Platform { return s.platform }

func (s *stubScraper) ValidateURL(raw string) error {
	if raw == "invalid" {
		return scrape.ErrForeignURL
	}
	return nil
}
func (s *stubScraper) ExtractHandle(raw string) (string, error) { return "handle", nil }

func (s *stubScraper) ProfileURL(handle string) string { return "https://example.test/" + handle }
func (s *stubScraper) Scrape(_ context.Context, _ string) (*scrape.Metric, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &scrape.Metric{
		Platform: s.platform,
		Handle:   "handle",
		Kind:     s.platform.MetricKind(),
		Value:    s.value,
	}, nil
}

func testSet(stubs ...*stubScraper) scrape.Set {
	set := scrape.Set{}
	for _, s := range stubs {
		set[s.platform] = s
	}
	return set
}

func fastConfig() Config {
	return Config{Attempts: 3, BaseDelay: time.Millisecond}
}

func TestVerify_SinglePlatformAboveThreshold(t *testing.T) {
	// WHAT: 600 Threads followers against a 500 threshold passes, and the
	// score caps at 100.
	v := New(testSet(&stubScraper{platform: scrape.Threads, value: 600}),
		DefaultCriteria(), fastConfig(), nil)

	res := v.Verify(context.Background(), "a@b.c", URLs{Threads: "https://www.threads.net/@u"})
	if !res.MeetsAllCriteria {
		t.Error("600 >= 500 should meet all supplied criteria")
	}
	if ok, supplied := res.MeetsCriteria[scrape.Threads]; !supplied || !ok {
		t.Errorf("MeetsCriteria = %v", res.MeetsCriteria)
	}
	if len(res.MeetsCriteria) != 1 {
		t.Errorf("unsupplied platforms must not appear: %v", res.MeetsCriteria)
	}
	if res.Score != 100 {
		t.Errorf("score = %v, want 100 (capped)", res.Score)
	}
}

func TestVerify_OrAcrossPlatforms(t *testing.T) {
	// WHAT: One passing platform with one failing leaves MeetsAllCriteria
	// false while the per-platform map tells the two apart.
	blog := &stubScraper{platform: scrape.NaverBlog, value: 150}
	insta := &stubScraper{platform: scrape.Instagram, value: 1500}
	v := New(testSet(blog, insta), DefaultCriteria(), fastConfig(), nil)

	res := v.Verify(context.Background(), "a@b.c", URLs{
		NaverBlog: "https://blog.naver.com/u",
		Instagram: "https://www.instagram.com/u",
	})
	if res.MeetsAllCriteria {
		t.Error("150 < 300 visitors: not all criteria met")
	}
	if res.MeetsCriteria[scrape.NaverBlog] {
		t.Error("blog should fail its threshold")
	}
	if !res.MeetsCriteria[scrape.Instagram] {
		t.Error("instagram should pass its threshold")
	}

	// Score: mean of 150/300×100=50 and min(100, 1500/1000×100)=100.
	if got, want := res.Score, 75.0; math.Abs(got-want) > 0.01 {
		t.Errorf("score = %v, want %v", got, want)
	}
}

func TestVerify_RetriesThenInvalid(t *testing.T) {
	// WHAT: A scraper that fails every attempt yields an invalid profile
	// carrying the error, after exactly the configured attempt count.
	stub := &stubScraper{platform: scrape.Instagram, err: errors.New("http 404")}
	v := New(testSet(stub), DefaultCriteria(), fastConfig(), nil)

	res := v.Verify(context.Background(), "a@b.c", URLs{Instagram: "https://www.instagram.com/gone"})
	if stub.calls != 3 {
		t.Errorf("scrape calls = %d, want 3", stub.calls)
	}
	p := res.Profile(scrape.Instagram)
	if p == nil || p.Valid {
		t.Fatalf("profile should be present and invalid: %+v", p)
	}
	if p.ErrorMessage == "" {
		t.Error("error message should carry the scrape failure")
	}
	if res.MeetsCriteria[scrape.Instagram] {
		t.Error("an invalid profile never meets criteria")
	}
	if res.Score != 0 {
		t.Errorf("score = %v, want 0 with no valid profiles", res.Score)
	}
}

func TestVerify_InvalidURLSkipsScrape(t *testing.T) {
	// WHAT: URL validation failure becomes the profile error without a
	// single fetch.
	stub := &stubScraper{platform: scrape.Threads, value: 900}
	v := New(testSet(stub), DefaultCriteria(), fastConfig(), nil)

	res := v.Verify(context.Background(), "a@b.c", URLs{Threads: "invalid"})
	if stub.calls != 0 {
		t.Errorf("scrape calls = %d, want 0", stub.calls)
	}
	p := res.Profile(scrape.Threads)
	if p == nil || p.Valid || p.ErrorMessage == "" {
		t.Errorf("profile = %+v", p)
	}
}

func TestVerify_NoURLs(t *testing.T) {
	// WHAT: Zero supplied URLs means nothing was verified: no profiles,
	// MeetsAllCriteria false, score 0.
	v := New(testSet(), DefaultCriteria(), fastConfig(), nil)
	res := v.Verify(context.Background(), "a@b.c", URLs{})
	if res.MeetsAllCriteria {
		t.Error("no supplied platform cannot meet all criteria")
	}
	if len(res.Profiles) != 0 || len(res.MeetsCriteria) != 0 || res.Score != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestVerifyWith_CriteriaOverride(t *testing.T) {
	// WHAT: Per-call criteria replace the process defaults.
	stub := &stubScraper{platform: scrape.Instagram, value: 700}
	v := New(testSet(stub), DefaultCriteria(), fastConfig(), nil)

	strict := Criteria{NaverBlogVisitors: 300, InstagramFollowers: 5000, ThreadsFollowers: 500}
	res := v.VerifyWith(context.Background(), "a@b.c", URLs{Instagram: "https://www.instagram.com/u"}, strict)
	if res.MeetsCriteria[scrape.Instagram] {
		t.Error("700 < 5000 under the override")
	}
}

func TestRecord_RoundTrip(t *testing.T) {
	// WHAT: A verification survives persistence encoding intact.
	v := New(testSet(&stubScraper{platform: scrape.Threads, value: 600}),
		DefaultCriteria(), fastConfig(), nil)
	orig := v.Verify(context.Background(), "a@b.c", URLs{Threads: "https://www.threads.net/@u"})

	rec, err := ToRecord(orig)
	if err != nil {
		t.Fatalf("to record: %v", err)
	}
	back, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("from record: %v", err)
	}
	if back.ApplicantEmail != orig.ApplicantEmail ||
		back.MeetsAllCriteria != orig.MeetsAllCriteria ||
		back.Score != orig.Score ||
		len(back.Profiles) != len(orig.Profiles) {
		t.Errorf("round trip drifted: %+v vs %+v", back, orig)
	}
	if back.MeetsCriteria[scrape.Threads] != orig.MeetsCriteria[scrape.Threads] {
		t.Error("criteria map drifted")
	}
}

func TestFresh(t *testing.T) {
	// WHAT: TTL freshness for the batch cache.
	now := time.Now()
	rec, _ := ToRecord(&Verification{VerifiedAt: now.Add(-time.Hour).UnixMilli()})

	if !Fresh(rec, 6*time.Hour, now) {
		t.Error("1h-old record with 6h TTL is fresh")
	}
	if Fresh(rec, 30*time.Minute, now) {
		t.Error("1h-old record with 30m TTL is stale")
	}
	if Fresh(nil, 6*time.Hour, now) {
		t.Error("nil record is never fresh")
	}
	if Fresh(rec, 0, now) {
		t.Error("zero TTL disables the cache")
	}
}

func TestCriteriaMerge(t *testing.T) {
	// WHAT: Zero thresholds fall back to the other set's values.
	partial := Criteria{InstagramFollowers: 2000}
	merged := partial.Merge(DefaultCriteria())
	if merged.InstagramFollowers != 2000 {
		t.Errorf("override lost: %d", merged.InstagramFollowers)
	}
	if merged.NaverBlogVisitors != 300 || merged.ThreadsFollowers != 500 {
		t.Errorf("defaults not filled: %+v", merged)
	}
}
