package scrape

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fixedFetch returns the same body for every URL.
func fixedFetch(body string) FetchFunc {
	return func(_ context.Context, _ string) ([]byte, error) {
		return []byte(body), nil
	}
}

func TestInstagram_ValidateURL(t *testing.T) {
	s := NewInstagram(nil, nil)
	valid := []string{
		"https://www.instagram.com/some_user",
		"https://instagram.com/some.user/",
		"http://m.instagram.com/user123",
		"www.instagram.com/some_user", // scheme-less input from a form field
	}
	for _, u := range valid {
		if err := s.ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q): %v", u, err)
		}
	}

	invalid := []string{
		"https://www.facebook.com/some_user",
		"https://www.instagram.com/",
		"https://www.instagram.com/p/abc123/", // post, not a profile
		"ftp://www.instagram.com/user",
		"",
	}
	for _, u := range invalid {
		if err := s.ValidateURL(u); err == nil {
			t.Errorf("ValidateURL(%q) should fail", u)
		}
	}
}

func TestInstagram_ExtractHandle(t *testing.T) {
	s := NewInstagram(nil, nil)
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.instagram.com/some_user/", "some_user"},
		{"https://instagram.com/@some_user", "some_user"},
		{"@some.user", "some.user"},
		{"bare_handle", "bare_handle"},
	}
	for _, tc := range cases {
		got, err := s.ExtractHandle(tc.in)
		if err != nil {
			t.Errorf("ExtractHandle(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ExtractHandle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	// Domain-looking strings are not handles even when they match the
	// character class.
	for _, in := range []string{"example.com", "facebook.com/user", ""} {
		if h, err := s.ExtractHandle(in); err == nil {
			t.Errorf("ExtractHandle(%q) = %q, want error", in, h)
		}
	}
}

func TestThreads_ExtractHandle(t *testing.T) {
	s := NewThreads(nil, nil)
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.threads.net/@some_user", "some_user"},
		{"https://threads.com/@some_user", "some_user"},
		{"@some_user", "some_user"},
		{"some_user", "some_user"},
	}
	for _, tc := range cases {
		got, err := s.ExtractHandle(tc.in)
		if err != nil {
			t.Errorf("ExtractHandle(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ExtractHandle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if err := s.ValidateURL("https://www.instagram.com/@some_user"); err == nil {
		t.Error("an instagram URL is foreign to the threads scraper")
	}
}

func TestNaverBlog_ExtractHandle(t *testing.T) {
	s := NewNaverBlog(nil, nil)
	cases := []struct {
		in   string
		want string
	}{
		{"https://blog.naver.com/myblog", "myblog"},
		{"https://m.blog.naver.com/myblog/223456", "myblog"},
		{"https://blog.naver.com/PostList.naver?blogId=myblog", "myblog"},
		{"myblog", "myblog"},
	}
	for _, tc := range cases {
		got, err := s.ExtractHandle(tc.in)
		if err != nil {
			t.Errorf("ExtractHandle(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ExtractHandle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	// PostList.naver without a blogId query has no blog ID.
	if _, err := s.ExtractHandle("https://blog.naver.com/PostList.naver"); err == nil {
		t.Error("service page without blogId should fail")
	}
}

func TestRoundTrip_HandleToProfileURL(t *testing.T) {
	// WHAT: ValidateURL(u)==nil implies the canonical profile URL built
	// from the extracted handle validates too.
	// WHY: The verifier always re-fetches through ProfileURL; a canonical
	// URL the validator rejects would strand valid applicants.
	inputs := map[Platform][]string{
		NaverBlog: {"https://blog.naver.com/myblog", "https://blog.naver.com/PostList.naver?blogId=myblog"},
		Instagram: {"https://www.instagram.com/some_user/", "https://instagram.com/some.user"},
		Threads:   {"https://www.threads.net/@some_user", "https://threads.com/@a.b"},
	}
	set := NewSet(nil, nil)
	for platform, urls := range inputs {
		s := set[platform]
		for _, u := range urls {
			if err := s.ValidateURL(u); err != nil {
				t.Fatalf("%s ValidateURL(%q): %v", platform, u, err)
			}
			h, err := s.ExtractHandle(u)
			if err != nil {
				t.Fatalf("%s ExtractHandle(%q): %v", platform, u, err)
			}
			canonical := s.ProfileURL(h)
			if err := s.ValidateURL(canonical); err != nil {
				t.Errorf("%s: canonical %q from %q fails validation: %v", platform, canonical, u, err)
			}
		}
	}
}

func TestScrape_InstagramJSON(t *testing.T) {
	// WHAT: A profile body with embedded follower JSON yields the metric.
	body := `<html><body><script>{"edge_followed_by":{"count":4321}}</script></body></html>`
	s := NewInstagram(fixedFetch(body), nil)
	m, err := s.Scrape(context.Background(), "some_user")
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if m.Value != 4321 || m.Kind != Followers || m.Platform != Instagram {
		t.Errorf("metric = %+v", m)
	}
}

func TestScrape_NaverBlogVisitors(t *testing.T) {
	// WHAT: The mobile blog page's visitor counter is extracted.
	body := `<html><body><div class="blog_info">오늘 523 · 전체 1,234,567</div></body></html>`
	s := NewNaverBlog(fixedFetch(body), nil)
	m, err := s.Scrape(context.Background(), "myblog")
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if m.Value != 523 || m.Kind != Visitors {
		t.Errorf("metric = %+v", m)
	}
}

func TestScrape_RenderFallback(t *testing.T) {
	// WHAT: When the plain fetch body has no metric and a renderer is
	// configured, the rendered body is tried before giving up.
	// WHY: Instagram and Threads serve an empty shell without JS.
	shell := `<html><body><div id="app"></div></body></html>`
	rendered := `<html><body><span>팔로워 1,500명</span></body></html>`

	var renderCalls int
	s := NewThreads(fixedFetch(shell), func(_ context.Context, _ string) ([]byte, error) {
		renderCalls++
		return []byte(rendered), nil
	})
	m, err := s.Scrape(context.Background(), "some_user")
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if m.Value != 1500 {
		t.Errorf("value = %d, want 1500", m.Value)
	}
	if renderCalls != 1 {
		t.Errorf("render calls = %d, want 1", renderCalls)
	}
}

func TestScrape_MetricNotFound(t *testing.T) {
	// WHAT: No strategy matching and no renderer yields ErrMetricNotFound.
	s := NewInstagram(fixedFetch(`<html><body>login required</body></html>`), nil)
	_, err := s.Scrape(context.Background(), "some_user")
	if !errors.Is(err, ErrMetricNotFound) {
		t.Errorf("err = %v, want ErrMetricNotFound", err)
	}
}

func TestScrape_FetchErrorPropagates(t *testing.T) {
	// WHAT: A transport failure is returned as-is so the retry policy can
	// distinguish it from a page that simply lacks the metric.
	boom := fmt.Errorf("connection refused")
	s := NewInstagram(func(_ context.Context, _ string) ([]byte, error) {
		return nil, boom
	}, nil)
	_, err := s.Scrape(context.Background(), "some_user")
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped fetch error", err)
	}
}
