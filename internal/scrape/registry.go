package scrape

// Set maps each platform to its scraper.
type Set map[Platform]Scraper

// NewSet builds the standard three-platform set sharing one fetch path.
// render may be nil to disable the headless fallback.
func NewSet(fetch, render FetchFunc) Set {
	return Set{
		NaverBlog: NewNaverBlog(fetch, render),
		Instagram: NewInstagram(fetch, render),
		Threads:   NewThreads(fetch, render),
	}
}
