package scrape

import "testing"

func TestExtractFirst_ChainPriority(t *testing.T) {
	// WHAT: The first strategy producing a positive count wins.
	// WHY: Embedded JSON carries exact values; text and selectors are
	// abbreviated fallbacks and must not override it.
	body := []byte(`<html><head>
		<meta property="og:description" content="1.2K Followers">
		</head><body>
		<script>{"follower_count":1234}</script>
		<span>1.2K followers</span>
		</body></html>`)

	chain := []Extractor{
		NewJSONPattern(`"follower_count"\s*:\s*(\d+)`),
		NewTextPattern(`([\d,.]+[KkMmBb]?)\s*[Ff]ollowers`),
		NewMetaPattern(`([\d,.]+[KkMmBb]?)\s*[Ff]ollowers`),
	}
	v, name, ok := ExtractFirst(chain, NewPage(body))
	if !ok {
		t.Fatal("no strategy matched")
	}
	if v != 1234 {
		t.Errorf("value = %d, want 1234 (exact JSON, not abbreviated text)", v)
	}
	if name != "json" {
		t.Errorf("strategy = %q, want json", name)
	}
}

func TestExtractFirst_FallsThrough(t *testing.T) {
	// WHAT: When the JSON strategy finds nothing, later strategies run.
	body := []byte(`<html><head>
		<meta name="description" content="팔로워 2.5만명, 게시물 10개">
		</head><body></body></html>`)

	chain := []Extractor{
		NewJSONPattern(`"follower_count"\s*:\s*(\d+)`),
		NewMetaPattern(`팔로워\s*([\d,.]+[천만억KkMmBb]?)\s*명?`),
	}
	v, name, ok := ExtractFirst(chain, NewPage(body))
	if !ok {
		t.Fatal("meta strategy should have matched")
	}
	if v != 25000 {
		t.Errorf("value = %d, want 25000", v)
	}
	if name != "meta" {
		t.Errorf("strategy = %q, want meta", name)
	}
}

func TestSelectorAttr(t *testing.T) {
	// WHAT: An attribute holding the exact count is readable even when
	// the visible text is abbreviated.
	body := []byte(`<html><body><header><section><ul><li>
		<a href="/x/followers/"><span title="12,345">12.3K</span></a>
		</li></ul></section></header></body></html>`)

	e := NewSelectorAttr(`header section ul li a span[title]`, "title")
	v, ok := e.Extract(NewPage(body))
	if !ok || v != 12345 {
		t.Errorf("got (%d, %v), want (12345, true)", v, ok)
	}
}

func TestExtract_NoMatch(t *testing.T) {
	// WHAT: A page with no recognizable count matches nothing.
	body := []byte(`<html><body><p>로그인이 필요합니다</p></body></html>`)
	chain := []Extractor{
		NewJSONPattern(`"follower_count"\s*:\s*(\d+)`),
		NewTextPattern(`팔로워\s*([\d,.]+[천만억KkMmBb]?)\s*명?`),
		NewSelectorText(`header span`),
	}
	if _, _, ok := ExtractFirst(chain, NewPage(body)); ok {
		t.Error("should not match a login wall")
	}
}
