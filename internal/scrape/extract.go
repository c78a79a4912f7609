package scrape

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor is one strategy for pulling a count out of a profile page.
// Strategies are independent; the scraper runs them in priority order and
// the first positive count wins.
type Extractor interface {
	Name() string
	Extract(p *Page) (int64, bool)
}

// Page wraps a fetched profile body with a lazily built DOM. Parsing the
// DOM once lets the meta and selector strategies share the work.
type Page struct {
	Body []byte

	doc     *goquery.Document
	docErr  error
	text    string
	hasText bool
}

// NewPage wraps body for extraction.
func NewPage(body []byte) *Page {
	return &Page{Body: body}
}

// Doc parses the body into a goquery document on first use.
func (p *Page) Doc() (*goquery.Document, error) {
	if p.doc == nil && p.docErr == nil {
		p.doc, p.docErr = goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	}
	return p.doc, p.docErr
}

// Text returns the rendered text of the page (tags stripped).
func (p *Page) Text() string {
	if !p.hasText {
		if doc, err := p.Doc(); err == nil {
			p.text = doc.Text()
		} else {
			p.text = string(p.Body)
		}
		p.hasText = true
	}
	return p.text
}

// ExtractFirst runs the chain in order and returns the first positive count.
func ExtractFirst(chain []Extractor, p *Page) (int64, string, bool) {
	for _, e := range chain {
		if v, ok := e.Extract(p); ok && v > 0 {
			return v, e.Name(), true
		}
	}
	return 0, "", false
}

// JSONPattern matches a count inside embedded/structured JSON in the raw
// body (e.g. `"follower_count":12345`). Highest priority: these values are
// exact integers, no suffix normalization needed.
type JSONPattern struct {
	re *regexp.Regexp
}

// NewJSONPattern compiles a raw-body pattern whose first capture group is
// the count.
func NewJSONPattern(pattern string) *JSONPattern {
	return &JSONPattern{re: regexp.MustCompile(pattern)}
}

func (j *JSONPattern) Name() string { return "json" }

func (j *JSONPattern) Extract(p *Page) (int64, bool) {
	m := j.re.FindSubmatch(p.Body)
	if m == nil || len(m) < 2 {
		return 0, false
	}
	v, err := ParseCount(string(m[1]))
	if err != nil {
		return 0, false
	}
	return v, true
}

// TextPattern matches a localized count phrase in the page text
// (e.g. "팔로워 1.2만명", "12,345 followers").
type TextPattern struct {
	re *regexp.Regexp
}

// NewTextPattern compiles a text pattern whose first capture group is the
// (possibly suffixed) count.
func NewTextPattern(pattern string) *TextPattern {
	return &TextPattern{re: regexp.MustCompile(pattern)}
}

func (t *TextPattern) Name() string { return "text" }

func (t *TextPattern) Extract(p *Page) (int64, bool) {
	m := t.re.FindStringSubmatch(p.Text())
	if m == nil || len(m) < 2 {
		return 0, false
	}
	v, err := ParseCount(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// MetaPattern matches a count in <meta name="description"> or
// <meta property="og:description"> content.
type MetaPattern struct {
	re *regexp.Regexp
}

// NewMetaPattern compiles a meta-description pattern whose first capture
// group is the count.
func NewMetaPattern(pattern string) *MetaPattern {
	return &MetaPattern{re: regexp.MustCompile(pattern)}
}

func (m *MetaPattern) Name() string { return "meta" }

func (m *MetaPattern) Extract(p *Page) (int64, bool) {
	doc, err := p.Doc()
	if err != nil {
		return 0, false
	}
	var found int64
	ok := false
	doc.Find(`meta[name="description"], meta[property="og:description"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content, exists := s.Attr("content")
		if !exists {
			return true
		}
		sub := m.re.FindStringSubmatch(content)
		if sub == nil || len(sub) < 2 {
			return true
		}
		v, err := ParseCount(sub[1])
		if err != nil {
			return true
		}
		found, ok = v, true
		return false
	})
	return found, ok
}

// SelectorText reads the text of the first node matching a CSS selector.
// Lowest priority: selectors rot fastest when platforms restyle.
type SelectorText struct {
	selector string
}

// NewSelectorText builds a CSS-selector strategy.
func NewSelectorText(selector string) *SelectorText {
	return &SelectorText{selector: selector}
}

func (s *SelectorText) Name() string { return "selector" }

func (s *SelectorText) Extract(p *Page) (int64, bool) {
	doc, err := p.Doc()
	if err != nil {
		return 0, false
	}
	var found int64
	ok := false
	doc.Find(s.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		v, err := ParseCount(strings.TrimSpace(sel.Text()))
		if err != nil {
			return true
		}
		found, ok = v, true
		return false
	})
	return found, ok
}

// SelectorAttr reads an attribute of the first node matching a CSS
// selector (e.g. Instagram keeps the exact follower count in a title
// attribute while the visible text is abbreviated).
type SelectorAttr struct {
	selector string
	attr     string
}

// NewSelectorAttr builds an attribute-reading selector strategy.
func NewSelectorAttr(selector, attr string) *SelectorAttr {
	return &SelectorAttr{selector: selector, attr: attr}
}

func (s *SelectorAttr) Name() string { return "selector-attr" }

func (s *SelectorAttr) Extract(p *Page) (int64, bool) {
	doc, err := p.Doc()
	if err != nil {
		return 0, false
	}
	var found int64
	ok := false
	doc.Find(s.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw, exists := sel.Attr(s.attr)
		if !exists {
			return true
		}
		v, err := ParseCount(strings.TrimSpace(raw))
		if err != nil {
			return true
		}
		found, ok = v, true
		return false
	})
	return found, ok
}
