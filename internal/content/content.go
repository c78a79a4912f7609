// Package content drafts campaign blog posts with the Gemini API.
//
// Scraped reference material arrives as raw HTML; it is sanitized and
// converted to Markdown before it enters the prompt so the model never
// sees scripts or tracking markup.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
	"google.golang.org/genai"
)

// Config configures the generator.
type Config struct {
	// APIKey for the Gemini API. Empty disables the endpoint.
	APIKey string `yaml:"-"`
	// Model name. Default: "gemini-2.0-flash".
	Model string `yaml:"model"`
	// MaxReferenceChars bounds how much converted reference material goes
	// into the prompt. Default: 8000.
	MaxReferenceChars int `yaml:"max_reference_chars"`
}

func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = "gemini-2.0-flash"
	}
	if c.MaxReferenceChars <= 0 {
		c.MaxReferenceChars = 8000
	}
}

// Request describes one draft.
type Request struct {
	// Title of the campaign or post.
	Title string `json:"title"`
	// Keywords to work into the copy.
	Keywords []string `json:"keywords,omitempty"`
	// Tone hint ("정보성", "후기" ...). Optional.
	Tone string `json:"tone,omitempty"`
	// ReferenceHTML is raw scraped material (e.g. the applicant's blog).
	ReferenceHTML string `json:"referenceHtml,omitempty"`
}

// Draft is a generated post.
type Draft struct {
	Title       string `json:"title"`
	Markdown    string `json:"markdown"`
	Model       string `json:"model"`
	GeneratedAt int64  `json:"generatedAt"`
}

// Generator produces drafts.
type Generator struct {
	client    *genai.Client
	config    Config
	sanitizer *bluemonday.Policy
	markdown  *converter.Converter
	logger    *slog.Logger
}

// New creates a Generator. Fails when the API key is missing.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Generator, error) {
	cfg.defaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("content: API key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("content: create client: %w", err)
	}

	return &Generator{
		client:    client,
		config:    cfg,
		sanitizer: bluemonday.UGCPolicy(),
		markdown: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
		logger: logger,
	}, nil
}

// Generate drafts a post for req.
func (g *Generator) Generate(ctx context.Context, req Request) (*Draft, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("content: title is required")
	}

	prompt, err := g.buildPrompt(req)
	if err != nil {
		return nil, err
	}

	result, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("content: generate: %w", err)
	}
	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("content: model returned no text")
	}

	g.logger.Info("draft generated", "title", req.Title, "model", g.config.Model, "len", len(text))

	return &Draft{
		Title:       req.Title,
		Markdown:    text,
		Model:       g.config.Model,
		GeneratedAt: time.Now().UnixMilli(),
	}, nil
}

func (g *Generator) buildPrompt(req Request) (string, error) {
	var b strings.Builder
	b.WriteString("다음 조건에 맞는 블로그 포스트 초안을 마크다운으로 작성해 주세요.\n\n")
	fmt.Fprintf(&b, "제목: %s\n", req.Title)
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "키워드: %s\n", strings.Join(req.Keywords, ", "))
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, "톤: %s\n", req.Tone)
	}

	if req.ReferenceHTML != "" {
		clean := g.sanitizer.Sanitize(req.ReferenceHTML)
		md, err := g.markdown.ConvertString(clean)
		if err != nil {
			return "", fmt.Errorf("content: convert reference: %w", err)
		}
		if len(md) > g.config.MaxReferenceChars {
			cut := g.config.MaxReferenceChars
			for cut > 0 && !utf8.RuneStart(md[cut]) {
				cut--
			}
			md = md[:cut]
		}
		b.WriteString("\n참고 자료:\n")
		b.WriteString(md)
		b.WriteString("\n")
	}

	b.WriteString("\n광고임을 밝히는 문구를 본문 끝에 포함해 주세요.")
	return b.String(), nil
}
