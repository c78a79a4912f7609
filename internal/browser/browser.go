// Package browser renders JS-heavy profile pages through headless Chrome
// with stealth patches applied. It is the fallback acquisition path for
// platforms whose plain HTTP body hides the counters behind a script
// bootstrap.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Config configures the renderer.
type Config struct {
	// Enabled turns the headless fallback on.
	Enabled bool `yaml:"enabled"`
	// RemoteURL is the WebSocket URL of an external Chrome. Empty = launch
	// a local one via the rod launcher.
	RemoteURL string `yaml:"remote_url"`
	// NavigateTimeout bounds one page load. Default: 25s.
	NavigateTimeout time.Duration `yaml:"navigate_timeout"`
	// SettleDelay waits for client-side rendering after load. Default: 2s.
	SettleDelay time.Duration `yaml:"settle_delay"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 25 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Renderer lazily connects to Chrome on first use and keeps the browser
// alive between renders.
type Renderer struct {
	cfg Config

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// New creates a Renderer. Chrome is not launched until the first Render.
func New(cfg Config) *Renderer {
	cfg.defaults()
	return &Renderer{cfg: cfg}
}

func (r *Renderer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	var wsURL string
	if r.cfg.RemoteURL != "" {
		wsURL = r.cfg.RemoteURL
	} else {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		r.lnch = l
		wsURL = u
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	r.browser = b
	r.cfg.Logger.Info("browser connected", "remote", r.cfg.RemoteURL != "")
	return b, nil
}

// Render navigates to url with a stealth page and returns the HTML after
// the page settles.
func (r *Renderer) Render(ctx context.Context, url string) ([]byte, error) {
	b, err := r.connect()
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(r.cfg.NavigateTimeout)
	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("browser: wait load %s: %w", url, err)
	}

	// Counters render client-side after load on Instagram/Threads.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(r.cfg.SettleDelay):
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("browser: read html: %w", err)
	}
	return []byte(html), nil
}

// Close shuts down the browser and any launched Chrome process.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		r.browser.Close()
		r.browser = nil
	}
	if r.lnch != nil {
		r.lnch.Cleanup()
		r.lnch = nil
	}
}
