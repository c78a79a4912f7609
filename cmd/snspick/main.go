package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/modurecruit/snspick/internal/browser"
	"github.com/modurecruit/snspick/internal/config"
	"github.com/modurecruit/snspick/internal/content"
	"github.com/modurecruit/snspick/internal/dbopen"
	"github.com/modurecruit/snspick/internal/fetch"
	"github.com/modurecruit/snspick/internal/mailer"
	"github.com/modurecruit/snspick/internal/processor"
	"github.com/modurecruit/snspick/internal/scheduler"
	"github.com/modurecruit/snspick/internal/scrape"
	"github.com/modurecruit/snspick/internal/selection"
	"github.com/modurecruit/snspick/internal/server"
	"github.com/modurecruit/snspick/internal/sheets"
	"github.com/modurecruit/snspick/internal/shield"
	"github.com/modurecruit/snspick/internal/store"
	"github.com/modurecruit/snspick/internal/verify"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	cfg, err := config.Load(env("SNSPICK_CONFIG", ""))
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	// Logging.
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Store.
	db, err := dbopen.Open(cfg.Database, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	st := store.New(db)
	if err := st.Init(); err != nil {
		slog.Error("init database", "error", err)
		os.Exit(1)
	}

	// Scrape pipeline: plain HTTP fetch, optional headless fallback.
	fetcher := fetch.New(fetch.Config{
		Timeout:   cfg.Fetch.Timeout,
		MaxBytes:  cfg.Fetch.MaxBytes,
		UserAgent: cfg.Fetch.UserAgent,
	})
	fetchFn := func(ctx context.Context, url string) ([]byte, error) {
		res, err := fetcher.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		return res.Body, nil
	}

	var renderFn scrape.FetchFunc
	var renderer *browser.Renderer
	if cfg.Browser.Enabled {
		bcfg := cfg.Browser
		bcfg.Logger = logger.With("component", "browser")
		renderer = browser.New(bcfg)
		defer renderer.Close()
		renderFn = renderer.Render
	}

	scrapers := scrape.NewSet(fetchFn, renderFn)

	verifier := verify.New(scrapers, cfg.Criteria, verify.Config{
		Attempts:    cfg.Verify.Attempts,
		BaseDelay:   cfg.Verify.BaseDelay,
		DelayFactor: cfg.Verify.DelayFactorMap(),
	}, logger.With("component", "verify"))

	selector := selection.New(cfg.Criteria)

	sheetsClient := sheets.NewClient(sheets.Config{
		BaseURL: cfg.Sheets.BaseURL,
		Timeout: cfg.Sheets.Timeout,
	})

	mail, err := mailer.New(&mailer.LogSender{Logger: logger.With("component", "mailer")}, cfg.Mail)
	if err != nil {
		slog.Error("mailer templates", "error", err)
		os.Exit(1)
	}

	proc := processor.New(st, verifier, selector, sheetsClient, mail,
		processor.Config{CacheTTL: cfg.Verify.CacheTTL},
		logger.With("component", "processor"))

	// Content generation is on only when a Gemini key is configured.
	var gen *content.Generator
	if cfg.Content.APIKey != "" {
		gen, err = content.New(ctx, cfg.Content, logger.With("component", "content"))
		if err != nil {
			slog.Error("content generator", "error", err)
			os.Exit(1)
		}
	}

	// Scheduled batch runs.
	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(proc, processor.Request{Sheet: cfg.Sheet},
			cfg.Scheduler, logger.With("component", "scheduler"))
		if err != nil {
			slog.Error("scheduler", "error", err)
			os.Exit(1)
		}
		sched.Start(ctx)
	}

	// Router.
	middlewares, rl := shield.DefaultStack(db)
	rl.StartReloader(ctx.Done())

	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}

	srvCfg := server.Config{
		AdminUser:     env("ADMIN_USER", "admin"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),
	}
	api := server.New(st, proc, gen, srvCfg, logger.With("component", "server"))
	api.Routes(r)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Minute, // batch runs answer synchronously
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("listening", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
