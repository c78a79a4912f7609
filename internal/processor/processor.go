// Package processor drives the selection pipeline across all applicants:
// verification (cached or live), decision, persistence, and spreadsheet
// write-back.
//
// Batch semantics are best-effort: per-applicant failures are collected
// and never abort the run.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/modurecruit/snspick/internal/mailer"
	"github.com/modurecruit/snspick/internal/selection"
	"github.com/modurecruit/snspick/internal/sheets"
	"github.com/modurecruit/snspick/internal/store"
	"github.com/modurecruit/snspick/internal/verify"
)

// ErrBatchRunning is returned when a batch is requested while another is
// still in flight.
var ErrBatchRunning = errors.New("processor: a batch is already running")

// Config tunes the processor.
type Config struct {
	// CacheTTL is how long a stored verification may be reused before the
	// batch path re-scrapes. Default: 6h.
	CacheTTL time.Duration
}

func (c *Config) defaults() {
	if c.CacheTTL <= 0 {
		c.CacheTTL = 6 * time.Hour
	}
}

// Request describes one batch run.
type Request struct {
	// Sheet identifies the applicant sheet. Zero SheetID means "process
	// the applicants already in the store" (no import, no write-back).
	Sheet sheets.SheetConfig
	// Token is the Google access token used for sheet reads and writes.
	Token string
	// ApplicantEmail limits the run to one applicant when non-empty.
	ApplicantEmail string
	// UpdateSheet enables decision write-back.
	UpdateSheet bool
	// Force bypasses the verification cache.
	Force bool
	// Notify sends decision emails when a mailer is configured.
	Notify bool
}

// Summary is the batch outcome.
type Summary struct {
	BatchID        string   `json:"batchId"`
	Success        bool     `json:"success"`
	TotalProcessed int      `json:"totalProcessed"`
	SelectedCount  int      `json:"selectedCount"`
	RejectedCount  int      `json:"rejectedCount"`
	SheetUpdated   bool     `json:"sheetUpdated"`
	Errors         []string `json:"errors"`
}

// Processor orchestrates the pipeline.
type Processor struct {
	store    *store.Store
	verifier *verify.Verifier
	selector *selection.Service
	sheets   *sheets.Client
	mailer   *mailer.Mailer // optional
	config   Config
	logger   *slog.Logger
	now      func() time.Time

	mu sync.Mutex // one batch at a time
}

// New creates a Processor. mail may be nil to disable notifications.
func New(st *store.Store, v *verify.Verifier, sel *selection.Service, sh *sheets.Client, mail *mailer.Mailer, cfg Config, logger *slog.Logger) *Processor {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		store:    st,
		verifier: v,
		selector: sel,
		sheets:   sh,
		mailer:   mail,
		config:   cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// ProcessAll runs one batch. It returns ErrBatchRunning when another run
// holds the guard; all other failures are carried inside the Summary.
func (p *Processor) ProcessAll(ctx context.Context, req Request) (*Summary, error) {
	if !p.mu.TryLock() {
		return nil, ErrBatchRunning
	}
	defer p.mu.Unlock()

	// The mutex guards this process; the store row guards sibling
	// instances sharing the database.
	if _, err := p.store.RunningBatch(ctx); err == nil {
		return nil, ErrBatchRunning
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check running batch: %w", err)
	}

	summary := &Summary{}
	var errs []string
	collect := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		errs = append(errs, msg)
		p.logger.Warn("batch error", "error", msg)
	}

	applicants, sheet := p.loadApplicants(ctx, req, collect)
	if req.ApplicantEmail != "" {
		applicants = filterByEmail(applicants, req.ApplicantEmail)
		if len(applicants) == 0 {
			collect("applicant %s not found", req.ApplicantEmail)
		}
	}

	batch, err := p.store.StartBatch(ctx, len(applicants))
	if err != nil {
		return nil, fmt.Errorf("start batch: %w", err)
	}
	summary.BatchID = batch.ID

	var writer *sheets.Writer
	if req.UpdateSheet && sheet != nil {
		writer, err = sheets.NewWriter(ctx, p.sheets, req.Token, sheet)
		if err != nil {
			collect("prepare sheet write-back: %v", err)
		}
	}

	for _, applicant := range applicants {
		selected := p.processOne(ctx, applicant, req, writer, collect)
		batch.Processed++
		if selected {
			batch.Selected++
		} else {
			batch.Rejected++
		}
	}

	if err := p.store.FinishBatch(ctx, batch, errs); err != nil {
		collect("finish batch: %v", err)
	}

	summary.TotalProcessed = batch.Processed
	summary.SelectedCount = batch.Selected
	summary.RejectedCount = batch.Rejected
	summary.SheetUpdated = writer != nil
	summary.Errors = errs
	summary.Success = len(errs) == 0

	p.logger.Info("batch finished",
		"batch_id", batch.ID,
		"processed", batch.Processed,
		"selected", batch.Selected,
		"rejected", batch.Rejected,
		"errors", len(errs))

	return summary, nil
}
