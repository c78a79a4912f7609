// Package scheduler triggers periodic batch selection runs on a cron
// schedule.
package scheduler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/modurecruit/snspick/internal/processor"
)

// Config configures the scheduler.
type Config struct {
	// Enabled turns scheduled runs on.
	Enabled bool `yaml:"enabled"`
	// Spec is a cron expression. Default: hourly.
	Spec string `yaml:"spec"`
	// UpdateSheet enables write-back on scheduled runs. Scheduled runs
	// have no caller-supplied token, so this needs ServiceToken set.
	UpdateSheet bool `yaml:"update_sheet"`
	// ServiceToken is a long-lived access token for scheduled sheet
	// access. Usually injected from the environment.
	ServiceToken string `yaml:"-"`
}

func (c *Config) defaults() {
	if c.Spec == "" {
		c.Spec = "@hourly"
	}
}

// Scheduler owns the cron instance.
type Scheduler struct {
	cron    *cron.Cron
	proc    *processor.Processor
	request processor.Request
	logger  *slog.Logger
}

// New creates a Scheduler that runs req on cfg.Spec. The request's token
// and write-back flag come from cfg.
func New(proc *processor.Processor, req processor.Request, cfg Config, logger *slog.Logger) (*Scheduler, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	req.Token = cfg.ServiceToken
	req.UpdateSheet = cfg.UpdateSheet && cfg.ServiceToken != ""

	s := &Scheduler{
		cron:    cron.New(),
		proc:    proc,
		request: req,
		logger:  logger,
	}

	_, err := s.cron.AddFunc(cfg.Spec, s.run)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) run() {
	summary, err := s.proc.ProcessAll(context.Background(), s.request)
	if errors.Is(err, processor.ErrBatchRunning) {
		s.logger.Info("scheduled run skipped: batch already running")
		return
	}
	if err != nil {
		s.logger.Error("scheduled run failed", "error", err)
		return
	}
	s.logger.Info("scheduled run finished",
		"batch_id", summary.BatchID,
		"processed", summary.TotalProcessed,
		"selected", summary.SelectedCount,
		"errors", len(summary.Errors))
}

// Start begins scheduling. Stop when ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
}
