// Package verify orchestrates the platform scrapers for one applicant and
// aggregates the results against influence criteria.
//
// Verify never fails as a whole: invalid URLs, unparsable handles, and
// exhausted retries all land in the per-profile ErrorMessage, and the
// aggregate structure is always returned.
package verify

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/modurecruit/snspick/internal/retry"
	"github.com/modurecruit/snspick/internal/scrape"
)

// Config tunes the retry policy.
type Config struct {
	// Attempts per platform scrape. Default: 3.
	Attempts int
	// BaseDelay is multiplied by the attempt ordinal between attempts.
	// Default: 1s.
	BaseDelay time.Duration
	// DelayFactor scales BaseDelay per platform. Platforms that rate-limit
	// harder get a longer pause. Missing entries mean 1.0.
	DelayFactor map[scrape.Platform]float64
}

func (c *Config) defaults() {
	if c.Attempts <= 0 {
		c.Attempts = retry.DefaultAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	if c.DelayFactor == nil {
		c.DelayFactor = map[scrape.Platform]float64{
			scrape.Instagram: 2.0,
			scrape.Threads:   1.5,
		}
	}
}

// Verifier runs the scrapers and scores the results.
type Verifier struct {
	scrapers scrape.Set
	criteria Criteria
	config   Config
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Verifier with the process-wide default criteria.
func New(scrapers scrape.Set, criteria Criteria, cfg Config, logger *slog.Logger) *Verifier {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		scrapers: scrapers,
		criteria: criteria,
		config:   cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Criteria returns the verifier's default criteria.
func (v *Verifier) Criteria() Criteria { return v.criteria }

// Verify checks every supplied URL against the default criteria.
func (v *Verifier) Verify(ctx context.Context, email string, urls URLs) *Verification {
	return v.VerifyWith(ctx, email, urls, v.criteria)
}

// VerifyWith checks every supplied URL against an explicit criteria set.
// Platforms run sequentially in canonical order; each gets up to
// Config.Attempts scrape attempts with a linearly growing pause.
func (v *Verifier) VerifyWith(ctx context.Context, email string, urls URLs, criteria Criteria) *Verification {
	result := &Verification{
		ApplicantEmail: email,
		MeetsCriteria:  make(map[scrape.Platform]bool),
		VerifiedAt:     v.now().UnixMilli(),
	}

	for _, platform := range scrape.All() {
		url := urls.ByPlatform(platform)
		if url == "" {
			continue
		}
		profile := v.checkPlatform(ctx, platform, url)
		result.Profiles = append(result.Profiles, profile)
		result.MeetsCriteria[platform] = profile.Valid &&
			profile.MetricValue >= criteria.Threshold(platform)
	}

	result.MeetsAllCriteria = len(result.MeetsCriteria) > 0
	for _, ok := range result.MeetsCriteria {
		if !ok {
			result.MeetsAllCriteria = false
			break
		}
	}
	result.Score = score(result.Profiles, criteria)

	v.logger.Info("verification complete",
		"email", email,
		"platforms", len(result.Profiles),
		"meets_all", result.MeetsAllCriteria,
		"score", result.Score)

	return result
}

// checkPlatform validates the URL, extracts the handle, and scrapes with
// the retry policy. Every failure mode becomes an invalid profile.
func (v *Verifier) checkPlatform(ctx context.Context, platform scrape.Platform, url string) SNSProfile {
	profile := SNSProfile{
		Platform:   platform,
		URL:        url,
		MetricKind: platform.MetricKind(),
		CheckedAt:  v.now().UnixMilli(),
	}

	sc, ok := v.scrapers[platform]
	if !ok {
		profile.ErrorMessage = "no scraper registered for " + string(platform)
		return profile
	}

	if err := sc.ValidateURL(url); err != nil {
		profile.ErrorMessage = err.Error()
		return profile
	}
	handle, err := sc.ExtractHandle(url)
	if err != nil {
		profile.ErrorMessage = err.Error()
		return profile
	}
	profile.Handle = handle

	metric, err := retry.Do(ctx, v.config.Attempts, v.delay(platform),
		func(ctx context.Context) (*scrape.Metric, error) {
			return sc.Scrape(ctx, handle)
		})
	if err != nil {
		profile.ErrorMessage = err.Error()
		v.logger.Warn("platform check failed",
			"platform", platform, "handle", handle, "error", err)
		return profile
	}

	profile.Valid = true
	profile.MetricValue = metric.Value
	return profile
}

func (v *Verifier) delay(platform scrape.Platform) time.Duration {
	factor, ok := v.config.DelayFactor[platform]
	if !ok || factor <= 0 {
		factor = 1.0
	}
	return time.Duration(float64(v.config.BaseDelay) * factor)
}

// score averages min(100, metric/threshold×100) over valid profiles.
// Zero thresholds count as a full pass; no valid profiles scores 0.
func score(profiles []SNSProfile, criteria Criteria) float64 {
	var sum float64
	var valid int
	for _, p := range profiles {
		if !p.Valid {
			continue
		}
		valid++
		threshold := criteria.Threshold(p.Platform)
		if threshold <= 0 {
			sum += 100
			continue
		}
		sum += math.Min(100, float64(p.MetricValue)/float64(threshold)*100)
	}
	if valid == 0 {
		return 0
	}
	return sum / float64(valid)
}
