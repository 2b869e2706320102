package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cjmartens/homestead/internal/auth"
	"github.com/cjmartens/homestead/internal/services"
	"github.com/cjmartens/homestead/pkg/logger"
)

const (
	defaultSchedule          = "@hourly"
	defaultActivityRetention = 90 * 24 * time.Hour
)

// Cleaner coordinates background maintenance such as purging expired sessions,
// sweeping lapsed invitations, and pruning old activity records.
type Cleaner struct {
	sessions  *auth.SessionService
	shares    *services.ShareStore
	activity  *services.ActivityService
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	enabled   bool
	schedule  string
	retention time.Duration
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron specification for the cleanup sweep.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// WithActivityRetention adjusts how long activity records are kept.
func WithActivityRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.retention = retention
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil dependency
// results in the corresponding sweep being skipped.
func NewCleaner(sessions *auth.SessionService, shares *services.ShareStore, activity *services.ActivityService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:  sessions,
		shares:    shares,
		activity:  activity,
		now:       time.Now,
		schedule:  defaultSchedule,
		retention: defaultActivityRetention,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.sessions != nil || cleaner.shares != nil || cleaner.activity != nil

	return cleaner
}

// Start registers the cleanup sweep with the cron scheduler and launches it
// if at least one dependency is configured.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("maintenance sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily
// used in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	now := c.now()
	var errs error

	if c.sessions != nil {
		if removed, err := c.sessions.DeleteExpired(ctx, now); err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			c.log.Info("expired sessions removed", zap.Int64("count", removed))
		}
	}

	if c.shares != nil {
		if removed, err := c.shares.DeleteExpiredPending(ctx, now); err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			c.log.Info("expired invitations removed", zap.Int64("count", removed))
		}
	}

	if c.activity != nil && c.retention > 0 {
		if removed, err := c.activity.CleanupOlderThan(ctx, now.Add(-c.retention)); err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			c.log.Info("stale activity removed", zap.Int64("count", removed))
		}
	}

	return errs
}
