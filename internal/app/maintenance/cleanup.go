package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eventra/eventra/internal/models"
	"github.com/eventra/eventra/internal/services"
	"github.com/eventra/eventra/pkg/logger"
	"github.com/eventra/eventra/pkg/metrics"
)

const (
	defaultRetentionDays = 7
	defaultSweepSpec     = "@hourly"
)

// Sweeper periodically removes aged reminder notifications and notifications
// whose calendar entry no longer exists. It runs out-of-band from the poll
// scheduler; a failed sweep is logged and retried on the next firing.
type Sweeper struct {
	db            *gorm.DB
	notifications *services.NotificationService
	cron          *cron.Cron
	now           func() time.Time
	log           *zap.Logger
	retention     int
	schedule      string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRetentionDays adjusts how long reminder notifications are retained.
func WithRetentionDays(days int) Option {
	return func(s *Sweeper) {
		if days > 0 {
			s.retention = days
		}
	}
}

// WithSchedule overrides the cron specification for sweeps.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper with sensible defaults.
func NewSweeper(db *gorm.DB, notifications *services.NotificationService, opts ...Option) (*Sweeper, error) {
	if db == nil {
		return nil, errors.New("sweeper: db is required")
	}
	if notifications == nil {
		return nil, errors.New("sweeper: notification service is required")
	}

	sweeper := &Sweeper{
		db:            db,
		notifications: notifications,
		now:           time.Now,
		retention:     defaultRetentionDays,
		schedule:      defaultSweepSpec,
		log:           logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(sweeper)
	}

	if sweeper.cron == nil {
		sweeper.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return sweeper, nil
}

// Start registers the sweep job and launches the scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("notification sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for running jobs to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes all sweep routines sequentially. Used by the cron job,
// during graceful shutdown, and directly in tests.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	aged, err := s.notifications.SweepOlderThan(ctx, s.now(), s.retention, models.NotificationKindReminder)
	if err != nil {
		errs = multierr.Append(errs, err)
	}

	orphaned, err := CleanupOrphans(ctx, s.db)
	if err != nil {
		errs = multierr.Append(errs, err)
	}

	removed := aged + orphaned
	if removed > 0 {
		metrics.SweptNotifications.Add(float64(removed))
		s.log.Info("notification sweep completed",
			zap.Int64("aged", aged),
			zap.Int64("orphaned", orphaned),
		)
	}

	return errs
}

// CleanupOrphans removes notifications referencing calendar entries that no
// longer exist.
func CleanupOrphans(ctx context.Context, db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, errors.New("cleanup orphans: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := db.WithContext(ctx).
		Where("calendar_entry_id IS NOT NULL AND calendar_entry_id NOT IN (?)",
			db.Model(&models.CalendarEntry{}).Select("id")).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup orphans: %w", result.Error)
	}

	return result.RowsAffected, nil
}
