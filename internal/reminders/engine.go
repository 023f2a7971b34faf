package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eventra/eventra/internal/models"
	"github.com/eventra/eventra/internal/services"
	"github.com/eventra/eventra/pkg/logger"
	"github.com/eventra/eventra/pkg/metrics"
)

const defaultLookahead = 24 * time.Hour

// Trigger sources recorded in notification payloads and metrics.
const (
	SourcePoll   = "poll"
	SourceManual = "manual"
	SourceEdit   = "edit"
)

// Engine materializes reminder notifications for calendar entries. A cycle
// is a pure function of the injected instant, so the scheduler owns cadence
// while tests drive RunOnce directly.
type Engine struct {
	db            *gorm.DB
	notifications *services.NotificationService
	audience      *Resolver
	lookahead     time.Duration
	log           *zap.Logger
}

// EngineOption customises the Engine.
type EngineOption func(*Engine)

// WithLookahead overrides how far ahead of now a cycle scans for entries.
func WithLookahead(horizon time.Duration) EngineOption {
	return func(e *Engine) {
		if horizon > 0 {
			e.lookahead = horizon
		}
	}
}

// NewEngine constructs an Engine.
func NewEngine(db *gorm.DB, notifications *services.NotificationService, audience *Resolver, opts ...EngineOption) (*Engine, error) {
	if db == nil {
		return nil, errors.New("reminder engine: db is required")
	}
	if notifications == nil {
		return nil, errors.New("reminder engine: notification service is required")
	}
	if audience == nil {
		return nil, errors.New("reminder engine: audience resolver is required")
	}

	engine := &Engine{
		db:            db,
		notifications: notifications,
		audience:      audience,
		lookahead:     defaultLookahead,
		log:           logger.WithModule("reminders"),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// RunOnce executes a single poll cycle at the supplied instant. Entries are
// processed independently: one entry's failure is logged and collected but
// never aborts the rest of the cycle.
func (e *Engine) RunOnce(ctx context.Context, now time.Time) error {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()

	entries, err := e.listDue(ctx, now)
	if err != nil {
		metrics.PollCycles.WithLabelValues("error").Inc()
		return fmt.Errorf("reminder engine: list due entries: %w", err)
	}

	var errs error
	created := 0
	for i := range entries {
		n, entryErr := e.processEntry(ctx, now, &entries[i])
		if entryErr != nil {
			e.log.Warn("entry processing failed",
				zap.String("entry_id", entries[i].ID),
				zap.Error(entryErr),
			)
			errs = multierr.Append(errs, entryErr)
			continue
		}
		created += n
	}

	result := "ok"
	if errs != nil {
		result = "error"
	}
	metrics.PollCycles.WithLabelValues(result).Inc()
	metrics.PollDuration.Observe(time.Since(started).Seconds())

	if created > 0 {
		e.log.Info("poll cycle materialized reminders",
			zap.Int("created", created),
			zap.Int("scanned", len(entries)),
		)
	}

	return errs
}

// ResetForEntry deletes every notification referencing the entry and fans
// out a fresh set. Used after edits; it deliberately ignores both the
// reminder window and the dedup pre-check.
func (e *Engine) ResetForEntry(ctx context.Context, entry *models.CalendarEntry) (int, error) {
	if entry == nil {
		return 0, errors.New("reminder engine: entry is required")
	}

	return e.replaceForEntry(ctx, entry, SourceEdit)
}

// TriggerNow re-materializes notifications for the entry on demand,
// replacing any prior reminder set so the result is always a fresh
// notification per recipient without duplicate rows.
func (e *Engine) TriggerNow(ctx context.Context, entryID string) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var entry models.CalendarEntry
	err := e.db.WithContext(ctx).First(&entry, "id = ?", entryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, services.ErrCalendarEntryNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("reminder engine: load entry: %w", err)
	}

	return e.replaceForEntry(ctx, &entry, SourceManual)
}

// replaceForEntry swaps the entry's notification set for a fresh one inside
// a single transaction, so a failed fan-out rolls back the delete and the
// prior set survives. The audience is resolved up front; a resolution error
// leaves existing notifications untouched.
func (e *Engine) replaceForEntry(ctx context.Context, entry *models.CalendarEntry, source string) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	recipients, err := e.audience.Resolve(ctx, entry)
	if err != nil {
		return 0, err
	}

	created := 0
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scoped := e.notifications.WithTx(tx)
		if _, err := scoped.DeleteForEntry(ctx, entry.ID); err != nil {
			return err
		}

		for _, recipient := range recipients {
			_, inserted, err := scoped.Create(ctx, e.notificationInput(entry, recipient, source))
			if err != nil {
				return fmt.Errorf("recipient %s: %w", recipient, err)
			}
			if inserted {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if created > 0 {
		metrics.ReminderNotifications.WithLabelValues(source).Add(float64(created))
	}
	return created, nil
}

// listDue returns entries whose start time falls within [now, now+lookahead].
func (e *Engine) listDue(ctx context.Context, now time.Time) ([]models.CalendarEntry, error) {
	var entries []models.CalendarEntry
	if err := e.db.WithContext(ctx).
		Where("starts_at >= ? AND starts_at <= ?", now, now.Add(e.lookahead)).
		Order("starts_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (e *Engine) processEntry(ctx context.Context, now time.Time, entry *models.CalendarEntry) (int, error) {
	if !entry.InReminderWindow(now) {
		return 0, nil
	}

	exists, err := e.notifications.ExistsForEntry(ctx, entry.ID)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, nil
	}

	return e.fanOut(ctx, entry, SourcePoll)
}

// fanOut creates one reminder notification per resolved recipient. The
// conflict-ignoring insert makes this safe against overlapping cycles: a
// recipient already holding a reminder for the entry is skipped, not
// duplicated.
func (e *Engine) fanOut(ctx context.Context, entry *models.CalendarEntry, source string) (int, error) {
	recipients, err := e.audience.Resolve(ctx, entry)
	if err != nil {
		return 0, err
	}

	created := 0
	var errs error
	for _, recipient := range recipients {
		_, inserted, err := e.notifications.Create(ctx, e.notificationInput(entry, recipient, source))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("recipient %s: %w", recipient, err))
			continue
		}
		if inserted {
			created++
		}
	}

	if created > 0 {
		metrics.ReminderNotifications.WithLabelValues(source).Add(float64(created))
	}

	return created, errs
}

func (e *Engine) notificationInput(entry *models.CalendarEntry, recipient, source string) services.CreateNotificationInput {
	return services.CreateNotificationInput{
		UserID:          recipient,
		Kind:            models.NotificationKindReminder,
		Title:           notificationTitle(entry, source),
		Message:         notificationMessage(entry),
		CalendarEntryID: entry.ID,
		Payload: map[string]any{
			"calendar_entry_id": entry.ID,
			"starts_at":         entry.StartsAt.UTC().Format(time.RFC3339),
			"source":            source,
		},
	}
}

func notificationTitle(entry *models.CalendarEntry, source string) string {
	if source == SourceEdit {
		return fmt.Sprintf("Updated: %s", entry.Title)
	}
	return fmt.Sprintf("Reminder: %s", entry.Title)
}

func notificationMessage(entry *models.CalendarEntry) string {
	return fmt.Sprintf("%s starts at %s", entry.Title, entry.StartsAt.UTC().Format("2006-01-02 15:04 MST"))
}
