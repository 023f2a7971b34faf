package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eventra/eventra/internal/database/testutil"
	"github.com/eventra/eventra/internal/models"
)

type recordingNotifier struct {
	calls   int
	entryID string
	err     error
}

func (r *recordingNotifier) ResetForEntry(_ context.Context, entry *models.CalendarEntry) (int, error) {
	r.calls++
	r.entryID = entry.ID
	return 1, r.err
}

func TestCalendarServiceCreateDefaultsAndValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewCalendarService(db, nil)
	require.NoError(t, err)

	user := seedUser(t, db, "alice")
	ctx := context.Background()
	start := time.Now().Add(2 * time.Hour)

	entry, err := svc.Create(ctx, CreateCalendarEntryInput{
		Title:               "  design review ",
		StartsAt:            start,
		EndsAt:              start.Add(time.Hour),
		ReminderLeadMinutes: 30,
		CreatorID:           user.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "design review", entry.Title)
	require.Equal(t, models.VisibilityPrivate, entry.Visibility)
	require.NotEmpty(t, entry.ID)

	cases := []struct {
		name  string
		input CreateCalendarEntryInput
	}{
		{
			name: "missing title",
			input: CreateCalendarEntryInput{
				StartsAt: start, EndsAt: start.Add(time.Hour), CreatorID: user.ID,
			},
		},
		{
			name: "starts after ends",
			input: CreateCalendarEntryInput{
				Title: "x", StartsAt: start.Add(time.Hour), EndsAt: start, CreatorID: user.ID,
			},
		},
		{
			name: "negative lead",
			input: CreateCalendarEntryInput{
				Title: "x", StartsAt: start, EndsAt: start.Add(time.Hour),
				ReminderLeadMinutes: -5, CreatorID: user.ID,
			},
		},
		{
			name: "team visibility without team",
			input: CreateCalendarEntryInput{
				Title: "x", StartsAt: start, EndsAt: start.Add(time.Hour),
				Visibility: models.VisibilityTeam, CreatorID: user.ID,
			},
		},
		{
			name: "unknown visibility",
			input: CreateCalendarEntryInput{
				Title: "x", StartsAt: start, EndsAt: start.Add(time.Hour),
				Visibility: "everyone", CreatorID: user.ID,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			require.Error(t, err)
		})
	}
}

func TestCalendarServiceGetAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewCalendarService(db, nil)
	require.NoError(t, err)

	user := seedUser(t, db, "bob")
	other := seedUser(t, db, "carol")
	ctx := context.Background()
	base := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	first := seedEntry(t, db, user.ID, base, 30)
	seedEntry(t, db, user.ID, base.Add(48*time.Hour), 30)
	seedEntry(t, db, other.ID, base.Add(2*time.Hour), 30)

	_, err = svc.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrCalendarEntryNotFound)

	loaded, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, first.Title, loaded.Title)

	mine, err := svc.List(ctx, ListCalendarEntriesInput{CreatorID: user.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)

	to := base.Add(24 * time.Hour)
	window, err := svc.List(ctx, ListCalendarEntriesInput{To: &to})
	require.NoError(t, err)
	require.Len(t, window, 2)
}

func TestCalendarServiceUpdateResetsNotifications(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	notifier := &recordingNotifier{}
	svc, err := NewCalendarService(db, notifier)
	require.NoError(t, err)

	user := seedUser(t, db, "dave")
	entry := seedEntry(t, db, user.ID, time.Now().Add(2*time.Hour), 30)

	ctx := context.Background()
	title := "rescheduled standup"
	updated, err := svc.Update(ctx, entry.ID, UpdateCalendarEntryInput{Title: &title})
	require.NoError(t, err)
	require.Equal(t, title, updated.Title)
	require.Equal(t, 1, notifier.calls)
	require.Equal(t, entry.ID, notifier.entryID)

	// No-op edits do not re-notify.
	same := updated.Title
	_, err = svc.Update(ctx, entry.ID, UpdateCalendarEntryInput{Title: &same})
	require.NoError(t, err)
	require.Equal(t, 1, notifier.calls)

	// Invalid schedule changes are rejected before touching notifications.
	badEnd := updated.StartsAt.Add(-time.Hour)
	_, err = svc.Update(ctx, entry.ID, UpdateCalendarEntryInput{EndsAt: &badEnd})
	require.Error(t, err)
	require.Equal(t, 1, notifier.calls)
}

func TestCalendarServiceDeleteCascadesNotifications(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewCalendarService(db, nil)
	require.NoError(t, err)

	user := seedUser(t, db, "erin")
	entry := seedEntry(t, db, user.ID, time.Now().Add(time.Hour), 30)

	notification := models.Notification{
		UserID:          user.ID,
		Kind:            models.NotificationKindReminder,
		Title:           "Reminder: standup",
		CalendarEntryID: &entry.ID,
	}
	require.NoError(t, db.Create(&notification).Error)

	ctx := context.Background()
	require.NoError(t, svc.Delete(ctx, entry.ID))

	var entries int64
	require.NoError(t, db.Model(&models.CalendarEntry{}).Where("id = ?", entry.ID).Count(&entries).Error)
	require.Zero(t, entries)

	var notifications int64
	require.NoError(t, db.Model(&models.Notification{}).Where("calendar_entry_id = ?", entry.ID).Count(&notifications).Error)
	require.Zero(t, notifications)

	require.ErrorIs(t, svc.Delete(ctx, entry.ID), ErrCalendarEntryNotFound)
}
