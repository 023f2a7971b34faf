package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCalendarVisibilityValid(t *testing.T) {
	require.True(t, VisibilityPrivate.Valid())
	require.True(t, VisibilityTeam.Valid())
	require.False(t, CalendarVisibility("public").Valid())
	require.False(t, CalendarVisibility("").Valid())
}

func TestInReminderWindowHalfOpen(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	entry := CalendarEntry{
		StartsAt:            start,
		EndsAt:              start.Add(time.Hour),
		ReminderLeadMinutes: 30,
	}

	require.Equal(t, start.Add(-30*time.Minute), entry.WindowOpensAt())

	require.False(t, entry.InReminderWindow(start.Add(-31*time.Minute)))
	require.True(t, entry.InReminderWindow(start.Add(-30*time.Minute)))
	require.True(t, entry.InReminderWindow(start.Add(-time.Second)))
	require.False(t, entry.InReminderWindow(start))
	require.False(t, entry.InReminderWindow(start.Add(time.Minute)))
}

func TestInReminderWindowZeroLead(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	entry := CalendarEntry{StartsAt: start, EndsAt: start.Add(time.Hour)}

	// [start, start) is empty: the poll path never fires for zero lead.
	require.False(t, entry.InReminderWindow(start.Add(-time.Second)))
	require.False(t, entry.InReminderWindow(start))
}
