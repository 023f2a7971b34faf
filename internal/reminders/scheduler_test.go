package reminders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eventra/eventra/internal/models"
)

func TestSchedulerLifecycle(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	scheduler, err := NewScheduler(engine, WithInterval(time.Hour))
	require.NoError(t, err)
	require.Equal(t, StateStopped, scheduler.State())

	require.NoError(t, scheduler.Start())
	require.Equal(t, StateRunning, scheduler.State())

	// A second Start must not spin up another loop.
	require.NoError(t, scheduler.Start())
	require.Equal(t, StateRunning, scheduler.State())

	done := scheduler.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not drain in time")
	}
	require.Equal(t, StateStopped, scheduler.State())

	// Stopping again is harmless and completes immediately.
	select {
	case <-scheduler.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("repeated stop did not complete")
	}

	// The scheduler can be restarted after a full stop.
	require.NoError(t, scheduler.Start())
	require.Equal(t, StateRunning, scheduler.State())
	<-scheduler.Stop().Done()
}

func TestSchedulerTickRunsCycleAtInjectedClock(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	creator := createUser(t, db, "heidi", true)

	entry := createEntry(t, db, &models.CalendarEntry{
		Title:               "standup",
		StartsAt:            now.Add(10 * time.Minute),
		ReminderLeadMinutes: 30,
		CreatorID:           creator.ID,
	})

	scheduler, err := NewScheduler(engine,
		WithInterval(time.Hour),
		WithNow(func() time.Time { return now }),
	)
	require.NoError(t, err)

	scheduler.tick()

	require.Equal(t, int64(1), countForEntry(t, db, entry.ID))
}

func TestStateString(t *testing.T) {
	require.Equal(t, "stopped", StateStopped.String())
	require.Equal(t, "running", StateRunning.String())
	require.Equal(t, "state(7)", State(7).String())
}
