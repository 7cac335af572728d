package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/borgmon/meetwatch/pkg/models"
	"github.com/borgmon/meetwatch/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sinkRecorder implements every sink and records calls in order
type sinkRecorder struct {
	mu      sync.Mutex
	calls   []string
	teams   map[string]bool
	pushErr error
}

func (r *sinkRecorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *sinkRecorder) HasCue(team string) bool {
	return r.teams[team]
}

func (r *sinkRecorder) Enqueue(team, label string) bool {
	r.record("sound:" + label)
	return true
}

func (r *sinkRecorder) Toast(event models.AlertEvent) {
	r.record("toast:" + event.Label)
}

func (r *sinkRecorder) Push(event models.AlertEvent) error {
	r.record("push:" + event.Label)
	return r.pushErr
}

func (r *sinkRecorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

var base = time.Date(2025, 1, 5, 10, 0, 0, 0, time.Local)

func newEngine(meetings []models.Meeting, settings models.Settings, sinks *sinkRecorder) *Engine {
	return New(store.NewAlertState(),
		func() []models.Meeting { return meetings },
		func() models.Settings { return settings },
		Sinks{Sound: sinks, Toast: sinks, Push: sinks},
		Config{},
	)
}

func TestThirtyMinuteAlertFiresOnce(t *testing.T) {
	meetings := []models.Meeting{{ID: "m1", Date: "2025/01/05", Time: "10:30", Team: "Sales"}}
	sinks := &sinkRecorder{teams: map[string]bool{"Sales": true}}
	e := newEngine(meetings, models.DefaultSettings(), sinks)

	events := e.Tick(base)
	require.Len(t, events, 1)
	assert.Equal(t, "m1", events[0].MeetingID)
	assert.Equal(t, "30min", events[0].Label)
	assert.Equal(t, 30.0, events[0].Minutes)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, []string{"sound:30min", "toast:30min"}, sinks.Calls())

	assert.Empty(t, e.Tick(base.Add(30*time.Second)), "diff 29.5 is still in the window but already fired")
	assert.Len(t, sinks.Calls(), 2)
}

func TestWindowSurvivesMissedTick(t *testing.T) {
	meetings := []models.Meeting{{ID: "m1", Date: "2025/01/05", Time: "10:30"}}
	e := newEngine(meetings, models.DefaultSettings(), &sinkRecorder{})

	// 31 minutes out: too early
	assert.Empty(t, e.Tick(base.Add(-time.Minute)))
	// first tick lands 90s late, diff 28.5
	events := e.Tick(base.Add(90 * time.Second))
	require.Len(t, events, 1)
	assert.Equal(t, "30min", events[0].Label)
	// diff exactly 28 is outside the half-open window
	assert.Empty(t, newEngine(meetings, models.DefaultSettings(), &sinkRecorder{}).Tick(base.Add(2*time.Minute)))
}

func TestFiveMinuteAlert(t *testing.T) {
	meetings := []models.Meeting{{ID: "m1", Date: "2025/01/05", Time: "10:05"}}
	e := newEngine(meetings, models.DefaultSettings(), &sinkRecorder{})

	events := e.Tick(base.Add(30 * time.Second))
	require.Len(t, events, 1)
	assert.Equal(t, "5min", events[0].Label)
	assert.Equal(t, 5, events[0].Threshold)
}

func TestSkipsIneligibleMeetings(t *testing.T) {
	meetings := []models.Meeting{
		{ID: "done", Date: "2025/01/05", Time: "10:30", Status: "Done"},
		{ID: "cancelled", Date: "2025/01/05", Time: "10:30", Status: "ملغي"},
		{ID: "failed", Date: "2025/01/05", Time: "10:30", Status: "failed"},
		{ID: "tomorrow", Date: "2025/01/06", Time: "10:30"},
		{ID: "notime", Date: "2025/01/05", Time: "after lunch"},
	}
	sinks := &sinkRecorder{}
	e := newEngine(meetings, models.DefaultSettings(), sinks)

	assert.Empty(t, e.Tick(base))
	assert.Empty(t, sinks.Calls())
}

func TestSideEffectsFollowSettings(t *testing.T) {
	meetings := []models.Meeting{
		{ID: "known", Date: "2025/01/05", Time: "10:30", Team: "Sales"},
		{ID: "unknown", Date: "2025/01/05", Time: "10:30", Team: "Legal"},
	}

	settings := models.DefaultSettings()
	settings.SoundEnabled = false
	settings.NotificationsGranted = true
	sinks := &sinkRecorder{teams: map[string]bool{"Sales": true}, pushErr: errors.New("denied")}
	e := newEngine(meetings, settings, sinks)

	require.Len(t, e.Tick(base), 2)
	assert.Equal(t, []string{"toast:30min", "push:30min", "toast:30min", "push:30min"}, sinks.Calls())

	settings.SoundEnabled = true
	sinks = &sinkRecorder{teams: map[string]bool{"Sales": true}}
	e = newEngine(meetings, settings, sinks)

	require.Len(t, e.Tick(base), 2)
	assert.Equal(t, []string{"sound:30min", "toast:30min", "push:30min", "toast:30min", "push:30min"}, sinks.Calls())
}

func TestDailyResetAllowsRealertNextDay(t *testing.T) {
	state := store.NewAlertState()
	meetings := []models.Meeting{{ID: "m1", Date: "2025/01/05", Time: "10:30"}}
	e := New(state, func() []models.Meeting { return meetings }, nil, Sinks{}, Config{})

	require.Len(t, e.Tick(base), 1)
	assert.Empty(t, e.Tick(base.Add(10*time.Second)))

	meetings = []models.Meeting{{ID: "m1", Date: "2025/01/06", Time: "10:30"}}
	require.Len(t, e.Tick(base.Add(24*time.Hour)), 1)
	assert.Equal(t, "2025/01/06", state.LastResetDate())
}

func TestStartStop(t *testing.T) {
	var mu sync.Mutex
	scans := 0
	snapshot := func() []models.Meeting {
		mu.Lock()
		defer mu.Unlock()
		scans++
		return nil
	}
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return scans
	}

	e := New(nil, snapshot, nil, Sinks{}, Config{Interval: 5 * time.Millisecond, Now: func() time.Time { return base }})
	e.Start(context.Background())

	require.Eventually(t, func() bool { return count() >= 3 }, time.Second, time.Millisecond)
	e.Stop()

	stopped := count()
	assert.Never(t, func() bool { return count() != stopped }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestStatusWordsInsideOtherWordsStillAlert(t *testing.T) {
	meetings := []models.Meeting{
		{ID: "upcoming", Date: "2025/01/05", Time: "10:30", Status: "اجتماع قادم"},
		{ID: "ongoing", Date: "2025/01/05", Time: "10:30", Status: "مستمر"},
		{ID: "incomplete", Date: "2025/01/05", Time: "10:30", Status: "Incomplete"},
	}
	e := newEngine(meetings, models.DefaultSettings(), &sinkRecorder{})

	assert.Len(t, e.Tick(base), 3)
}
