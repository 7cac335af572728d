package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/borgmon/meetwatch/pkg/feed"
	"github.com/borgmon/meetwatch/pkg/models"
	"github.com/borgmon/meetwatch/pkg/store"
	"github.com/borgmon/meetwatch/pkg/syncer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsApply(t *testing.T) {
	stored := models.DefaultSettings()
	stored.SheetKey = "2PACX-stored"

	assert.Equal(t, stored, options{}.apply(stored))

	got := options{SheetKey: "2PACX-flag", Interval: 5, SoundDir: "/tmp/cues"}.apply(stored)
	assert.Equal(t, "2PACX-flag", got.SheetKey)
	assert.Equal(t, 5.0, got.RefreshInterval)
	assert.Equal(t, "/tmp/cues", got.SoundDir)
	assert.True(t, got.SoundEnabled)
}

func TestNewMeetWatchLoadsStoredSettings(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	stored := models.DefaultSettings()
	stored.AlertThresholds = "15"
	store.NewConfigStore(a.Preferences()).Save(stored)

	mw := newMeetWatch(a, options{Interval: 0.5})
	defer mw.audio.Close()

	settings := mw.currentSettings()
	assert.Equal(t, "15", settings.AlertThresholds)
	assert.Equal(t, 0.5, settings.RefreshInterval)
}

func TestUpdateSettingsPersists(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	mw := newMeetWatch(a, options{})
	defer mw.audio.Close()

	s := mw.currentSettings()
	s.SoundEnabled = false
	s.NotificationsGranted = true
	mw.updateSettings(s)

	loaded := store.NewConfigStore(a.Preferences()).Load()
	assert.False(t, loaded.SoundEnabled)
	assert.True(t, loaded.NotificationsGranted)
	assert.Equal(t, s, mw.currentSettings())
}

func TestSyncOncePublishesAndCaches(t *testing.T) {
	today := time.Now().Format(models.DateLayout)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Date,Project,Team,Time,Via,Status\n%s,Acme,Sales,23:59,Meet,\n", today)
	}))
	defer srv.Close()

	a := test.NewApp()
	defer a.Quit()

	mw := newMeetWatch(a, options{})
	defer mw.audio.Close()

	fetcher := feed.NewFetcher()
	fetcher.BaseURL = srv.URL
	mw.syncer = syncer.New(feed.NewSource(fetcher, func() string { return "2PACX-test" }), mw.cache, syncer.Config{Metrics: mw.metrics})

	result, err := mw.syncOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	require.Len(t, result.Meetings, 1)
	assert.Equal(t, "Acme", result.Meetings[0].Project)

	assert.Equal(t, result.Meetings, mw.meetings.Meetings())

	cached, err := mw.cache.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, result.Meetings, cached)
}

func TestPrintCountdown(t *testing.T) {
	now := time.Date(2025, 1, 5, 10, 0, 0, 0, time.Local)
	upcoming := []models.Meeting{
		{Date: "2025/01/05", Time: "10:20", Project: "Acme", Team: "Sales", Via: "Meet"},
		{Date: "2025/01/05", Time: "12:05", Project: "Globex", Team: "Support"},
	}
	result := models.SyncResult{Meetings: upcoming, FromCache: true, Error: "feed returned 503"}

	var buf bytes.Buffer
	require.NoError(t, printCountdown(&buf, result, upcoming, now))

	out := buf.String()
	assert.Contains(t, out, "Synced 2 meetings (cached)")
	assert.Contains(t, out, "Last error: feed returned 503")
	assert.Contains(t, out, "in 20m")
	assert.Contains(t, out, "in 2h 05m")

	buf.Reset()
	require.NoError(t, printCountdown(&buf, models.SyncResult{}, nil, now))
	assert.Contains(t, buf.String(), "No more meetings today")
}

func TestFormatCountdown(t *testing.T) {
	now := time.Date(2025, 1, 5, 10, 0, 30, 0, time.Local)

	assert.Equal(t, "in 30m", formatCountdown(models.Meeting{Date: "2025/01/05", Time: "10:30"}, now))
	assert.Equal(t, "now", formatCountdown(models.Meeting{Date: "2025/01/05", Time: "10:00"}, now))
	assert.Equal(t, "in 1h 00m", formatCountdown(models.Meeting{Date: "2025/01/05", Time: "11:00"}, now))
	assert.Equal(t, "?", formatCountdown(models.Meeting{Date: "2025/01/05", Time: "soon"}, now))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "اجتماع ...", truncateString("اجتماع الفريق الأسبوعي", 10))
}

func TestFormatInterval(t *testing.T) {
	assert.Equal(t, "15 seconds", formatInterval(0.25))
	assert.Equal(t, "1 minute", formatInterval(1))
	assert.Equal(t, "15 minutes", formatInterval(15))
}
