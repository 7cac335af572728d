package alert

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/borgmon/meetwatch/pkg/metrics"
	"github.com/borgmon/meetwatch/pkg/models"
	"github.com/borgmon/meetwatch/pkg/store"
	"github.com/google/uuid"
)

const (
	// DefaultInterval is how often today's meetings are scanned
	DefaultInterval = 30 * time.Second

	// WindowWidth is the width in minutes of each threshold window. It must
	// exceed the scan interval so a late tick still lands inside the window.
	WindowWidth = 2.0
)

// Sounder queues audio cues
type Sounder interface {
	HasCue(team string) bool
	Enqueue(team, label string) bool
}

// Toaster shows an in-app notification
type Toaster interface {
	Toast(event models.AlertEvent)
}

// Pusher sends a platform notification
type Pusher interface {
	Push(event models.AlertEvent) error
}

// Sinks are the side effects of a fired alert. Nil members are skipped.
type Sinks struct {
	Sound Sounder
	Toast Toaster
	Push  Pusher
}

// Config tunes the engine. Zero values fall back to defaults.
type Config struct {
	Interval time.Duration
	Now      func() time.Time
	Metrics  *metrics.Collector
}

// Engine scans the published snapshot and fires threshold alerts at most once
// per meeting, threshold and day
type Engine struct {
	state    *store.AlertState
	snapshot func() []models.Meeting
	settings func() models.Settings
	sinks    Sinks
	cfg      Config

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an Engine reading meetings and settings on every tick
func New(state *store.AlertState, snapshot func() []models.Meeting, settings func() models.Settings, sinks Sinks, cfg Config) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if state == nil {
		state = store.NewAlertState()
	}

	return &Engine{
		state:    state,
		snapshot: snapshot,
		settings: settings,
		sinks:    sinks,
		cfg:      cfg,
	}
}

// Start runs the scan loop until Stop or ctx cancellation
func (e *Engine) Start(ctx context.Context) {
	e.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.loop(ctx, e.done)
}

// Stop ends the scan loop and waits for a running tick to finish
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (e *Engine) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	e.Tick(e.cfg.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick(e.cfg.Now())
		}
	}
}

// Tick scans the current snapshot at now and fires every due alert
func (e *Engine) Tick(now time.Time) []models.AlertEvent {
	if e.state.ResetIfNewDay(now) {
		log.Printf("[ALERT] New day %s, cleared fired alerts", now.Format(models.DateLayout))
	}

	settings := models.DefaultSettings()
	if e.settings != nil {
		settings = e.settings()
	}
	thresholds := settings.Thresholds()

	var meetings []models.Meeting
	if e.snapshot != nil {
		meetings = e.snapshot()
	}

	nowMinutes := float64(now.Hour()*60+now.Minute()) + float64(now.Second())/60
	fired := []models.AlertEvent{}

	for _, m := range meetings {
		if !m.IsOn(now) || m.StatusKind().IsTerminal() {
			continue
		}
		scheduled, ok := m.ScheduledMinutes()
		if !ok {
			continue
		}
		diff := float64(scheduled) - nowMinutes

		for _, threshold := range thresholds {
			if !inWindow(diff, threshold) {
				continue
			}
			label := models.ThresholdLabel(threshold)
			if !e.state.MarkFired(m.ID, label, now) {
				continue
			}

			event := models.AlertEvent{
				ID:        uuid.New().String(),
				MeetingID: m.ID,
				Label:     label,
				Threshold: threshold,
				Minutes:   diff,
				Meeting:   m,
				FiredAt:   now,
			}
			e.fire(event, settings)
			fired = append(fired, event)
		}
	}

	return fired
}

// inWindow reports whether diff lies in the half-open window (threshold-WindowWidth, threshold]
func inWindow(diff float64, threshold int) bool {
	t := float64(threshold)
	return diff <= t && diff > t-WindowWidth
}

func (e *Engine) fire(event models.AlertEvent, settings models.Settings) {
	log.Printf("[ALERT] %s: \"%s\" (%s) starts at %s, %.1f min away",
		event.Label, event.Meeting.Project, event.Meeting.Team, event.Meeting.Time, event.Minutes)
	e.cfg.Metrics.AlertFired(event.Label)

	if settings.SoundEnabled && e.sinks.Sound != nil && e.sinks.Sound.HasCue(event.Meeting.Team) {
		if !e.sinks.Sound.Enqueue(event.Meeting.Team, event.Label) {
			log.Printf("[ALERT] No audio cue queued for team %q", event.Meeting.Team)
		}
	}

	if e.sinks.Toast != nil {
		e.sinks.Toast.Toast(event)
	}

	if settings.NotificationsGranted && e.sinks.Push != nil {
		if err := e.sinks.Push.Push(event); err != nil {
			log.Printf("[ALERT] Push notification failed: %v", err)
		}
	}
}
