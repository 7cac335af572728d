package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"github.com/borgmon/meetwatch/pkg/alert"
	"github.com/borgmon/meetwatch/pkg/audio"
	"github.com/borgmon/meetwatch/pkg/feed"
	"github.com/borgmon/meetwatch/pkg/metrics"
	"github.com/borgmon/meetwatch/pkg/models"
	"github.com/borgmon/meetwatch/pkg/platform"
	"github.com/borgmon/meetwatch/pkg/store"
	"github.com/borgmon/meetwatch/pkg/syncer"
	"golang.org/x/sync/errgroup"
)

// trayRefreshInterval keeps the countdown in the tray menu current
const trayRefreshInterval = 30 * time.Second

type MeetWatch struct {
	app  fyne.App
	opts options

	config   *store.ConfigStore
	cache    *store.CacheStore
	meetings *store.MeetingStore
	alerts   *store.AlertState
	metrics  *metrics.Collector

	syncer  *syncer.Engine
	alerter *alert.Engine
	audio   *audio.Queue

	mu             sync.RWMutex
	settings       models.Settings
	lastAlert      *models.AlertEvent
	settingsWindow *SettingsWindow
}

func newMeetWatch(a fyne.App, opts options) *MeetWatch {
	mw := &MeetWatch{
		app:      a,
		opts:     opts,
		config:   store.NewConfigStore(a.Preferences()),
		cache:    store.NewCacheStore(a.Preferences()),
		meetings: store.NewMeetingStore(),
		alerts:   store.NewAlertState(),
		metrics:  metrics.NewCollector(),
	}
	mw.settings = opts.apply(mw.config.Load())

	source := feed.NewSource(feed.NewFetcher(), func() string {
		return mw.currentSettings().SheetKey
	})
	mw.syncer = syncer.New(source, mw.cache, syncer.Config{Metrics: mw.metrics})

	mw.audio = audio.NewQueue(audio.OtoBackend{}, audio.NewLibrary(mw.settings.SoundDir), 0, mw.metrics)
	mw.alerter = alert.New(mw.alerts, mw.meetings.Meetings, mw.currentSettings, alert.Sinks{
		Sound: mw.audio,
		Toast: mw,
		Push:  mw,
	}, alert.Config{Metrics: mw.metrics})

	return mw
}

func (mw *MeetWatch) currentSettings() models.Settings {
	mw.mu.RLock()
	defer mw.mu.RUnlock()
	return mw.settings
}

// updateSettings persists s and applies interval changes to the running session
func (mw *MeetWatch) updateSettings(s models.Settings) {
	mw.mu.Lock()
	previous := mw.settings
	mw.settings = s
	mw.mu.Unlock()

	mw.config.Save(s)

	if s.AutoStart != previous.AutoStart {
		if err := platform.SetAutoStart(s.AutoStart); err != nil {
			log.Printf("[APP] Failed to update autostart: %v", err)
		}
	}
	if s.EffectiveInterval() != previous.EffectiveInterval() {
		log.Printf("[APP] Refresh interval changed to %v", s.EffectiveInterval())
		mw.syncer.Restart(s.EffectiveInterval())
	}
	if s.SheetKey != previous.SheetKey {
		mw.syncer.SyncNow()
	}
}

// onSync is the sync engine callback
func (mw *MeetWatch) onSync(result models.SyncResult) {
	mw.meetings.Publish(result)

	if result.FromCache {
		log.Printf("[APP] Showing %d cached meetings: %s", len(result.Meetings), result.Error)
	} else {
		log.Printf("[APP] Showing %d meetings", len(result.Meetings))
	}

	fyne.Do(mw.updateSystemTrayMenu)
}

// syncOnce runs a single session until the first delivery
func (mw *MeetWatch) syncOnce(ctx context.Context) (models.SyncResult, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	delivered := make(chan models.SyncResult, 1)
	mw.syncer.Start(ctx, mw.currentSettings().EffectiveInterval(), func(result models.SyncResult) {
		select {
		case delivered <- result:
		default:
		}
	})
	defer mw.syncer.Stop()

	select {
	case result := <-delivered:
		mw.meetings.Publish(result)
		return result, nil
	case <-ctx.Done():
		return models.SyncResult{}, fmt.Errorf("sync did not complete: %w", ctx.Err())
	}
}

// run starts the engines and blocks in the fyne event loop until Quit
func (mw *MeetWatch) run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settings := mw.currentSettings()
	if err := platform.SetAutoStart(settings.AutoStart); err != nil {
		log.Printf("[APP] Warning: failed to setup autostart: %v", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if mw.opts.MetricsAddr != "" {
		g.Go(func() error {
			if err := mw.metrics.Serve(ctx, mw.opts.MetricsAddr); err != nil {
				log.Printf("[APP] Metrics server stopped: %v", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(trayRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				fyne.Do(mw.updateSystemTrayMenu)
			}
		}
	})

	mw.setupSystemTray()
	mw.syncer.Start(ctx, settings.EffectiveInterval(), mw.onSync)
	mw.alerter.Start(ctx)

	mw.app.Lifecycle().SetOnStarted(platform.HideDockIcon)
	mw.app.Run()

	mw.syncer.Stop()
	mw.alerter.Stop()
	mw.audio.Close()
	cancel()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Println("[APP] Stopped")
	return nil
}

func (mw *MeetWatch) quit() {
	mw.app.Quit()
}
