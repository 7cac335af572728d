// Package syncer polls the meeting feed and decides which snapshots reach the dashboard.
//
// Every tick runs on its own goroutine. Only the most recently started tick
// may deliver, which stands in for cancelling superseded requests. Snapshots
// that flip a finished meeting back to active are verified with a second
// fetch before they are accepted, since the provider briefly serves stale
// copies right after an edit.
package syncer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/borgmon/meetwatch/pkg/demo"
	"github.com/borgmon/meetwatch/pkg/feed"
	"github.com/borgmon/meetwatch/pkg/metrics"
	"github.com/borgmon/meetwatch/pkg/models"
)

// DefaultFlapDelay is how long to wait before re-fetching a suspected regression
const DefaultFlapDelay = 700 * time.Millisecond

// Source produces one normalized snapshot of the feed
type Source interface {
	Fetch(ctx context.Context) ([]models.Meeting, error)
}

// Cache persists the last delivered snapshot
type Cache interface {
	LoadSnapshot() ([]models.Meeting, error)
	SaveSnapshot(meetings []models.Meeting, syncedAt time.Time)
}

// Callback receives every delivered SyncResult. It must not call Stop or
// Restart synchronously.
type Callback func(models.SyncResult)

// State is the phase of the most recent tick
type State string

const (
	StateIdle       State = "idle"
	StatePolling    State = "polling"
	StateDelivered  State = "delivered"
	StateSuppressed State = "suppressed"
)

// Config tunes the engine. Zero values fall back to defaults.
type Config struct {
	FlapDelay time.Duration
	Now       func() time.Time
	Demo      func(now time.Time) []models.Meeting
	Metrics   *metrics.Collector
}

// Engine runs one polling session at a time
type Engine struct {
	source Source
	cache  Cache
	cfg    Config

	mu         sync.Mutex
	generation uint64             // bumped by Start, Restart and Stop
	tickSeq    uint64             // sequence of the most recently started tick
	cancel     context.CancelFunc // cancels the current session
	parent     context.Context
	sessionCtx context.Context
	callback   Callback
	interval   time.Duration
	state      State

	// Last delivered non-fallback snapshot, the flap guard's reference
	reference    []models.Meeting
	hasReference bool

	// Held while a callback runs so Stop can wait for it
	deliverMu sync.Mutex
}

// New creates an Engine
func New(source Source, cache Cache, cfg Config) *Engine {
	if cfg.FlapDelay <= 0 {
		cfg.FlapDelay = DefaultFlapDelay
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Demo == nil {
		cfg.Demo = demo.Meetings
	}

	return &Engine{
		source: source,
		cache:  cache,
		cfg:    cfg,
		state:  StateIdle,
	}
}

// Start begins polling every interval, firing the first tick immediately.
// A running session is stopped first.
func (e *Engine) Start(ctx context.Context, interval time.Duration, cb Callback) {
	e.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.parent = ctx
	e.callback = cb
	e.startSessionLocked(interval)
}

// Restart replaces the running session with one using the new interval
func (e *Engine) Restart(interval time.Duration) {
	e.mu.Lock()
	parent, cb := e.parent, e.callback
	e.mu.Unlock()

	if parent == nil {
		return
	}
	e.Start(parent, interval, cb)
}

// Stop cancels the session. No callback runs after Stop returns.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.generation++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
		log.Println("[SYNC] Polling stopped")
	}
	e.sessionCtx = nil
	e.state = StateIdle
	e.mu.Unlock()

	// Wait out a callback that passed the generation check before the bump
	e.deliverMu.Lock()
	e.deliverMu.Unlock()
}

// SyncNow starts an extra tick in the running session
func (e *Engine) SyncNow() {
	e.mu.Lock()
	ctx, gen := e.sessionCtx, e.generation
	e.mu.Unlock()

	if ctx == nil {
		return
	}
	e.startTick(ctx, gen)
}

// State returns the phase of the most recent tick
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Interval returns the interval of the current session
func (e *Engine) Interval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interval
}

func (e *Engine) startSessionLocked(interval time.Duration) {
	if interval < time.Duration(models.MinRefreshInterval*float64(time.Minute)) {
		interval = time.Duration(models.MinRefreshInterval * float64(time.Minute))
	}

	if !e.hasReference && e.cache != nil {
		if cached, err := e.cache.LoadSnapshot(); err == nil {
			e.reference = cached
			e.hasReference = true
		}
	}

	e.generation++
	gen := e.generation
	ctx, cancel := context.WithCancel(e.parent)
	e.cancel = cancel
	e.sessionCtx = ctx
	e.interval = interval

	log.Printf("[SYNC] Polling every %s", interval)
	go e.loop(ctx, gen, interval)
}

func (e *Engine) loop(ctx context.Context, gen uint64, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.startTick(ctx, gen)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.startTick(ctx, gen)
		}
	}
}

func (e *Engine) startTick(ctx context.Context, gen uint64) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	e.tickSeq++
	seq := e.tickSeq
	e.state = StatePolling
	e.mu.Unlock()

	go e.runTick(ctx, gen, seq)
}

func (e *Engine) runTick(ctx context.Context, gen, seq uint64) {
	meetings, err := e.source.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		e.cfg.Metrics.FetchError(feed.ErrorKind(err))
		log.Printf("[SYNC] Fetch failed, serving fallback data: %v", err)

		fallback := e.fallback()
		e.deliver(gen, seq, models.SyncResult{
			Meetings:  fallback,
			FromCache: true,
			Error:     err.Error(),
			FetchedAt: e.cfg.Now(),
		}, false)
		return
	}

	reference, ok := e.referenceSnapshot()
	if ok {
		if regressed := FindRegressions(reference, meetings); len(regressed) > 0 {
			log.Printf("[SYNC] [FLAP] %d meeting(s) went from done back to active: %v, verifying", len(regressed), regressed)

			confirmed, ok := e.verifyRegression(ctx, gen, seq, reference)
			if !ok {
				e.suppress(gen, seq)
				return
			}
			meetings = confirmed
		}
	}

	e.deliver(gen, seq, models.SyncResult{
		Meetings:  meetings,
		FromCache: false,
		FetchedAt: e.cfg.Now(),
	}, true)
}

// verifyRegression waits briefly and re-fetches once. It returns the second
// snapshot only when it still shows a regression against reference.
func (e *Engine) verifyRegression(ctx context.Context, gen, seq uint64, reference []models.Meeting) ([]models.Meeting, bool) {
	timer := time.NewTimer(e.cfg.FlapDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, false
	case <-timer.C:
	}

	if !e.isCurrent(gen, seq) {
		return nil, false
	}

	second, err := e.source.Fetch(ctx)
	if err != nil {
		log.Printf("[SYNC] [FLAP] Verification fetch failed, keeping previous data: %v", err)
		e.cfg.Metrics.FlapCheck(false)
		return nil, false
	}

	if regressed := FindRegressions(reference, second); len(regressed) > 0 {
		log.Printf("[SYNC] [FLAP] Regression confirmed for %v", regressed)
		e.cfg.Metrics.FlapCheck(true)
		return second, true
	}

	log.Println("[SYNC] [FLAP] Regression not confirmed, keeping previous data")
	e.cfg.Metrics.FlapCheck(false)
	return nil, false
}

func (e *Engine) fallback() []models.Meeting {
	if e.cache != nil {
		if cached, err := e.cache.LoadSnapshot(); err == nil {
			return cached
		}
	}
	log.Println("[SYNC] No cached snapshot, serving demo data")
	return e.cfg.Demo(e.cfg.Now())
}

func (e *Engine) referenceSnapshot() ([]models.Meeting, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reference, e.hasReference
}

func (e *Engine) isCurrent(gen, seq uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation && seq == e.tickSeq
}

func (e *Engine) suppress(gen, seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen == e.generation && seq == e.tickSeq {
		e.state = StateSuppressed
	}
	e.cfg.Metrics.SyncOutcome(metrics.OutcomeSuppressed)
}

func (e *Engine) deliver(gen, seq uint64, result models.SyncResult, accept bool) {
	e.deliverMu.Lock()
	defer e.deliverMu.Unlock()

	e.mu.Lock()
	if gen != e.generation || seq != e.tickSeq {
		e.mu.Unlock()
		log.Printf("[SYNC] Dropping result of superseded tick #%d", seq)
		e.cfg.Metrics.SyncOutcome(metrics.OutcomeStale)
		return
	}
	cb := e.callback
	if accept {
		e.reference = models.CloneMeetings(result.Meetings)
		e.hasReference = true
	}
	e.state = StateDelivered
	e.mu.Unlock()

	if accept {
		if e.cache != nil {
			e.cache.SaveSnapshot(result.Meetings, result.FetchedAt)
		}
		e.cfg.Metrics.SyncOutcome(metrics.OutcomeDelivered)
		e.cfg.Metrics.SnapshotSize(len(result.Meetings))
		log.Printf("[SYNC] Delivered %d meetings", len(result.Meetings))
	} else {
		e.cfg.Metrics.SyncOutcome(metrics.OutcomeFallback)
	}

	if cb != nil {
		cb(result)
	}
}

// FindRegressions returns the IDs of meetings that are done in previous but
// neither done nor cancelled in current
func FindRegressions(previous, current []models.Meeting) []string {
	done := make(map[string]bool, len(previous))
	for _, m := range previous {
		if m.StatusKind() == models.StatusDone {
			done[m.ID] = true
		}
	}

	regressed := []string{}
	for _, m := range current {
		if !done[m.ID] {
			continue
		}
		kind := m.StatusKind()
		if kind != models.StatusDone && kind != models.StatusCancelled {
			regressed = append(regressed, m.ID)
		}
	}
	return regressed
}
