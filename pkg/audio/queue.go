package audio

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/borgmon/meetwatch/pkg/metrics"
)

const (
	// DefaultRepeatDelay separates the two plays of a cue
	DefaultRepeatDelay = 1500 * time.Millisecond

	playsPerCue = 2
)

// cue is one queued alert sound
type cue struct {
	team  string
	label string
	clip  *Clip
}

// Queue plays alert cues one at a time. Each cue plays twice, and cues
// enqueued meanwhile wait until the current one, repeat included, is done.
type Queue struct {
	backend     Backend
	library     *Library
	repeatDelay time.Duration
	metrics     *metrics.Collector

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending []cue
	playing bool
	closed  bool
}

// NewQueue creates a Queue. A zero repeatDelay uses DefaultRepeatDelay.
func NewQueue(backend Backend, library *Library, repeatDelay time.Duration, m *metrics.Collector) *Queue {
	if repeatDelay <= 0 {
		repeatDelay = DefaultRepeatDelay
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Queue{
		backend:     backend,
		library:     library,
		repeatDelay: repeatDelay,
		metrics:     m,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// HasCue reports whether the team maps to a known audio prefix
func (q *Queue) HasCue(team string) bool {
	return q.library != nil && q.library.HasCue(team)
}

// Enqueue queues the cue for team and label. Returns false when there's no
// cue for the team or the queue is closed.
func (q *Queue) Enqueue(team, label string) bool {
	if q.library == nil {
		return false
	}
	clip, ok := q.library.Clip(team, label)
	if !ok {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.pending = append(q.pending, cue{team: team, label: label, clip: clip})
	if !q.playing {
		q.playing = true
		q.wg.Add(1)
		go q.drain()
	}
	return true
}

// Pending returns the number of cues waiting to play
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close stops playback and drops queued cues
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.pending = nil
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
}

func (q *Queue) drain() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if len(q.pending) == 0 || q.ctx.Err() != nil {
			q.playing = false
			q.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.play(next)
	}
}

func (q *Queue) play(c cue) {
	for i := 0; i < playsPerCue; i++ {
		if i > 0 {
			timer := time.NewTimer(q.repeatDelay)
			select {
			case <-q.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		if err := q.backend.Play(q.ctx, c.clip); err != nil {
			if q.ctx.Err() == nil {
				log.Printf("[AUDIO] Failed to play cue for team %q (%s): %v", c.team, c.label, err)
			}
			return
		}
	}

	q.metrics.AudioCuePlayed()
}
