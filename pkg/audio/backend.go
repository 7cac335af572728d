package audio

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// ErrAudioUnavailable is returned when the audio device couldn't be opened
var ErrAudioUnavailable = errors.New("audio context not ready")

// Backend plays one clip and blocks until it finishes or ctx is cancelled
type Backend interface {
	Play(ctx context.Context, clip *Clip) error
}

// Global audio context singleton. oto allows one context per process, so the
// first clip played decides the sample rate and channel count.
var (
	globalAudioCtx     *oto.Context
	globalAudioCtxOnce sync.Once
	audioCtxReady      bool
)

// initAudioContext initializes the global audio context once
func initAudioContext(format wavFormat) {
	globalAudioCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			log.Printf("[AUDIO] Failed to initialize audio context: %v", err)
			return
		}

		// Wait for the hardware audio devices to be ready
		<-readyChan

		globalAudioCtx = ctx
		audioCtxReady = true
		log.Println("[AUDIO] Audio context initialized successfully")
	})
}

// OtoBackend plays clips through the system audio device
type OtoBackend struct{}

// Play plays the clip once
func (OtoBackend) Play(ctx context.Context, clip *Clip) error {
	initAudioContext(clip.Format)
	if !audioCtxReady || globalAudioCtx == nil {
		return ErrAudioUnavailable
	}

	player := globalAudioCtx.NewPlayer(bytes.NewReader(clip.PCM))
	defer func() {
		if err := player.Close(); err != nil {
			log.Printf("[AUDIO] Failed to close audio player: %v", err)
		}
	}()

	// Play starts playing the sound and returns without waiting
	player.Play()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	return nil
}
