package audio

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Library resolves a team to its audio cue files.
//
// A team maps to the prefix of its lowercased name with spaces replaced by
// dashes. For each alert label the library prefers <prefix>-<label>.wav and
// falls back to <prefix>.wav.
type Library struct {
	dir string

	mu    sync.Mutex
	clips map[string]*Clip // file base name -> decoded clip
}

// NewLibrary scans dir for WAV cues. An empty or missing dir yields an empty library.
func NewLibrary(dir string) *Library {
	lib := &Library{dir: dir, clips: make(map[string]*Clip)}
	if dir == "" {
		return lib
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("[AUDIO] Sound directory unavailable: %v", err)
		return lib
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".wav") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Printf("[AUDIO] Skipping %s: %v", name, err)
			continue
		}
		format, pcm, err := parseWAV(data)
		if err == nil {
			err = format.playable()
		}
		if err != nil {
			log.Printf("[AUDIO] Skipping %s: %v", name, err)
			continue
		}

		base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		lib.clips[base] = &Clip{Format: *format, PCM: pcm}
	}

	log.Printf("[AUDIO] Loaded %d cue(s) from %s", len(lib.clips), dir)
	return lib
}

// Prefix returns the audio prefix for a team name
func Prefix(team string) string {
	return strings.Join(strings.Fields(strings.ToLower(team)), "-")
}

// HasCue reports whether the team maps to a known audio prefix
func (l *Library) HasCue(team string) bool {
	prefix := Prefix(team)
	if prefix == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for base := range l.clips {
		if base == prefix || strings.HasPrefix(base, prefix+"-") {
			return true
		}
	}
	return false
}

// Clip returns the clip for a team and alert label
func (l *Library) Clip(team, label string) (*Clip, bool) {
	prefix := Prefix(team)
	if prefix == "" {
		return nil, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if clip, ok := l.clips[fmt.Sprintf("%s-%s", prefix, strings.ToLower(label))]; ok {
		return clip, true
	}
	clip, ok := l.clips[prefix]
	return clip, ok
}

// Len returns the number of loaded clips
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clips)
}
