package store

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"github.com/borgmon/meetwatch/pkg/models"
)

// ErrNoCache indicates no usable snapshot has been persisted
var ErrNoCache = errors.New("no cached snapshot")

// CacheStore keeps the last successfully synced snapshot in Fyne preferences.
// Failures are never fatal: an unreadable cache behaves like an empty one.
type CacheStore struct {
	prefs fyne.Preferences
}

// NewCacheStore creates a new CacheStore instance
func NewCacheStore(prefs fyne.Preferences) *CacheStore {
	return &CacheStore{prefs: prefs}
}

// LoadSnapshot returns the cached meetings or ErrNoCache
func (cs *CacheStore) LoadSnapshot() ([]models.Meeting, error) {
	blob := cs.prefs.String(KeyMeetingsCache)
	if blob == "" {
		return nil, ErrNoCache
	}

	var meetings []models.Meeting
	if err := json.Unmarshal([]byte(blob), &meetings); err != nil {
		log.Printf("[STORE] Discarding unreadable meetings cache: %v", err)
		return nil, ErrNoCache
	}
	if meetings == nil {
		meetings = []models.Meeting{}
	}

	return meetings, nil
}

// SaveSnapshot persists meetings together with the sync timestamp
func (cs *CacheStore) SaveSnapshot(meetings []models.Meeting, syncedAt time.Time) {
	if meetings == nil {
		meetings = []models.Meeting{}
	}
	blob, err := json.Marshal(meetings)
	if err != nil {
		log.Printf("[STORE] Failed to encode meetings cache: %v", err)
		return
	}

	cs.prefs.SetString(KeyMeetingsCache, string(blob))
	cs.prefs.SetString(KeyLastSync, syncedAt.Format(time.RFC3339))
}

// LastSync returns the time of the last persisted snapshot
func (cs *CacheStore) LastSync() (time.Time, bool) {
	raw := cs.prefs.String(KeyLastSync)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Clear removes the cached snapshot
func (cs *CacheStore) Clear() {
	cs.prefs.RemoveValue(KeyMeetingsCache)
	cs.prefs.RemoveValue(KeyLastSync)
}
