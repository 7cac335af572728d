package store

import (
	"sort"
	"sync"
	"time"

	"github.com/borgmon/meetwatch/pkg/models"
)

// AlertState remembers which (meeting, threshold) alerts already fired today
type AlertState struct {
	mu sync.RWMutex

	// Set of fired alert keys, see alertKey
	fired map[string]time.Time

	// Local date (YYYY/MM/DD) the set was last cleared on
	lastResetDate string
}

// NewAlertState creates an empty AlertState
func NewAlertState() *AlertState {
	return &AlertState{
		fired: make(map[string]time.Time),
	}
}

// alertKey creates the dedup key for an alert
func alertKey(meetingID, label string) string {
	return meetingID + "|" + label
}

// ResetIfNewDay clears the set when the local date of now differs from the
// last reset date. Returns true when a reset happened.
func (as *AlertState) ResetIfNewDay(now time.Time) bool {
	today := now.Format(models.DateLayout)

	as.mu.Lock()
	defer as.mu.Unlock()

	if as.lastResetDate == today {
		return false
	}

	hadState := as.lastResetDate != ""
	as.fired = make(map[string]time.Time)
	as.lastResetDate = today
	return hadState
}

// MarkFired records the alert and returns false if it had already fired
func (as *AlertState) MarkFired(meetingID, label string, at time.Time) bool {
	as.mu.Lock()
	defer as.mu.Unlock()

	key := alertKey(meetingID, label)
	if _, exists := as.fired[key]; exists {
		return false
	}
	as.fired[key] = at
	return true
}

// HasFired reports whether the alert already fired today
func (as *AlertState) HasFired(meetingID, label string) bool {
	as.mu.RLock()
	defer as.mu.RUnlock()

	_, exists := as.fired[alertKey(meetingID, label)]
	return exists
}

// Len returns the number of fired alerts since the last reset
func (as *AlertState) Len() int {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return len(as.fired)
}

// LastResetDate returns the date string of the last reset
func (as *AlertState) LastResetDate() string {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return as.lastResetDate
}

// MeetingStore publishes the current meeting snapshot to concurrent readers
type MeetingStore struct {
	mu sync.RWMutex

	meetings  []models.Meeting
	fromCache bool
	lastError string
	updatedAt time.Time
}

// NewMeetingStore creates an empty MeetingStore
func NewMeetingStore() *MeetingStore {
	return &MeetingStore{meetings: []models.Meeting{}}
}

// Publish replaces the current snapshot with the result of a sync
func (ms *MeetingStore) Publish(result models.SyncResult) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.meetings = models.CloneMeetings(result.Meetings)
	if ms.meetings == nil {
		ms.meetings = []models.Meeting{}
	}
	ms.fromCache = result.FromCache
	ms.lastError = result.Error
	ms.updatedAt = result.FetchedAt
}

// Meetings returns a copy of the current snapshot
func (ms *MeetingStore) Meetings() []models.Meeting {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return models.CloneMeetings(ms.meetings)
}

// Result returns the current snapshot as a SyncResult
func (ms *MeetingStore) Result() models.SyncResult {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return models.SyncResult{
		Meetings:  models.CloneMeetings(ms.meetings),
		FromCache: ms.fromCache,
		Error:     ms.lastError,
		FetchedAt: ms.updatedAt,
	}
}

// Upcoming returns today's meetings with a parsable time that start at or
// after now and aren't terminal, sorted by start time
func (ms *MeetingStore) Upcoming(now time.Time, limit int) []models.Meeting {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	nowMinutes := now.Hour()*60 + now.Minute()
	result := []models.Meeting{}

	for _, m := range ms.meetings {
		if !m.IsOn(now) || m.StatusKind().IsTerminal() {
			continue
		}
		minutes, ok := m.ScheduledMinutes()
		if !ok || minutes < nowMinutes {
			continue
		}
		result = append(result, m)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Time < result[j].Time
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
