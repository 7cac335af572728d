package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// MinRefreshInterval is the effective floor of the polling interval in minutes
const MinRefreshInterval = 0.25

// DefaultAlertThresholds is used when AlertThresholds is empty or unparseable
var DefaultAlertThresholds = []int{30, 5}

// Settings holds user configuration, persisted as a single JSON blob
type Settings struct {
	SheetKey             string  `json:"sheet_key"`             // provider publish key
	RefreshInterval      float64 `json:"refresh_interval"`      // minutes
	SoundEnabled         bool    `json:"sound_enabled"`         // play audio cues
	AlertThresholds      string  `json:"alert_thresholds"`      // comma-separated minutes before start
	NotificationsGranted bool    `json:"notifications_granted"` // platform push allowed
	AutoStart            bool    `json:"auto_start"`            // launch on login
	SoundDir             string  `json:"sound_dir"`             // directory with team WAV cues
}

// DefaultSettings returns the settings used for any key missing from storage
func DefaultSettings() Settings {
	return Settings{
		SheetKey:             "",
		RefreshInterval:      1,
		SoundEnabled:         true,
		AlertThresholds:      "30,5",
		NotificationsGranted: false,
		AutoStart:            false,
		SoundDir:             "",
	}
}

// EffectiveInterval returns the polling interval with the floor applied
func (s Settings) EffectiveInterval() time.Duration {
	minutes := s.RefreshInterval
	if minutes < MinRefreshInterval {
		minutes = MinRefreshInterval
	}
	return time.Duration(minutes * float64(time.Minute))
}

// Thresholds returns the alert thresholds in minutes, largest first
func (s Settings) Thresholds() []int {
	minutes := []int{}
	seen := make(map[int]bool)

	for _, part := range strings.Split(s.AlertThresholds, ",") {
		part = strings.TrimSpace(part)
		if min, err := strconv.Atoi(part); err == nil {
			if min > 0 && !seen[min] {
				minutes = append(minutes, min)
				seen[min] = true
			}
		}
	}

	if len(minutes) == 0 {
		return append([]int(nil), DefaultAlertThresholds...)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(minutes)))
	return minutes
}
