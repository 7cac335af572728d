package store

import (
	"encoding/json"
	"log"

	"fyne.io/fyne/v2"
	"github.com/borgmon/meetwatch/pkg/models"
)

// Preference keys. Each holds one opaque value.
const (
	KeySettings      = "settings"
	KeyMeetingsCache = "meetings_cache"
	KeyLastSync      = "last_sync"
)

// ConfigStore handles settings persistence using Fyne preferences
type ConfigStore struct {
	prefs fyne.Preferences
}

// NewConfigStore creates a new ConfigStore instance
func NewConfigStore(prefs fyne.Preferences) *ConfigStore {
	return &ConfigStore{prefs: prefs}
}

// Load loads settings, applying defaults for any missing key
func (cs *ConfigStore) Load() models.Settings {
	settings := models.DefaultSettings()

	blob := cs.prefs.String(KeySettings)
	if blob == "" {
		return settings
	}

	// Decoding over the defaults keeps them for keys absent from the blob
	if err := json.Unmarshal([]byte(blob), &settings); err != nil {
		log.Printf("[STORE] Ignoring unreadable settings: %v", err)
		return models.DefaultSettings()
	}

	return settings
}

// Save saves settings to preferences
func (cs *ConfigStore) Save(settings models.Settings) {
	blob, err := json.Marshal(settings)
	if err != nil {
		log.Printf("[STORE] Failed to encode settings: %v", err)
		return
	}
	cs.prefs.SetString(KeySettings, string(blob))
}
