package main

import (
	"fmt"
	"math"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/borgmon/meetwatch/pkg/models"
)

// trayMeetingLimit caps the countdown list in the tray menu
const trayMeetingLimit = 6

// intervalChoices are the refresh intervals offered in the tray, in minutes
var intervalChoices = []float64{0.25, 1, 5, 15}

func (mw *MeetWatch) setupSystemTray() {
	mw.updateSystemTrayMenu()
}

// updateSystemTrayMenu rebuilds the tray menu. Must run on the fyne main thread.
func (mw *MeetWatch) updateSystemTrayMenu() {
	desk, ok := mw.app.(desktop.App)
	if !ok {
		return
	}

	now := time.Now()
	settings := mw.currentSettings()
	result := mw.meetings.Result()
	menuItems := []*fyne.MenuItem{}

	upcoming := mw.meetings.Upcoming(now, trayMeetingLimit)
	if len(upcoming) > 0 {
		menuItems = append(menuItems, disabledItem("Upcoming Today:"))
		for _, m := range upcoming {
			text := fmt.Sprintf("  %s (%s) - %s", m.Time, formatCountdown(m, now), truncateString(m.Project, 35))
			menuItems = append(menuItems, disabledItem(text))
		}
	} else {
		menuItems = append(menuItems, disabledItem("No more meetings today"))
	}

	if result.FromCache {
		menuItems = append(menuItems, disabledItem("Offline: showing cached schedule"))
	}
	if last := mw.lastAlertEvent(); last != nil {
		menuItems = append(menuItems, disabledItem(fmt.Sprintf("Last alert: %s", truncateString(last.Title(), 40))))
	}
	menuItems = append(menuItems, fyne.NewMenuItemSeparator())

	soundItem := fyne.NewMenuItem("Sound Alerts", func() {
		s := mw.currentSettings()
		s.SoundEnabled = !s.SoundEnabled
		mw.updateSettings(s)
		mw.updateSystemTrayMenu()
	})
	soundItem.Checked = settings.SoundEnabled

	intervalItem := fyne.NewMenuItem("Refresh Every", nil)
	intervalItem.ChildMenu = fyne.NewMenu("", mw.intervalMenuItems(settings)...)

	menuItems = append(menuItems,
		fyne.NewMenuItem("Sync Now", func() {
			mw.syncer.SyncNow()
		}),
		soundItem,
		intervalItem,
		fyne.NewMenuItem("Settings", func() {
			mw.showSettingsWindow()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			mw.quit()
		}),
	)

	menu := fyne.NewMenu("MeetWatch", menuItems...)
	desk.SetSystemTrayMenu(menu)
	desk.SetSystemTrayIcon(theme.HistoryIcon())
}

func (mw *MeetWatch) intervalMenuItems(settings models.Settings) []*fyne.MenuItem {
	items := make([]*fyne.MenuItem, 0, len(intervalChoices))
	for _, minutes := range intervalChoices {
		minutes := minutes
		item := fyne.NewMenuItem(formatInterval(minutes), func() {
			s := mw.currentSettings()
			s.RefreshInterval = minutes
			mw.updateSettings(s)
			mw.updateSystemTrayMenu()
		})
		item.Checked = settings.EffectiveInterval() == time.Duration(minutes*float64(time.Minute))
		items = append(items, item)
	}
	return items
}

func disabledItem(label string) *fyne.MenuItem {
	item := fyne.NewMenuItem(label, nil)
	item.Disabled = true
	return item
}

// formatCountdown renders the time until the meeting starts, e.g. "in 1h 05m"
func formatCountdown(m models.Meeting, now time.Time) string {
	start, ok := m.StartsAt(now.Location())
	if !ok {
		return "?"
	}

	minutes := int(math.Ceil(start.Sub(now).Minutes()))
	switch {
	case minutes <= 0:
		return "now"
	case minutes < 60:
		return fmt.Sprintf("in %dm", minutes)
	default:
		return fmt.Sprintf("in %dh %02dm", minutes/60, minutes%60)
	}
}

func formatInterval(minutes float64) string {
	if minutes < 1 {
		return fmt.Sprintf("%.0f seconds", minutes*60)
	}
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%.0f minutes", minutes)
}

// truncateString truncates a string to maxLen runes, adding "..." if needed
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
