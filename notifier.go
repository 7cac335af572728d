package main

import (
	"log"

	"fyne.io/fyne/v2"
	"github.com/borgmon/meetwatch/pkg/models"
)

// Toast records the alert for the tray and pops up a toast window
func (mw *MeetWatch) Toast(event models.AlertEvent) {
	mw.mu.Lock()
	mw.lastAlert = &event
	mw.mu.Unlock()

	log.Printf("[TOAST] %s: %s", event.Title(), event.Body())

	fyne.Do(func() {
		NewToastWindow(mw.app, event).Show()
		mw.updateSystemTrayMenu()
	})
}

// Push sends a platform notification
func (mw *MeetWatch) Push(event models.AlertEvent) error {
	mw.app.SendNotification(fyne.NewNotification(event.Title(), event.Body()))
	return nil
}

func (mw *MeetWatch) lastAlertEvent() *models.AlertEvent {
	mw.mu.RLock()
	defer mw.mu.RUnlock()
	return mw.lastAlert
}
