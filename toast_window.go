package main

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/borgmon/meetwatch/pkg/models"
)

// toastDuration is how long a toast stays up unless dismissed
const toastDuration = 20 * time.Second

type ToastWindow struct {
	window fyne.Window
	app    fyne.App
	event  models.AlertEvent

	closeTimer *time.Timer
}

// NewToastWindow builds the toast. Must be called on the fyne main thread.
func NewToastWindow(app fyne.App, event models.AlertEvent) *ToastWindow {
	tw := &ToastWindow{
		app:   app,
		event: event,
	}

	tw.window = app.NewWindow("Meeting Alert")
	tw.window.SetFixedSize(true)
	tw.buildUI()

	tw.window.SetOnClosed(func() {
		if tw.closeTimer != nil {
			tw.closeTimer.Stop()
		}
	})

	return tw
}

func (tw *ToastWindow) buildUI() {
	title := canvas.NewText(tw.event.Title(), nil)
	title.TextSize = 20
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter

	body := widget.NewLabel(tw.event.Body())
	body.Wrapping = fyne.TextWrapWord
	body.Alignment = fyne.TextAlignCenter

	content := container.NewVBox(
		container.NewPadded(title),
		body,
	)

	if status := tw.event.Meeting.Status; status != "" {
		statusLabel := widget.NewLabel(fmt.Sprintf("Status: %s", status))
		statusLabel.Alignment = fyne.TextAlignCenter
		content.Add(statusLabel)
	}

	content.Add(widget.NewSeparator())

	buttonRow := container.NewHBox()
	if link := tw.event.Meeting.MeetURL; link != "" {
		joinButton := widget.NewButton("Join Meeting", func() {
			tw.openURL(link)
			tw.window.Close()
		})
		joinButton.Importance = widget.HighImportance
		buttonRow.Add(joinButton)
	}
	if link := tw.event.Meeting.TicketURL; link != "" {
		buttonRow.Add(widget.NewButton("Open Ticket", func() {
			tw.openURL(link)
		}))
	}
	buttonRow.Add(widget.NewButton("Dismiss", func() {
		tw.window.Close()
	}))

	content.Add(container.NewCenter(buttonRow))

	tw.window.SetContent(container.NewPadded(content))
	tw.window.Resize(fyne.NewSize(380, 0))
}

func (tw *ToastWindow) openURL(link string) {
	u, err := url.Parse(link)
	if err != nil {
		log.Printf("[TOAST] Invalid link %q: %v", link, err)
		return
	}
	if err := tw.app.OpenURL(u); err != nil {
		log.Printf("[TOAST] Failed to open %s: %v", link, err)
	}
}

// Show displays the toast and schedules it to close itself
func (tw *ToastWindow) Show() {
	tw.window.Show()
	tw.window.RequestFocus()

	tw.closeTimer = time.AfterFunc(toastDuration, func() {
		fyne.Do(tw.window.Close)
	})
}
