package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/borgmon/meetwatch/pkg/models"
)

type SettingsWindow struct {
	window   fyne.Window
	app      fyne.App
	settings models.Settings
	onSave   func(models.Settings)

	sheetKeyEntry      *widget.Entry
	intervalSelect     *widget.Select
	thresholdsEntry    *widget.Entry
	soundDirEntry      *widget.Entry
	soundCheck         *widget.Check
	notificationsCheck *widget.Check
	autoStartCheck     *widget.Check
	saveStatusLabel    *widget.Label
}

func NewSettingsWindow(app fyne.App, settings models.Settings, onSave func(models.Settings)) *SettingsWindow {
	sw := &SettingsWindow{
		app:      app,
		settings: settings,
		onSave:   onSave,
	}

	sw.window = app.NewWindow("MeetWatch - Settings")
	sw.buildUI()

	return sw
}

func (sw *SettingsWindow) buildUI() {
	sw.sheetKeyEntry = widget.NewEntry()
	sw.sheetKeyEntry.SetPlaceHolder("2PACX-... publish key of the meeting sheet")
	sw.sheetKeyEntry.SetText(sw.settings.SheetKey)

	choices := make([]string, 0, len(intervalChoices))
	for _, minutes := range intervalChoices {
		choices = append(choices, formatInterval(minutes))
	}
	sw.intervalSelect = widget.NewSelect(choices, nil)
	sw.intervalSelect.SetSelected(formatInterval(sw.settings.RefreshInterval))

	sw.thresholdsEntry = widget.NewEntry()
	sw.thresholdsEntry.SetPlaceHolder("30,5")
	sw.thresholdsEntry.SetText(sw.settings.AlertThresholds)

	sw.soundDirEntry = widget.NewEntry()
	sw.soundDirEntry.SetPlaceHolder("Folder with <team>.wav cues")
	sw.soundDirEntry.SetText(sw.settings.SoundDir)

	sw.soundCheck = widget.NewCheck("Play team sound cues", nil)
	sw.soundCheck.SetChecked(sw.settings.SoundEnabled)

	sw.notificationsCheck = widget.NewCheck("Send desktop notifications", nil)
	sw.notificationsCheck.SetChecked(sw.settings.NotificationsGranted)

	sw.autoStartCheck = widget.NewCheck("Start on login", nil)
	sw.autoStartCheck.SetChecked(sw.settings.AutoStart)

	storageEntry := widget.NewEntry()
	storageEntry.SetText(sw.app.Storage().RootURI().String())
	storageEntry.Disable()

	soundDirHelp := widget.NewLabel("Sound folder changes apply after restart")
	soundDirHelp.Importance = widget.MediumImportance

	form := container.New(layout.NewFormLayout(),
		widget.NewLabel("Sheet Key:"), sw.sheetKeyEntry,
		widget.NewLabel("Refresh Every:"), sw.intervalSelect,
		widget.NewLabel("Alert Minutes:"), sw.thresholdsEntry,
		container.NewVBox(widget.NewLabel("Sound Folder:"), soundDirHelp), sw.soundDirEntry,
		widget.NewLabel("Alerts:"), container.NewVBox(sw.soundCheck, sw.notificationsCheck),
		widget.NewLabel("General:"), sw.autoStartCheck,
		widget.NewLabel("Storage Location:"), storageEntry,
	)

	sw.saveStatusLabel = widget.NewLabel("")

	saveButton := widget.NewButton("Save", sw.save)
	saveButton.Importance = widget.HighImportance

	content := container.NewBorder(
		nil,
		container.NewHBox(sw.saveStatusLabel, layout.NewSpacer(), saveButton),
		nil,
		nil,
		container.NewVScroll(form),
	)

	sw.window.SetContent(container.NewPadded(content))
	sw.window.Resize(fyne.NewSize(560, 420))
}

func (sw *SettingsWindow) save() {
	settings, err := sw.settingsFromUI()
	if err != nil {
		sw.setStatus(err.Error(), widget.DangerImportance)
		return
	}

	sw.settings = settings
	if sw.onSave != nil {
		sw.onSave(settings)
	}
	sw.setStatus("Settings saved", widget.SuccessImportance)

	time.AfterFunc(3*time.Second, func() {
		fyne.Do(func() {
			if sw.saveStatusLabel.Text == "Settings saved" {
				sw.setStatus("", widget.MediumImportance)
			}
		})
	})
}

func (sw *SettingsWindow) settingsFromUI() (models.Settings, error) {
	settings := sw.settings
	settings.SheetKey = strings.TrimSpace(sw.sheetKeyEntry.Text)
	settings.SoundDir = strings.TrimSpace(sw.soundDirEntry.Text)
	settings.SoundEnabled = sw.soundCheck.Checked
	settings.NotificationsGranted = sw.notificationsCheck.Checked
	settings.AutoStart = sw.autoStartCheck.Checked

	for i, label := range sw.intervalSelect.Options {
		if label == sw.intervalSelect.Selected {
			settings.RefreshInterval = intervalChoices[i]
		}
	}

	thresholds := strings.TrimSpace(sw.thresholdsEntry.Text)
	for _, part := range strings.Split(thresholds, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err != nil || n <= 0 {
			return settings, fmt.Errorf("alert minutes must be positive numbers: %q", part)
		}
	}
	settings.AlertThresholds = thresholds

	return settings, nil
}

func (sw *SettingsWindow) setStatus(text string, importance widget.Importance) {
	sw.saveStatusLabel.SetText(text)
	sw.saveStatusLabel.Importance = importance
	sw.saveStatusLabel.Refresh()
}

func (sw *SettingsWindow) Show() {
	sw.window.Show()
}

func (mw *MeetWatch) showSettingsWindow() {
	if mw.settingsWindow != nil {
		mw.settingsWindow.window.RequestFocus()
		mw.settingsWindow.window.Show()
		return
	}

	mw.settingsWindow = NewSettingsWindow(mw.app, mw.currentSettings(), mw.updateSettings)
	mw.settingsWindow.window.SetOnClosed(func() {
		mw.settingsWindow = nil
	})
	mw.settingsWindow.Show()
}
