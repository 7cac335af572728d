package platform

import (
	"log"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"
)

// AppName is the autostart entry name
const AppName = "meetwatch"

// Launcher describes the login item for the running executable
func Launcher() (*autostart.App, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}

	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	return &autostart.App{
		Name:        AppName,
		DisplayName: "MeetWatch",
		Exec:        []string{execPath, "run"},
	}, nil
}

// SetAutoStart brings the login item in line with enable
func SetAutoStart(enable bool) error {
	app, err := Launcher()
	if err != nil {
		return err
	}

	switch {
	case enable && !app.IsEnabled():
		if err := app.Enable(); err != nil {
			log.Printf("[PLATFORM] Failed to enable autostart: %v", err)
			return err
		}
		log.Println("[PLATFORM] Autostart enabled")
	case !enable && app.IsEnabled():
		if err := app.Disable(); err != nil {
			log.Printf("[PLATFORM] Failed to disable autostart: %v", err)
			return err
		}
		log.Println("[PLATFORM] Autostart disabled")
	}

	return nil
}
