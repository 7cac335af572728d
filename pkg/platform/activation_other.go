//go:build !darwin

package platform

// HideDockIcon is a no-op outside macOS
func HideDockIcon() {}
