//go:build !windows

package notification

// Non-Windows builds have no native dialog; Warning and Info only log.
func showWarning(title, message string) {}

func showInfo(title, message string) {}
