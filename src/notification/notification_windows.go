//go:build windows

package notification

import (
	"golang.org/x/sys/windows"
)

const (
	mbOK              = 0x00000000
	mbIconWarning     = 0x00000030
	mbIconInformation = 0x00000040
	mbTopmost         = 0x00040000
)

func showWarning(title, message string) {
	messageBox(title, message, mbOK|mbIconWarning|mbTopmost)
}

func showInfo(title, message string) {
	messageBox(title, message, mbOK|mbIconInformation|mbTopmost)
}

func messageBox(title, message string, flags uint32) {
	t, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return
	}
	m, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return
	}
	_, _ = windows.MessageBox(0, m, t, flags)
}
