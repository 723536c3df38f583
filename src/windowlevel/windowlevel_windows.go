//go:build windows

package windowlevel

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpShowWindow = 0x0040
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW         = user32.NewProc("FindWindowW")
	procSetWindowPos        = user32.NewProc("SetWindowPos")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procIsWindow            = user32.NewProc("IsWindow")

	hwndTopmost = ^uintptr(0) // (HWND)-1
)

type windowsController struct {
	title string
	hwnd  uintptr
}

func newPlatform(title string) Controller {
	return &windowsController{title: title}
}

func (c *windowsController) window() (uintptr, error) {
	if c.hwnd != 0 {
		if ok, _, _ := procIsWindow.Call(c.hwnd); ok != 0 {
			return c.hwnd, nil
		}
		c.hwnd = 0
	}
	title, err := windows.UTF16PtrFromString(c.title)
	if err != nil {
		return 0, err
	}
	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(title)))
	if hwnd == 0 {
		return 0, fmt.Errorf("window %q not found", c.title)
	}
	c.hwnd = hwnd
	return hwnd, nil
}

func (c *windowsController) Raise() error {
	hwnd, err := c.window()
	if err != nil {
		return err
	}
	r, _, callErr := procSetWindowPos.Call(hwnd, hwndTopmost, 0, 0, 0, 0, swpNoMove|swpNoSize|swpShowWindow)
	if r == 0 {
		return fmt.Errorf("SetWindowPos: %w", callErr)
	}
	procSetForegroundWindow.Call(hwnd)
	return nil
}

func (c *windowsController) Reassert() error {
	hwnd, err := c.window()
	if err != nil {
		return err
	}
	if windows.GetForegroundWindow() == windows.HWND(hwnd) {
		return nil
	}
	if err := c.Raise(); err != nil {
		return errors.Join(errors.New("overlay lost focus"), err)
	}
	return nil
}
