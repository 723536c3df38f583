package windowlevel

import "log"

// Controller keeps the overlay window above every other window. Both methods
// are idempotent.
type Controller interface {
	// Raise makes the window topmost and focused.
	Raise() error
	// Reassert raises the window again only if it lost topmost or focus.
	Reassert() error
}

// New returns the controller for the window with the given title on this platform.
func New(title string) Controller {
	return newPlatform(title)
}

// Noop is the controller for platforms where the window manager keeps
// full-screen overlays on top by itself.
type Noop struct{}

func (Noop) Raise() error    { return nil }
func (Noop) Reassert() error { return nil }

// Keeper returns a periodic task that calls c.Reassert and logs a failure
// only when it differs from the previous one.
func Keeper(c Controller) func() {
	var last string
	return func() {
		err := c.Reassert()
		if err == nil {
			last = ""
			return
		}
		if msg := err.Error(); msg != last {
			last = msg
			log.Printf("WINDOWLEVEL: reassert failed: %v", err)
		}
	}
}
