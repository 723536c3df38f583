package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"
)

// Config describes the resident tray icon.
type Config struct {
	Title   string
	Tooltip string
	// OnCapture is called from the menu goroutine when "Capture" is clicked.
	OnCapture func()
	// OnExit is called once when the tray shuts down.
	OnExit func()
}

// Tray is the notification-area icon of the resident process.
type Tray struct {
	cfg Config

	mu      sync.Mutex
	ready   bool
	tooltip string
	quit    chan struct{}
	once    sync.Once
}

func New(cfg Config) (*Tray, error) {
	if cfg.Title == "" {
		cfg.Title = "screen-clip"
	}
	if cfg.Tooltip == "" {
		cfg.Tooltip = cfg.Title
	}
	return &Tray{cfg: cfg, tooltip: cfg.Tooltip, quit: make(chan struct{})}, nil
}

// Run blocks until the tray exits. On macOS it must be called from the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// SetTooltip replaces the hover text. It may be called before the tray is ready.
func (t *Tray) SetTooltip(text string) {
	t.mu.Lock()
	t.tooltip = text
	ready := t.ready
	t.mu.Unlock()
	if ready {
		systray.SetTooltip(text)
	}
}

// SetBusy switches the tooltip between the idle text and a capturing notice.
func (t *Tray) SetBusy(busy bool) {
	t.SetTooltip(BusyTooltip(t.cfg.Tooltip, busy))
}

// Destroy removes the icon and stops Run.
func (t *Tray) Destroy() {
	t.once.Do(func() {
		close(t.quit)
		systray.Quit()
	})
}

func (t *Tray) onReady() {
	systray.SetIcon(Icon())
	systray.SetTitle(t.cfg.Title)

	t.mu.Lock()
	t.ready = true
	tooltip := t.tooltip
	t.mu.Unlock()
	systray.SetTooltip(tooltip)

	mCapture := systray.AddMenuItem("Capture", "Select a screen region")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit screen-clip")

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				log.Printf("TRAY: capture clicked")
				if t.cfg.OnCapture != nil {
					t.cfg.OnCapture()
				}
			case <-mQuit.ClickedCh:
				log.Printf("TRAY: quit clicked")
				t.Destroy()
				return
			case <-t.quit:
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}

// BusyTooltip returns the tooltip shown while a capture is open.
func BusyTooltip(idle string, busy bool) string {
	if busy {
		return "screen-clip - selecting region..."
	}
	return idle
}
