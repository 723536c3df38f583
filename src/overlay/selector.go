package overlay

import (
	"context"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"screen-clip/src/screenshot"
	"screen-clip/src/session"
	"screen-clip/src/throttle"
	"screen-clip/src/windowlevel"
)

const defaultReassertInterval = 250 * time.Millisecond

// Options configures the fyne selector.
type Options struct {
	Clipboard        session.TextClipboard
	ThrottleInterval time.Duration
	// ReassertInterval spaces out checks that the overlay is still topmost.
	ReassertInterval time.Duration
	// Level keeps the overlay above other windows; nil selects the platform controller.
	Level windowlevel.Controller
}

type fyneSelector struct {
	opts Options
}

// NewSelector returns a Selector that shows the frame in a borderless
// full-screen fyne window. fyne allows one running app per process, so a
// process can call Select once.
func NewSelector(opts Options) Selector {
	if opts.ThrottleInterval <= 0 {
		opts.ThrottleInterval = throttle.DefaultInterval
	}
	if opts.ReassertInterval <= 0 {
		opts.ReassertInterval = defaultReassertInterval
	}
	return &fyneSelector{opts: opts}
}

type selectResult struct {
	outcome   session.Outcome
	cancelled bool
	done      bool
}

func (f *fyneSelector) Select(ctx context.Context, frame *screenshot.Frame) (session.Outcome, bool, error) {
	if err := ctx.Err(); err != nil {
		return session.Outcome{}, true, err
	}

	a := app.NewWithID("com.screen-clip.overlay")
	var w fyne.Window
	if drv, ok := a.Driver().(desktop.Driver); ok {
		w = drv.CreateSplashWindow()
		w.SetTitle(WindowTitle)
	} else {
		w = a.NewWindow(WindowTitle)
	}
	w.SetPadded(false)

	var res selectResult
	finish := func(r selectResult) {
		if res.done {
			return
		}
		r.done = true
		res = r
		w.Close()
		a.Quit()
	}

	logical := frame.LogicalSize()
	surf := newSurface(logical)
	sess, err := session.New(frame, session.Config{
		Host:             surf,
		Clipboard:        f.opts.Clipboard,
		ThrottleInterval: f.opts.ThrottleInterval,
		OnFinished:       func(o session.Outcome) { finish(selectResult{outcome: o}) },
		OnCancelled:      func() { finish(selectResult{cancelled: true}) },
	})
	if err != nil {
		a.Quit()
		return session.Outcome{}, false, err
	}
	surf.attach(sess)

	cancel := func() {
		if !sess.Ended() {
			if err := sess.Perform(session.ActionCancel); err != nil {
				log.Printf("OVERLAY: cancel failed: %v", err)
			}
		}
	}

	w.SetContent(surf)
	w.Resize(fyne.NewSize(float32(logical.X), float32(logical.Y)))
	w.SetFullScreen(true)
	w.Canvas().SetOnTypedKey(surf.typedKey)
	w.SetCloseIntercept(cancel)

	level := f.opts.Level
	if level == nil {
		level = windowlevel.New(WindowTitle)
	}
	keep := windowlevel.Keeper(level)
	a.Lifecycle().SetOnStarted(func() {
		if err := level.Raise(); err != nil {
			log.Printf("OVERLAY: raise failed: %v", err)
		}
	})

	stop := make(chan struct{})
	go func() {
		tick := time.NewTicker(f.opts.ThrottleInterval)
		defer tick.Stop()
		reassert := time.NewTicker(f.opts.ReassertInterval)
		defer reassert.Stop()
		for {
			select {
			case <-tick.C:
				fyne.Do(sess.Tick)
			case <-reassert.C:
				fyne.Do(keep)
			case <-ctx.Done():
				fyne.Do(cancel)
				return
			case <-stop:
				return
			}
		}
	}()

	log.Printf("OVERLAY: showing %v logical overlay", logical)
	w.Show()
	a.Run()
	close(stop)

	if err := ctx.Err(); err != nil {
		return session.Outcome{}, true, err
	}
	if !res.done {
		log.Printf("OVERLAY: window closed without a decision")
		return session.Outcome{}, true, nil
	}
	return res.outcome, res.cancelled, nil
}
