package session

import (
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"screen-clip/src/cursor"
	"screen-clip/src/render"
	"screen-clip/src/screenshot"
	"screen-clip/src/selection"
	"screen-clip/src/throttle"
)

// Host is the windowing layer a session runs in.
type Host interface {
	// RequestRedraw asks the host to call Render and present the result.
	RequestRedraw()
	SetCursor(shape cursor.Shape)
	// Post runs fn on the next iteration of the host's event loop.
	Post(fn func())
}

// TextClipboard receives copied color values.
type TextClipboard interface {
	WriteText(text string) error
}

// Config configures an interactive session.
type Config struct {
	Host      Host
	Clipboard TextClipboard
	// ThrottleInterval is the minimum spacing between redraws; zero means the default.
	ThrottleInterval time.Duration
	// Now overrides the throttle clock.
	Now func() time.Time
	// OnFinished is called, deferred, when the selection is confirmed with Ok or Save.
	OnFinished func(Outcome)
	// OnCancelled is called, deferred, when the session is cancelled.
	OnCancelled func()
}

// Session owns the selection engine, throttler and renderer for one capture
// and routes host input through them. All methods must be called from the
// host's event loop.
type Session struct {
	frame    *screenshot.Frame
	engine   *selection.Engine
	throttle *throttle.Throttler
	renderer *render.Renderer
	host     Host
	clip     TextClipboard

	onFinished  func(Outcome)
	onCancelled func()

	pointer      image.Point
	pointerValid bool
	shape        cursor.Shape
	ended        bool
}

// New starts a session over frame. A nil or empty frame aborts with screenshot.ErrEmptyCapture.
func New(frame *screenshot.Frame, cfg Config) (*Session, error) {
	if frame == nil || frame.Image == nil || frame.Bounds().Empty() {
		return nil, fmt.Errorf("failed to start session: %w", screenshot.ErrEmptyCapture)
	}
	if cfg.Host == nil {
		return nil, errors.New("session host is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	s := &Session{
		frame:       frame,
		engine:      selection.New(),
		host:        cfg.Host,
		clip:        cfg.Clipboard,
		onFinished:  cfg.OnFinished,
		onCancelled: cfg.OnCancelled,
	}
	s.throttle = throttle.NewWithClock(cfg.ThrottleInterval, cfg.Host.RequestRedraw, now)
	s.renderer = render.New(frame, s.throttle.MagnifierCache())
	log.Printf("SESSION: started on %v frame at ratio %.2f", frame.Bounds().Size(), frame.DevicePixelRatio)
	return s, nil
}

func (s *Session) Engine() *selection.Engine     { return s.engine }
func (s *Session) Throttler() *throttle.Throttler { return s.throttle }
func (s *Session) Frame() *screenshot.Frame       { return s.frame }

// Ended reports whether an end notification has been scheduled.
func (s *Session) Ended() bool { return s.ended }

// Pointer returns the last known pointer position and whether one is known.
func (s *Session) Pointer() (image.Point, bool) { return s.pointer, s.pointerValid }

// Cursor returns the cursor shape last sent to the host.
func (s *Session) Cursor() cursor.Shape { return s.shape }

// Render composites the current frame.
func (s *Session) Render() *image.RGBA {
	return s.renderer.Render(render.Scene{
		Rect:         s.engine.Rect(),
		HasSelection: s.engine.HasSelection(),
		Finished:     s.engine.IsFinished(),
		Pointer:      s.pointer,
		PointerValid: s.pointerValid,
	})
}

// Tick runs the session's periodic work: delivering a coalesced redraw.
func (s *Session) Tick() {
	if s.ended {
		return
	}
	s.throttle.FlushPending()
}

// Handle dispatches one input event. Events after the session ended are dropped.
func (s *Session) Handle(ev Event) {
	if s.ended {
		return
	}
	switch ev := ev.(type) {
	case PointerPressed:
		if ev.Button == ButtonPrimary {
			s.press(ev.Pos)
		}
	case PointerMoved:
		s.move(ev.Pos)
	case PointerReleased:
		if ev.Button == ButtonPrimary {
			s.release(ev.Pos)
		}
	case PointerEntered:
		s.enter(ev.Pos)
	case KeyPressed:
		s.key(ev.Key)
	}
}

func (s *Session) press(pos image.Point) {
	if s.engine.Mode() == selection.ModeFinished {
		if h := s.engine.ResizeHandle(pos); h != selection.None {
			s.engine.StartResize(h, pos)
			s.updateCursor(pos)
			return
		}
		if s.engine.IsInsideSelection(pos) {
			s.engine.StartMove(pos)
			s.updateCursor(pos)
			return
		}
	} else if !s.engine.IsFinished() {
		s.engine.StartSelection(pos)
		s.pointer, s.pointerValid = pos, true
	}
	s.throttle.TriggerOptimizedUpdate()
}

func (s *Session) move(pos image.Point) {
	switch s.engine.Mode() {
	case selection.ModeResizing:
		s.engine.UpdateResize(pos)
		s.throttle.TriggerOptimizedUpdate()
	case selection.ModeMoving:
		size := s.frame.LogicalSize()
		s.engine.UpdateMove(pos, size.X, size.Y)
		s.throttle.TriggerOptimizedUpdate()
	case selection.ModeSelecting:
		s.engine.UpdateSelection(pos)
		s.throttle.TriggerOptimizedUpdate()
	case selection.ModeFinished:
		s.updateCursor(pos)
	default:
		if !s.pointerValid || pos != s.pointer {
			s.pointer, s.pointerValid = pos, true
			s.throttle.UpdateMagnifierRegion(pos)
		}
		return
	}
	s.pointer, s.pointerValid = pos, true
}

func (s *Session) release(pos image.Point) {
	switch s.engine.Mode() {
	case selection.ModeSelecting:
		s.engine.FinishSelection()
		if s.engine.IsValidSelection() {
			s.setCursor(cursor.Arrow)
			s.clearCaches()
			log.Printf("SESSION: selection ready %v", s.engine.Rect())
		}
	case selection.ModeResizing:
		s.engine.FinishResize()
		s.updateCursor(pos)
	case selection.ModeMoving:
		s.engine.FinishMove()
		s.updateCursor(pos)
	default:
		return
	}
	s.throttle.TriggerOptimizedUpdate()
}

func (s *Session) enter(pos image.Point) {
	if s.pointerValid && pos == s.pointer {
		return
	}
	s.pointer, s.pointerValid = pos, true
	s.throttle.UpdateMagnifierRegion(pos)
}

func (s *Session) key(k Key) {
	a, ok := ActionForKey(k)
	if !ok {
		return
	}
	switch a {
	case ActionCopyColor:
		if s.engine.IsFinished() {
			return
		}
	case ActionOk, ActionSave:
		if s.engine.Mode() != selection.ModeFinished {
			return
		}
	}
	if err := s.Perform(a); err != nil {
		log.Printf("SESSION: %s via %s failed: %v", a, k, err)
	}
}

// Perform runs a user command. Ok and Save require a finished selection and,
// like Cancel, end the session; the end callback runs on the host's next loop
// iteration so the event being dispatched completes first.
func (s *Session) Perform(a Action) error {
	if s.ended {
		return errors.New("session already ended")
	}
	switch a {
	case ActionOk, ActionSave:
		if s.engine.Mode() != selection.ModeFinished {
			return ErrNoSelection
		}
		out := Outcome{Action: a, Rect: s.engine.Rect()}
		log.Printf("SESSION: %s %v", a, out.Rect)
		s.end(func() {
			if s.onFinished != nil {
				s.onFinished(out)
			}
		})
		return nil
	case ActionCancel:
		s.engine.CancelSelection()
		s.end(func() {
			if s.onCancelled != nil {
				s.onCancelled()
			}
		})
		return nil
	case ActionCopyColor:
		if s.clip == nil {
			return errors.New("no clipboard available")
		}
		hex := render.ColorToHex(s.renderer.PixelColor(s.pointer))
		if err := s.clip.WriteText(hex); err != nil {
			return fmt.Errorf("failed to copy color %s: %w", hex, err)
		}
		log.Printf("SESSION: copied color %s", hex)
		return nil
	default:
		return fmt.Errorf("unsupported action %s", a)
	}
}

func (s *Session) end(notify func()) {
	s.ended = true
	s.host.Post(notify)
}

func (s *Session) clearCaches() {
	s.throttle.ClearAllCaches()
	s.renderer.ClearCache()
}

func (s *Session) updateCursor(pos image.Point) {
	s.setCursor(cursor.For(s.engine, pos))
}

func (s *Session) setCursor(shape cursor.Shape) {
	if shape == s.shape {
		return
	}
	s.shape = shape
	s.host.SetCursor(shape)
}
