package main

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"screen-clip/src/cursor"
	"screen-clip/src/eventloop"
	"screen-clip/src/screenshot"
	"screen-clip/src/selection"
	"screen-clip/src/session"
)

// maxIterations bounds a replay; a script needs a handful.
const maxIterations = 64

// step is one scripted gesture, run on the loop goroutine.
type step func(s *session.Session) error

type script struct {
	steps  []step
	action session.Action
}

type replay struct {
	outcome   session.Outcome
	cancelled bool
	ended     bool
	action    session.Action
	frame     *image.RGBA
	copied    string
	cursor    cursor.Shape
	redraws   int
}

type replayHost struct {
	loop    *eventloop.Loop
	redraws int
}

func (h *replayHost) RequestRedraw()         { h.redraws++ }
func (h *replayHost) SetCursor(cursor.Shape) {}
func (h *replayHost) Post(fn func())         { h.loop.Post(fn) }

type memoryClipboard struct{ text string }

func (m *memoryClipboard) WriteText(text string) error {
	m.text = text
	return nil
}

func buildScript(opts cliOptions) (*script, error) {
	action, err := session.ParseAction(strings.ToLower(strings.TrimSpace(opts.action)))
	if err != nil {
		return nil, err
	}
	sc := &script{action: action}

	if opts.drag != "" {
		a, b, err := parseDrag(opts.drag)
		if err != nil {
			return nil, err
		}
		sc.steps = append(sc.steps, dragStep(a, b))
	}
	for _, spec := range opts.resize {
		h, d, err := parseResize(spec)
		if err != nil {
			return nil, err
		}
		sc.steps = append(sc.steps, resizeStep(h, d))
	}
	for _, spec := range opts.move {
		d, err := parsePoint(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid --move %q: %w", spec, err)
		}
		sc.steps = append(sc.steps, moveStep(d))
	}
	if opts.hover != "" {
		p, err := parsePoint(opts.hover)
		if err != nil {
			return nil, fmt.Errorf("invalid --hover %q: %w", opts.hover, err)
		}
		sc.steps = append(sc.steps, func(s *session.Session) error {
			s.Handle(session.PointerMoved{Pos: p})
			return nil
		})
	}
	return sc, nil
}

func dragStep(a, b image.Point) step {
	return func(s *session.Session) error {
		s.Handle(session.PointerMoved{Pos: a})
		s.Handle(session.PointerPressed{Pos: a, Button: session.ButtonPrimary})
		s.Handle(session.PointerMoved{Pos: b})
		s.Handle(session.PointerReleased{Pos: b, Button: session.ButtonPrimary})
		if !s.Engine().IsFinished() {
			return fmt.Errorf("drag %v-%v is smaller than %dx%d", a, b, selection.MinSize, selection.MinSize)
		}
		return nil
	}
}

func resizeStep(h selection.Handle, d image.Point) step {
	return func(s *session.Session) error {
		if !s.Engine().IsFinished() {
			return fmt.Errorf("resize %s needs a selection", h)
		}
		start := selection.HandlePoint(s.Engine().Rect(), h)
		if got := s.Engine().ResizeHandle(start); got != h {
			return fmt.Errorf("handle %s is shadowed by %s on %v", h, got, s.Engine().Rect())
		}
		drag(s, start, start.Add(d))
		return nil
	}
}

func moveStep(d image.Point) step {
	return func(s *session.Session) error {
		e := s.Engine()
		if !e.IsFinished() {
			return errors.New("move needs a selection")
		}
		r := e.Rect()
		start := r.Min.Add(r.Size().Div(2))
		if !e.IsInsideSelection(start) {
			return fmt.Errorf("selection %v is too small to grab for a move", r)
		}
		drag(s, start, start.Add(d))
		return nil
	}
}

func drag(s *session.Session, from, to image.Point) {
	s.Handle(session.PointerMoved{Pos: from})
	s.Handle(session.PointerPressed{Pos: from, Button: session.ButtonPrimary})
	s.Handle(session.PointerMoved{Pos: to})
	s.Handle(session.PointerReleased{Pos: to, Button: session.ButtonPrimary})
}

func keyForAction(a session.Action) session.Key {
	switch a {
	case session.ActionOk:
		return session.KeyEnter
	case session.ActionSave:
		return session.KeyS
	case session.ActionCopyColor:
		return session.KeyC
	default:
		return session.KeyEscape
	}
}

// runReplay feeds the script through a session hosted on an event loop, the
// way the overlay would deliver input, and ends it with the action's key.
// Copying a color does not end a session, so that replay is closed with Escape.
func runReplay(frame *screenshot.Frame, sc *script) (*replay, error) {
	loop := eventloop.New()
	host := &replayHost{loop: loop}
	clip := &memoryClipboard{}
	rep := &replay{action: sc.action}

	sess, err := session.New(frame, session.Config{
		Host:      host,
		Clipboard: clip,
		OnFinished: func(o session.Outcome) {
			rep.outcome, rep.ended = o, true
		},
		OnCancelled: func() {
			rep.cancelled, rep.ended = true, true
		},
	})
	if err != nil {
		return nil, err
	}

	var stepErr error
	for _, st := range sc.steps {
		loop.Post(func() {
			if stepErr == nil {
				stepErr = st(sess)
			}
		})
	}
	loop.Post(func() {
		sess.Tick()
		rep.frame = sess.Render()
		rep.cursor = sess.Cursor()
		if stepErr == nil {
			sess.Handle(session.KeyPressed{Key: keyForAction(sc.action)})
		}
	})
	if sc.action == session.ActionCopyColor {
		loop.Post(func() { sess.Handle(session.KeyPressed{Key: session.KeyEscape}) })
	}
	loop.Drain(maxIterations)

	if stepErr != nil {
		return nil, stepErr
	}
	if !rep.ended {
		return nil, fmt.Errorf("%s was not accepted: %w", sc.action, session.ErrNoSelection)
	}
	rep.copied = clip.text
	rep.redraws = host.redraws
	return rep, nil
}

func parsePoint(s string) (image.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return image.Point{}, fmt.Errorf("expected x,y")
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return image.Point{}, fmt.Errorf("bad x: %w", err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return image.Point{}, fmt.Errorf("bad y: %w", err)
	}
	return image.Pt(x, y), nil
}

func parseDrag(s string) (image.Point, image.Point, error) {
	as, bs, ok := strings.Cut(s, ":")
	if !ok {
		return image.Point{}, image.Point{}, fmt.Errorf("invalid --drag %q: expected x1,y1:x2,y2", s)
	}
	a, err := parsePoint(as)
	if err != nil {
		return image.Point{}, image.Point{}, fmt.Errorf("invalid --drag %q: %w", s, err)
	}
	b, err := parsePoint(bs)
	if err != nil {
		return image.Point{}, image.Point{}, fmt.Errorf("invalid --drag %q: %w", s, err)
	}
	return a, b, nil
}

var handleNames = map[string]selection.Handle{
	"tl": selection.TopLeft,
	"tc": selection.TopCenter,
	"tr": selection.TopRight,
	"ml": selection.MiddleLeft,
	"mr": selection.MiddleRight,
	"bl": selection.BottomLeft,
	"bc": selection.BottomCenter,
	"br": selection.BottomRight,
}

func parseHandle(s string) (selection.Handle, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if h, ok := handleNames[s]; ok {
		return h, nil
	}
	for _, h := range selection.Handles {
		if h.String() == s {
			return h, nil
		}
	}
	return selection.None, fmt.Errorf("unknown handle %q", s)
}

func parseResize(s string) (selection.Handle, image.Point, error) {
	hs, ds, ok := strings.Cut(s, ":")
	if !ok {
		return selection.None, image.Point{}, fmt.Errorf("invalid --resize %q: expected handle:dx,dy", s)
	}
	h, err := parseHandle(hs)
	if err != nil {
		return selection.None, image.Point{}, fmt.Errorf("invalid --resize %q: %w", s, err)
	}
	d, err := parsePoint(ds)
	if err != nil {
		return selection.None, image.Point{}, fmt.Errorf("invalid --resize %q: %w", s, err)
	}
	return h, d, nil
}
