package overlay

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"screen-clip/src/cursor"
	"screen-clip/src/session"
)

// surface is the full-screen widget that shows the composited frame and
// feeds pointer and key input into a session. It is also the session's host.
type surface struct {
	widget.BaseWidget

	raster  *canvas.Raster
	sess    *session.Session
	logical image.Point
	shape   cursor.Shape
	post    func(func())
	last    image.Point
}

var (
	_ desktop.Mouseable  = (*surface)(nil)
	_ desktop.Hoverable  = (*surface)(nil)
	_ desktop.Cursorable = (*surface)(nil)
	_ fyne.Draggable     = (*surface)(nil)
	_ session.Host       = (*surface)(nil)
)

func newSurface(logical image.Point) *surface {
	s := &surface{logical: logical, post: fyne.Do}
	s.raster = canvas.NewRaster(s.draw)
	s.raster.ScaleMode = canvas.ImageScalePixels
	s.ExtendBaseWidget(s)
	return s
}

func (s *surface) attach(sess *session.Session) { s.sess = sess }

func (s *surface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.raster)
}

func (s *surface) MinSize() fyne.Size {
	return fyne.NewSize(float32(s.logical.X), float32(s.logical.Y))
}

func (s *surface) draw(w, h int) image.Image {
	if s.sess == nil {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	return s.sess.Render()
}

// RequestRedraw implements session.Host.
func (s *surface) RequestRedraw() { s.raster.Refresh() }

// SetCursor implements session.Host. fyne reads it back through Cursor.
func (s *surface) SetCursor(shape cursor.Shape) { s.shape = shape }

// Post implements session.Host.
func (s *surface) Post(fn func()) { s.post(fn) }

func (s *surface) Cursor() desktop.Cursor { return cursorFor(s.shape) }

func (s *surface) point(pos fyne.Position) image.Point {
	return toLogical(pos, s.Size(), s.logical)
}

func (s *surface) handle(ev session.Event) {
	if s.sess != nil {
		s.sess.Handle(ev)
	}
}

func (s *surface) MouseDown(ev *desktop.MouseEvent) {
	if b, ok := buttonFor(ev.Button); ok {
		s.last = s.point(ev.Position)
		s.handle(session.PointerPressed{Pos: s.last, Button: b})
	}
}

func (s *surface) MouseUp(ev *desktop.MouseEvent) {
	if b, ok := buttonFor(ev.Button); ok {
		s.last = s.point(ev.Position)
		s.handle(session.PointerReleased{Pos: s.last, Button: b})
	}
}

func (s *surface) MouseIn(ev *desktop.MouseEvent) {
	s.last = s.point(ev.Position)
	s.handle(session.PointerEntered{Pos: s.last})
}

func (s *surface) MouseMoved(ev *desktop.MouseEvent) {
	s.moveTo(s.point(ev.Position))
}

func (s *surface) MouseOut() {}

// Dragged covers drivers that report motion with a button held only as drag events.
func (s *surface) Dragged(ev *fyne.DragEvent) {
	s.moveTo(s.point(ev.Position))
}

// DragEnd releases at the last known point. A release already delivered by
// MouseUp leaves the session finished, so the duplicate is ignored.
func (s *surface) DragEnd() {
	s.handle(session.PointerReleased{Pos: s.last, Button: session.ButtonPrimary})
}

func (s *surface) moveTo(p image.Point) {
	s.last = p
	s.handle(session.PointerMoved{Pos: p})
}

func (s *surface) typedKey(ev *fyne.KeyEvent) {
	if k := keyFor(ev.Name); k != session.KeyUnknown {
		s.handle(session.KeyPressed{Key: k})
	}
}
