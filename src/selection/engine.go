package selection

import (
	"image"
	"log"
)

// Engine is the selection state machine. Operations that do not apply to the
// current state are silent no-ops; they represent a gesture being backed out,
// not a failure.
//
// Engine is not safe for concurrent use. It is owned by a single session and
// driven from that session's event loop.
type Engine struct {
	state State
}

// New returns an engine in the Idle state.
func New() *Engine {
	return &Engine{state: Idle{}}
}

// State returns the active state variant.
func (e *Engine) State() State { return e.state }

// Mode returns the active state's mode.
func (e *Engine) Mode() Mode { return e.state.Mode() }

// Rect returns the current logical selection rectangle, or the zero rectangle when idle.
func (e *Engine) Rect() image.Rectangle { return rectOf(e.state) }

// HasSelection reports whether any rectangle, finished or in progress, exists.
func (e *Engine) HasSelection() bool { return e.state.Mode() != ModeIdle }

// IsSelecting reports whether the initial drag is in progress.
func (e *Engine) IsSelecting() bool { return e.state.Mode() == ModeSelecting }

// IsFinished reports whether the selection has been placed, including while
// it is being resized or moved.
func (e *Engine) IsFinished() bool {
	switch e.state.Mode() {
	case ModeFinished, ModeResizing, ModeMoving:
		return true
	}
	return false
}

// IsResizing reports whether a handle is being dragged.
func (e *Engine) IsResizing() bool { return e.state.Mode() == ModeResizing }

// IsMoving reports whether the selection is being dragged as a whole.
func (e *Engine) IsMoving() bool { return e.state.Mode() == ModeMoving }

// CurrentHandle returns the handle being dragged, or None.
func (e *Engine) CurrentHandle() Handle {
	if st, ok := e.state.(Resizing); ok {
		return st.Handle
	}
	return None
}

// StartSelection begins a new drag anchored at pt. Any finished rectangle is discarded.
func (e *Engine) StartSelection(pt image.Point) {
	switch e.state.(type) {
	case Idle, Finished:
	default:
		return
	}
	e.state = Selecting{Anchor: pt, Live: pt}
	log.Printf("SELECTION: started at (%d,%d)", pt.X, pt.Y)
}

// UpdateSelection moves the live corner of the initial drag.
func (e *Engine) UpdateSelection(pt image.Point) {
	st, ok := e.state.(Selecting)
	if !ok {
		return
	}
	st.Live = pt
	e.state = st
}

// FinishSelection ends the initial drag. Rectangles smaller than MinSize in
// either dimension are dropped and the engine returns to Idle.
func (e *Engine) FinishSelection() {
	st, ok := e.state.(Selecting)
	if !ok {
		return
	}
	r := Normalize(st.Anchor, st.Live)
	if !meetsMinimum(r) {
		e.state = Idle{}
		log.Printf("SELECTION: %dx%d below minimum, discarded", r.Dx(), r.Dy())
		return
	}
	e.state = Finished{Rect: r}
	log.Printf("SELECTION: finished %v", r)
}

// CancelSelection drops everything and returns to Idle.
func (e *Engine) CancelSelection() {
	e.Reset()
	log.Printf("SELECTION: cancelled")
}

// Reset returns to Idle unconditionally.
func (e *Engine) Reset() {
	e.state = Idle{}
}

// StartResize grabs handle h of a finished selection at pointer position pos.
func (e *Engine) StartResize(h Handle, pos image.Point) {
	st, ok := e.state.(Finished)
	if !ok || h == None {
		return
	}
	e.state = Resizing{Handle: h, StartRect: st.Rect, StartPos: pos, Rect: st.Rect}
	log.Printf("SELECTION: resize started from %s", h)
}

// UpdateResize applies the pointer delta to the edges controlled by the active
// handle. A result smaller than MinSize in either dimension is rejected and
// the last accepted rectangle is kept.
func (e *Engine) UpdateResize(pos image.Point) {
	st, ok := e.state.(Resizing)
	if !ok || st.Handle == None {
		return
	}
	d := pos.Sub(st.StartPos)
	r := st.StartRect
	switch st.Handle {
	case TopLeft:
		r.Min = r.Min.Add(d)
	case TopCenter:
		r.Min.Y += d.Y
	case TopRight:
		r.Min.Y += d.Y
		r.Max.X += d.X
	case MiddleLeft:
		r.Min.X += d.X
	case MiddleRight:
		r.Max.X += d.X
	case BottomLeft:
		r.Min.X += d.X
		r.Max.Y += d.Y
	case BottomCenter:
		r.Max.Y += d.Y
	case BottomRight:
		r.Max = r.Max.Add(d)
	default:
		return
	}
	if !meetsMinimum(r) {
		return
	}
	st.Rect = r
	e.state = st
}

// FinishResize keeps the current rectangle and releases the handle.
func (e *Engine) FinishResize() {
	st, ok := e.state.(Resizing)
	if !ok {
		return
	}
	e.state = Finished{Rect: st.Rect}
	log.Printf("SELECTION: resize finished %v", st.Rect)
}

// StartMove begins dragging a finished selection from pointer position pos.
func (e *Engine) StartMove(pos image.Point) {
	st, ok := e.state.(Finished)
	if !ok {
		return
	}
	e.state = Moving{StartRect: st.Rect, StartPos: pos, Rect: st.Rect}
	log.Printf("SELECTION: move started")
}

// UpdateMove translates the selection by the pointer delta and shifts it back
// inside [0,width) x [0,height). Only the origin changes; a selection larger
// than the bounds keeps its size and is pinned to the top-left.
func (e *Engine) UpdateMove(pos image.Point, width, height int) {
	st, ok := e.state.(Moving)
	if !ok {
		return
	}
	r := st.StartRect.Add(pos.Sub(st.StartPos))
	if r.Max.X > width {
		r = r.Sub(image.Pt(r.Max.X-width, 0))
	}
	if r.Max.Y > height {
		r = r.Sub(image.Pt(0, r.Max.Y-height))
	}
	if r.Min.X < 0 {
		r = r.Add(image.Pt(-r.Min.X, 0))
	}
	if r.Min.Y < 0 {
		r = r.Add(image.Pt(0, -r.Min.Y))
	}
	st.Rect = r
	e.state = st
}

// FinishMove keeps the moved rectangle.
func (e *Engine) FinishMove() {
	st, ok := e.state.(Moving)
	if !ok {
		return
	}
	e.state = Finished{Rect: st.Rect}
	log.Printf("SELECTION: move finished %v", st.Rect)
}

// ResizeHandle returns the handle under pt, or None when there is no selection.
func (e *Engine) ResizeHandle(pt image.Point) Handle {
	if !e.HasSelection() {
		return None
	}
	return HitHandle(e.Rect(), pt)
}

// IsInsideSelection reports whether pt is inside a finished selection and not over a handle.
func (e *Engine) IsInsideSelection(pt image.Point) bool {
	st, ok := e.state.(Finished)
	if !ok || !pt.In(st.Rect) {
		return false
	}
	return HitHandle(st.Rect, pt) == None
}

// IsValidSelection reports whether a selection exists and meets MinSize.
func (e *Engine) IsValidSelection() bool {
	return e.HasSelection() && meetsMinimum(e.Rect())
}

func meetsMinimum(r image.Rectangle) bool {
	return r.Dx() >= MinSize && r.Dy() >= MinSize
}
