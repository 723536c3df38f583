package cursor

import (
	"image"

	"screen-clip/src/selection"
)

// Shape is a platform-neutral cursor tag. Hosts translate it to a native cursor.
type Shape int

const (
	Arrow Shape = iota
	// ResizeNWSE is the diagonal cursor for the top-left and bottom-right handles.
	ResizeNWSE
	// ResizeNESW is the diagonal cursor for the top-right and bottom-left handles.
	ResizeNESW
	ResizeVertical
	ResizeHorizontal
	Move
)

func (s Shape) String() string {
	switch s {
	case ResizeNWSE:
		return "resize-nwse"
	case ResizeNESW:
		return "resize-nesw"
	case ResizeVertical:
		return "resize-vertical"
	case ResizeHorizontal:
		return "resize-horizontal"
	case Move:
		return "move"
	default:
		return "arrow"
	}
}

// ForHandle maps a resize handle to its cursor. Opposite handles share a shape.
func ForHandle(h selection.Handle) Shape {
	switch h {
	case selection.TopLeft, selection.BottomRight:
		return ResizeNWSE
	case selection.TopRight, selection.BottomLeft:
		return ResizeNESW
	case selection.TopCenter, selection.BottomCenter:
		return ResizeVertical
	case selection.MiddleLeft, selection.MiddleRight:
		return ResizeHorizontal
	default:
		return Arrow
	}
}

// For returns the cursor to show for pointer pos given the engine's state.
// While a handle or the whole selection is being dragged the grab cursor is kept
// even if the pointer slips off the hit zone.
func For(e *selection.Engine, pos image.Point) Shape {
	switch e.Mode() {
	case selection.ModeResizing:
		return ForHandle(e.CurrentHandle())
	case selection.ModeMoving:
		return Move
	case selection.ModeFinished:
	default:
		return Arrow
	}
	if h := e.ResizeHandle(pos); h != selection.None {
		return ForHandle(h)
	}
	if e.IsInsideSelection(pos) {
		return Move
	}
	return Arrow
}
