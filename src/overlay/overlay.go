package overlay

import (
	"context"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"screen-clip/src/cursor"
	"screen-clip/src/screenshot"
	"screen-clip/src/session"
)

// WindowTitle names the overlay window so the window-level controller can find it.
const WindowTitle = "screen-clip overlay"

// Selector runs one interactive region selection over a captured frame.
// The call blocks and must be made from the main goroutine.
// Returns (outcome, cancelled, error). If cancelled is true the outcome is undefined.
type Selector interface {
	Select(ctx context.Context, frame *screenshot.Frame) (session.Outcome, bool, error)
}

func keyFor(name fyne.KeyName) session.Key {
	switch name {
	case fyne.KeyEscape:
		return session.KeyEscape
	case fyne.KeyReturn, fyne.KeyEnter:
		return session.KeyEnter
	case fyne.KeyC:
		return session.KeyC
	case fyne.KeyS:
		return session.KeyS
	default:
		return session.KeyUnknown
	}
}

func buttonFor(b desktop.MouseButton) (session.Button, bool) {
	switch b {
	case desktop.MouseButtonPrimary:
		return session.ButtonPrimary, true
	case desktop.MouseButtonSecondary:
		return session.ButtonSecondary, true
	default:
		return 0, false
	}
}

// toLogical maps a position in widget units to the frame's logical pixels.
func toLogical(pos fyne.Position, size fyne.Size, logical image.Point) image.Point {
	x, y := float64(pos.X), float64(pos.Y)
	if size.Width > 0 && size.Height > 0 {
		x = x * float64(logical.X) / float64(size.Width)
		y = y * float64(logical.Y) / float64(size.Height)
	}
	return image.Pt(clamp(int(x), 0, logical.X), clamp(int(y), 0, logical.Y))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var (
	nwseCursor = newArrowCursor(image.Pt(-1, -1), image.Pt(1, 1))
	neswCursor = newArrowCursor(image.Pt(1, -1), image.Pt(-1, 1))
	moveCursor = newArrowCursor(image.Pt(1, 0), image.Pt(-1, 0), image.Pt(0, 1), image.Pt(0, -1))
)

// cursorFor maps a cursor shape onto fyne. Shapes fyne has no standard
// cursor for are drawn.
func cursorFor(shape cursor.Shape) desktop.Cursor {
	switch shape {
	case cursor.ResizeHorizontal:
		return desktop.HResizeCursor
	case cursor.ResizeVertical:
		return desktop.VResizeCursor
	case cursor.ResizeNWSE:
		return nwseCursor
	case cursor.ResizeNESW:
		return neswCursor
	case cursor.Move:
		return moveCursor
	default:
		return desktop.DefaultCursor
	}
}
