package selection

import "image"

const (
	// MinSize is the smallest width and height, in logical pixels, a selection may have.
	MinSize = 10
	// HandleSize is the side of a drawn resize handle.
	HandleSize = 8
	// HitTolerance is how far from a handle point the pointer may be and still grab it.
	HitTolerance = HandleSize/2 + 2
)

// Handle is one of the eight resize grips around a selection.
type Handle int

const (
	None Handle = iota
	TopLeft
	TopCenter
	TopRight
	MiddleLeft
	MiddleRight
	BottomLeft
	BottomCenter
	BottomRight
)

// Handles lists the grips in hit-test priority order.
var Handles = []Handle{
	TopLeft,
	TopCenter,
	TopRight,
	MiddleLeft,
	MiddleRight,
	BottomLeft,
	BottomCenter,
	BottomRight,
}

func (h Handle) String() string {
	switch h {
	case TopLeft:
		return "top-left"
	case TopCenter:
		return "top-center"
	case TopRight:
		return "top-right"
	case MiddleLeft:
		return "middle-left"
	case MiddleRight:
		return "middle-right"
	case BottomLeft:
		return "bottom-left"
	case BottomCenter:
		return "bottom-center"
	case BottomRight:
		return "bottom-right"
	default:
		return "none"
	}
}

// HandlePoint returns the geometric point of h on r: a corner or an edge midpoint.
func HandlePoint(r image.Rectangle, h Handle) image.Point {
	cx := (r.Min.X + r.Max.X) / 2
	cy := (r.Min.Y + r.Max.Y) / 2
	switch h {
	case TopLeft:
		return r.Min
	case TopCenter:
		return image.Pt(cx, r.Min.Y)
	case TopRight:
		return image.Pt(r.Max.X, r.Min.Y)
	case MiddleLeft:
		return image.Pt(r.Min.X, cy)
	case MiddleRight:
		return image.Pt(r.Max.X, cy)
	case BottomLeft:
		return image.Pt(r.Min.X, r.Max.Y)
	case BottomCenter:
		return image.Pt(cx, r.Max.Y)
	case BottomRight:
		return r.Max
	default:
		return image.Point{}
	}
}

// HandleZone is the square hit area around h.
func HandleZone(r image.Rectangle, h Handle) image.Rectangle {
	if h == None {
		return image.Rectangle{}
	}
	c := HandlePoint(r, h)
	return image.Rect(c.X-HitTolerance, c.Y-HitTolerance, c.X+HitTolerance, c.Y+HitTolerance)
}

// HandleRect is the drawn square of h.
func HandleRect(r image.Rectangle, h Handle) image.Rectangle {
	if h == None {
		return image.Rectangle{}
	}
	c := HandlePoint(r, h)
	return image.Rect(c.X-HandleSize/2, c.Y-HandleSize/2, c.X+HandleSize/2, c.Y+HandleSize/2)
}

// HitHandle returns the first handle of r, in priority order, whose zone contains pt.
func HitHandle(r image.Rectangle, pt image.Point) Handle {
	for _, h := range Handles {
		if pt.In(HandleZone(r, h)) {
			return h
		}
	}
	return None
}
