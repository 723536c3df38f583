package selection

import "image"

// Mode identifies which variant of State is active.
type Mode int

const (
	ModeIdle Mode = iota
	ModeSelecting
	ModeFinished
	ModeResizing
	ModeMoving
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeSelecting:
		return "selecting"
	case ModeFinished:
		return "finished"
	case ModeResizing:
		return "resizing"
	case ModeMoving:
		return "moving"
	default:
		return "unknown"
	}
}

// State is the engine's current mode together with the data that mode needs.
// The set of implementations is closed: Idle, Selecting, Finished, Resizing, Moving.
type State interface {
	Mode() Mode
	isState()
}

// Idle means no selection exists.
type Idle struct{}

// Selecting is the initial drag: the rectangle spans Anchor and Live.
type Selecting struct {
	Anchor image.Point
	Live   image.Point
}

// Finished holds a committed-size rectangle that can be resized or moved.
type Finished struct {
	Rect image.Rectangle
}

// Resizing drags Handle of StartRect; Rect is the last accepted rectangle.
type Resizing struct {
	Handle    Handle
	StartRect image.Rectangle
	StartPos  image.Point
	Rect      image.Rectangle
}

// Moving translates StartRect by the pointer delta; Rect is the current position.
type Moving struct {
	StartRect image.Rectangle
	StartPos  image.Point
	Rect      image.Rectangle
}

func (Idle) Mode() Mode      { return ModeIdle }
func (Selecting) Mode() Mode { return ModeSelecting }
func (Finished) Mode() Mode  { return ModeFinished }
func (Resizing) Mode() Mode  { return ModeResizing }
func (Moving) Mode() Mode    { return ModeMoving }

func (Idle) isState()      {}
func (Selecting) isState() {}
func (Finished) isState()  {}
func (Resizing) isState()  {}
func (Moving) isState()    {}

// Normalize returns the rectangle spanned by a and b regardless of drag direction.
func Normalize(a, b image.Point) image.Rectangle {
	return image.Rectangle{Min: a, Max: b}.Canon()
}

// rectOf returns the rectangle a state currently describes.
func rectOf(s State) image.Rectangle {
	switch st := s.(type) {
	case Selecting:
		return Normalize(st.Anchor, st.Live)
	case Finished:
		return st.Rect
	case Resizing:
		return st.Rect
	case Moving:
		return st.Rect
	default:
		return image.Rectangle{}
	}
}
