package session

import (
	"fmt"
	"image"
)

// Event is a raw input event delivered by the session host. The set of
// implementations is closed.
type Event interface {
	isEvent()
}

type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Key is the subset of keys the session reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeyC
	KeyS
)

func (k Key) String() string {
	switch k {
	case KeyEscape:
		return "Escape"
	case KeyEnter:
		return "Enter"
	case KeyC:
		return "C"
	case KeyS:
		return "S"
	default:
		return "unknown"
	}
}

type PointerPressed struct {
	Pos    image.Point
	Button Button
}

type PointerMoved struct {
	Pos image.Point
}

type PointerReleased struct {
	Pos    image.Point
	Button Button
}

// PointerEntered is sent when the pointer enters the overlay.
type PointerEntered struct {
	Pos image.Point
}

type KeyPressed struct {
	Key Key
}

func (PointerPressed) isEvent()  {}
func (PointerMoved) isEvent()    {}
func (PointerReleased) isEvent() {}
func (PointerEntered) isEvent()  {}
func (KeyPressed) isEvent()      {}

// Action is a user command on the session.
type Action int

const (
	// ActionOk commits the selection to the primary target (the clipboard by default).
	ActionOk Action = iota
	// ActionSave commits the selection to a timestamped PNG file.
	ActionSave
	ActionCancel
	// ActionCopyColor copies the hex color under the pointer as text.
	ActionCopyColor
)

func (a Action) String() string {
	switch a {
	case ActionOk:
		return "ok"
	case ActionSave:
		return "save"
	case ActionCancel:
		return "cancel"
	case ActionCopyColor:
		return "copy-color"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction maps a command name to its Action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "ok", "copy", "clipboard":
		return ActionOk, nil
	case "save", "file":
		return ActionSave, nil
	case "cancel":
		return ActionCancel, nil
	case "copy-color", "color":
		return ActionCopyColor, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// ActionForKey returns the action bound to k.
func ActionForKey(k Key) (Action, bool) {
	switch k {
	case KeyEscape:
		return ActionCancel, true
	case KeyEnter:
		return ActionOk, true
	case KeyS:
		return ActionSave, true
	case KeyC:
		return ActionCopyColor, true
	default:
		return 0, false
	}
}

// Outcome is how a session ended.
type Outcome struct {
	Action Action
	Rect   image.Rectangle
}
