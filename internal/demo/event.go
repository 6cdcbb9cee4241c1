// Package demo records the per-tick input stream of a session and replays it
// so the simulation cannot tell a demo from live play.
package demo

import "fmt"

// EventType identifies the kind of input event.
type EventType int

const (
	EventNone EventType = iota
	EventKeyDown
	EventKeyUp
	EventMouseLeftDown
	EventMouseLeftUp
	EventMouseRightDown
	EventMouseRightUp
	EventMouseMove
	EventJoystickButtonDown
	EventJoystickButtonUp
	EventJoystickAxis
	EventQuit
)

func (t EventType) String() string {
	switch t {
	case EventNone:
		return "none"
	case EventKeyDown:
		return "key_down"
	case EventKeyUp:
		return "key_up"
	case EventMouseLeftDown:
		return "mouse_left_down"
	case EventMouseLeftUp:
		return "mouse_left_up"
	case EventMouseRightDown:
		return "mouse_right_down"
	case EventMouseRightUp:
		return "mouse_right_up"
	case EventMouseMove:
		return "mouse_move"
	case EventJoystickButtonDown:
		return "joy_button_down"
	case EventJoystickButtonUp:
		return "joy_button_up"
	case EventJoystickAxis:
		return "joy_axis"
	case EventQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Position is a screen coordinate.
type Position struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
}

// InputEvent is the payload delivered by the input device.
type InputEvent struct {
	Type        EventType `json:"type"`
	Button      int       `json:"button"`      // key code or button id
	ButtonCount int       `json:"buttonCount"` // click count / repeat count
	Position    Position  `json:"position"`
}

// Event is one recorded input together with the cursor position at the time.
type Event struct {
	Input  InputEvent `json:"event"`
	MouseX int16      `json:"mouseX"`
	MouseY int16      `json:"mouseY"`
}

// Equal reports whether two events are the same for de-duplication purposes.
// Buttons only count as different when both the button id and the button
// count differ; existing demo files depend on this rule.
func (e Event) Equal(o Event) bool {
	if e.MouseX != o.MouseX || e.MouseY != o.MouseY {
		return false
	}
	if e.Input.Position != o.Input.Position {
		return false
	}
	if e.Input.Button != o.Input.Button && e.Input.ButtonCount != o.Input.ButtonCount {
		return false
	}
	return e.Input.Type == o.Input.Type
}

func (e Event) String() string {
	return fmt.Sprintf("%s btn=%d x%d at (%d,%d) mouse=(%d,%d)",
		e.Input.Type, e.Input.Button, e.Input.ButtonCount,
		e.Input.Position.X, e.Input.Position.Y, e.MouseX, e.MouseY)
}

// Click builds a mouse event of type t at (x, y), the common case for
// recorded squad orders.
func Click(t EventType, x, y int16) Event {
	return Event{
		Input: InputEvent{
			Type:        t,
			ButtonCount: 1,
			Position:    Position{X: x, Y: y},
		},
		MouseX: x,
		MouseY: y,
	}
}

// Key builds a key event for key code k with the cursor at (mx, my).
func Key(t EventType, k int, mx, my int16) Event {
	return Event{
		Input:  InputEvent{Type: t, Button: k, ButtonCount: 1},
		MouseX: mx,
		MouseY: my,
	}
}
