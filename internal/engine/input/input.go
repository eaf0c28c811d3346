// Package input converts SDL2 events into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
	EventFileDrop
)

// Mouse buttons.
const (
	ButtonLeft   = sdl.BUTTON_LEFT
	ButtonMiddle = sdl.BUTTON_MIDDLE
	ButtonRight  = sdl.BUTTON_RIGHT
)

// Event is one processed input event. Mouse coordinates are in window
// coordinates with the origin top-left.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Mod    sdl.Keymod
	Width  int
	Height int
	MouseX int
	MouseY int
	DeltaX int
	DeltaY int
	Wheel  float32
	Button uint8
	Path   string
}

// Input collects the events of one frame.
type Input struct {
	events []Event
}

// New creates an input handler and enables file drops onto the window.
func New() *Input {
	sdl.EventState(sdl.DROPFILE, sdl.ENABLE)
	return &Input{events: make([]Event, 0, 16)}
}

// Update polls pending SDL events. It reports whether a quit was requested.
func (in *Input) Update() bool {
	in.events = in.events[:0]
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			in.events = append(in.events, Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				in.events = append(in.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				in.events = append(in.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
					Mod:  sdl.Keymod(e.Keysym.Mod),
				})
			}

		case *sdl.MouseMotionEvent:
			in.events = append(in.events, Event{
				Type:   EventMouseMove,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				DeltaX: int(e.XRel),
				DeltaY: int(e.YRel),
			})

		case *sdl.MouseButtonEvent:
			t := EventMouseDown
			if e.Type == sdl.MOUSEBUTTONUP {
				t = EventMouseUp
			}
			in.events = append(in.events, Event{
				Type:   t,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
				Mod:    sdl.GetModState(),
			})

		case *sdl.MouseWheelEvent:
			x, y, _ := sdl.GetMouseState()
			wheel := float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				wheel = -wheel
			}
			in.events = append(in.events, Event{
				Type:   EventMouseWheel,
				MouseX: int(x),
				MouseY: int(y),
				Wheel:  wheel,
			})

		case *sdl.DropEvent:
			if e.Type == sdl.DROPFILE {
				x, y, _ := sdl.GetMouseState()
				in.events = append(in.events, Event{
					Type:   EventFileDrop,
					MouseX: int(x),
					MouseY: int(y),
					Path:   e.File,
				})
			}
		}
	}
	return quit
}

// Events returns the events from the last Update.
func (in *Input) Events() []Event {
	return in.events
}
