package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Bindings maps actions to keys.
type Bindings struct {
	Forward, Back sdl.Scancode
	Left, Right   sdl.Scancode
	Down, Up      sdl.Scancode
	Fast          sdl.Scancode
	Wireframe     sdl.Scancode
	Screenshot    sdl.Scancode
	ToggleCamera  sdl.Scancode
	ReleaseMouse  sdl.Scancode
	Quit          []sdl.Scancode
}

// DefaultBindings returns WASD movement with Q/E for height, Z for
// wireframe, Tab for the overview camera, F12 for screenshots and
// Escape or Space to quit.
func DefaultBindings() Bindings {
	return Bindings{
		Forward:      sdl.SCANCODE_W,
		Back:         sdl.SCANCODE_S,
		Left:         sdl.SCANCODE_A,
		Right:        sdl.SCANCODE_D,
		Down:         sdl.SCANCODE_Q,
		Up:           sdl.SCANCODE_E,
		Fast:         sdl.SCANCODE_LSHIFT,
		Wireframe:    sdl.SCANCODE_Z,
		Screenshot:   sdl.SCANCODE_F12,
		ToggleCamera: sdl.SCANCODE_TAB,
		ReleaseMouse: sdl.SCANCODE_LALT,
		Quit:         []sdl.Scancode{sdl.SCANCODE_ESCAPE, sdl.SCANCODE_SPACE},
	}
}

// Actions is what the player asked for during one frame.
type Actions struct {
	Forward, Right, Up float32 // movement axes in [-1, 1]
	Fast               bool
	LookX, LookY       float32 // relative mouse motion
	Zoom               float32 // wheel clicks

	Screenshot   bool
	ToggleCamera bool
	Quit         bool

	Resized       bool
	Width, Height int
}

// Controls turns raw events into per-frame Actions and keeps toggles.
type Controls struct {
	Bindings Bindings

	// IsWire is the wireframe toggle.
	IsWire bool
	// MouseCaptured reports whether mouse motion steers the camera.
	MouseCaptured bool

	held map[sdl.Scancode]bool
}

// NewControls creates controls with the given bindings.
func NewControls(b Bindings) *Controls {
	return &Controls{
		Bindings:      b,
		MouseCaptured: true,
		held:          make(map[sdl.Scancode]bool),
	}
}

// Apply consumes one frame of events.
func (c *Controls) Apply(events []Event) Actions {
	var a Actions
	b := c.Bindings

	for _, e := range events {
		switch e.Type {
		case EventQuit:
			a.Quit = true

		case EventWindowResize:
			a.Resized = true
			a.Width, a.Height = e.Width, e.Height

		case EventKeyDown:
			c.held[e.Key] = true
			if e.Repeat {
				continue
			}
			switch e.Key {
			case b.Wireframe:
				c.IsWire = !c.IsWire
			case b.Screenshot:
				a.Screenshot = true
			case b.ToggleCamera:
				a.ToggleCamera = true
			case b.ReleaseMouse:
				c.MouseCaptured = !c.MouseCaptured
			}
			for _, q := range b.Quit {
				if e.Key == q {
					a.Quit = true
				}
			}

		case EventKeyUp:
			delete(c.held, e.Key)

		case EventMouseMove:
			if c.MouseCaptured {
				a.LookX += float32(e.RelX)
				a.LookY += float32(e.RelY)
			}

		case EventMouseWheel:
			a.Zoom += e.Wheel
		}
	}

	a.Forward = c.axis(b.Forward, b.Back)
	a.Right = c.axis(b.Right, b.Left)
	a.Up = c.axis(b.Up, b.Down)
	a.Fast = c.held[b.Fast]
	return a
}

// Held reports whether key is currently down.
func (c *Controls) Held(key sdl.Scancode) bool {
	return c.held[key]
}

func (c *Controls) axis(pos, neg sdl.Scancode) float32 {
	var v float32
	if c.held[pos] {
		v++
	}
	if c.held[neg] {
		v--
	}
	return v
}
