package control

import "strings"

// Modifiers is the set of modifier keys held during an event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

func (m Modifiers) Has(o Modifiers) bool { return o != 0 && m&o == o }

func (m Modifiers) String() string {
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "shift")
	}
	return strings.Join(parts, "+")
}

// ParseModifier maps "ctrl", "alt" or "shift" to its flag.
func ParseModifier(s string) (Modifiers, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ctrl", "control":
		return ModCtrl, true
	case "alt", "mod1":
		return ModAlt, true
	case "shift":
		return ModShift, true
	}
	return 0, false
}

// KeyEvent is a global key press or release delivered by a listener
// running outside the main loop.
type KeyEvent struct {
	Rune    rune
	Mods    Modifiers
	Pressed bool
}

// Action runs fn against the controller on the main loop.
type Action func(c *Controller)

// Hotkey is a binding the listener must grab.
type Hotkey struct {
	Rune rune
	Mods Modifiers
}

// Hotkeys lists every global binding. The first two are always active, the
// rest only act while control mode is on.
var Hotkeys = []Hotkey{
	{'1', ModCtrl | ModAlt},
	{'2', ModCtrl | ModAlt},
	{'w', 0}, {'a', 0}, {'s', 0}, {'d', 0},
	{'z', 0}, {'c', 0},
	{'x', 0},
	{'q', 0},
	{'e', ModAlt},
}

// GlobalKey applies a global key event and reports whether it was used.
func (c *Controller) GlobalKey(ev KeyEvent) bool {
	if !ev.Pressed {
		return false
	}
	r := ev.Rune
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	if ev.Mods.Has(ModCtrl | ModAlt) {
		switch r {
		case '1':
			c.ToggleControlMode()
			return true
		case '2':
			c.ToggleWindow()
			return true
		}
		return false
	}
	if !c.controlMode {
		return false
	}
	step := c.settings.NudgeStep
	switch r {
	case 'w':
		c.Nudge(0, -step)
	case 's':
		c.Nudge(0, step)
	case 'a':
		c.Nudge(-step, 0)
	case 'd':
		c.Nudge(step, 0)
	case 'z':
		c.RotateBy(c.settings.RotateStep)
	case 'c':
		c.RotateBy(-c.settings.RotateStep)
	case 'x':
		c.TogglePivotMode()
	case 'q':
		c.FineZoomOut()
	case 'e':
		if !ev.Mods.Has(ModAlt) {
			return false
		}
		c.FineZoomIn()
	default:
		return false
	}
	return true
}

// Handle runs one event taken from a Sender. Unknown events are ignored.
func (c *Controller) Handle(ev interface{}) bool {
	switch e := ev.(type) {
	case KeyEvent:
		return c.GlobalKey(e)
	case Action:
		e(c)
		return true
	}
	return false
}
