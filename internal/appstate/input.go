package appstate

import (
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/orthybt/orthy/internal/control"
)

// modifiers converts window-system modifier flags.
func modifiers(m key.Modifiers) control.Modifiers {
	var out control.Modifiers
	if m&key.ModShift != 0 {
		out |= control.ModShift
	}
	if m&key.ModControl != 0 {
		out |= control.ModCtrl
	}
	if m&key.ModAlt != 0 {
		out |= control.ModAlt
	}
	return out
}

// wheelNotches maps a wheel button to signed notches. X11 reports each
// tick as a discrete button.
func wheelNotches(b mouse.Button) float64 {
	switch b {
	case mouse.ButtonWheelUp:
		return control.NormalizeWheel(1, true)
	case mouse.ButtonWheelDown:
		return control.NormalizeWheel(-1, true)
	}
	return 0
}

// localAction maps shortcuts typed into one of our own windows. Global
// bindings arrive separately from the hotkey listener.
func localAction(e key.Event) control.Action {
	if e.Direction != key.DirPress {
		return nil
	}
	ctrl := e.Modifiers&key.ModControl != 0
	switch e.Code {
	case key.CodeEscape:
		return func(c *control.Controller) { c.CancelPivot() }
	case key.CodeTab:
		return func(c *control.Controller) { c.CycleActive() }
	case key.CodeDeleteForward:
		return func(c *control.Controller) { c.DeleteActive() }
	case key.CodeLeftArrow:
		return nudge(-1, 0)
	case key.CodeRightArrow:
		return nudge(1, 0)
	case key.CodeUpArrow:
		return nudge(0, -1)
	case key.CodeDownArrow:
		return nudge(0, 1)
	}
	if !ctrl {
		return nil
	}
	switch e.Rune {
	case 'z', 'Z':
		if e.Modifiers&key.ModShift != 0 {
			return func(c *control.Controller) { c.Redo() }
		}
		return func(c *control.Controller) { c.Undo() }
	case 'y', 'Y':
		return func(c *control.Controller) { c.Redo() }
	case 'o', 'O':
		return func(c *control.Controller) { c.OpenImage() }
	case 'v', 'V':
		return func(c *control.Controller) { c.PasteClipboard() }
	case 'h', 'H':
		return func(c *control.Controller) { c.FlipHorizontal() }
	case 'j', 'J':
		return func(c *control.Controller) { c.FlipVertical() }
	case 't', 'T':
		return func(c *control.Controller) { c.ToggleTransparency() }
	case '+', '=':
		return func(c *control.Controller) { c.ZoomIn() }
	case '-':
		return func(c *control.Controller) { c.ZoomOut() }
	}
	return nil
}

func nudge(dx, dy float64) control.Action {
	return func(c *control.Controller) {
		step := c.Settings().NudgeStep
		c.Nudge(dx*step, dy*step)
	}
}
