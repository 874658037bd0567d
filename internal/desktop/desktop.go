// Package desktop talks to the X server: monitor geometry for sizing the
// overlay canvas, and global hotkeys that reach the controller while
// another application has focus.
package desktop

import (
	"errors"
	"image"

	"github.com/jezek/xgb/xproto"

	"github.com/orthybt/orthy/internal/control"
)

// Monitor describes one output in the X11 layout.
type Monitor struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

var errNoMonitors = errors.New("no monitors available")

// Primary returns the primary monitor, or the first one when none is
// flagged.
func Primary(monitors []Monitor) (Monitor, error) {
	if len(monitors) == 0 {
		return Monitor{}, errNoMonitors
	}
	for _, m := range monitors {
		if m.Primary {
			return m, nil
		}
	}
	return monitors[0], nil
}

// lockMasks are OR'ed into every grab so Caps Lock and Num Lock do not
// disable the bindings.
var lockMasks = []uint16{
	0,
	xproto.ModMaskLock,
	xproto.ModMask2,
	xproto.ModMaskLock | xproto.ModMask2,
}

func stateFromMods(m control.Modifiers) uint16 {
	var s uint16
	if m.Has(control.ModShift) {
		s |= xproto.ModMaskShift
	}
	if m.Has(control.ModCtrl) {
		s |= xproto.ModMaskControl
	}
	if m.Has(control.ModAlt) {
		s |= xproto.ModMask1
	}
	return s
}

func modsFromState(state uint16) control.Modifiers {
	var m control.Modifiers
	if state&xproto.ModMaskShift != 0 {
		m |= control.ModShift
	}
	if state&xproto.ModMaskControl != 0 {
		m |= control.ModCtrl
	}
	if state&xproto.ModMask1 != 0 {
		m |= control.ModAlt
	}
	return m
}

// splitHotkeys separates the bindings that stay grabbed from those that are
// only grabbed while control mode is on.
func splitHotkeys(keys []control.Hotkey) (always, mode []control.Hotkey) {
	for _, k := range keys {
		if k.Mods.Has(control.ModCtrl | control.ModAlt) {
			always = append(always, k)
		} else {
			mode = append(mode, k)
		}
	}
	return always, mode
}

// keycodeMap finds the keycode whose unshifted keysym produces each rune.
// For ASCII letters and digits the keysym value equals the character.
func keycodeMap(min xproto.Keycode, perKeycode int, syms []xproto.Keysym, want []control.Hotkey) map[rune]xproto.Keycode {
	out := make(map[rune]xproto.Keycode, len(want))
	if perKeycode <= 0 {
		return out
	}
	for _, k := range want {
		if _, ok := out[k.Rune]; ok {
			continue
		}
		for i := 0; i*perKeycode < len(syms); i++ {
			if syms[i*perKeycode] == xproto.Keysym(k.Rune) {
				out[k.Rune] = min + xproto.Keycode(i)
				break
			}
		}
	}
	return out
}
