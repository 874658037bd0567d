//go:build linux || freebsd || openbsd || netbsd || dragonfly

package desktop

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"github.com/orthybt/orthy/internal/control"
)

// ListMonitors retrieves all connected outputs using RandR.
func ListMonitors() ([]Monitor, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	defer conn.Close()

	screen, err := defaultScreen(conn)
	if err != nil {
		return nil, err
	}
	monitors, err := fetchMonitors(conn, screen.Root)
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, errNoMonitors
	}
	return monitors, nil
}

// ScreenRect is the area the overlay should cover: the primary monitor,
// or the whole root window when RandR has nothing to say.
func ScreenRect() (image.Rectangle, error) {
	if monitors, err := ListMonitors(); err == nil {
		m, _ := Primary(monitors)
		return m.Rect, nil
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("connect X server: %w", err)
	}
	defer conn.Close()
	screen, err := defaultScreen(conn)
	if err != nil {
		return image.Rectangle{}, err
	}
	return image.Rect(0, 0, int(screen.WidthInPixels), int(screen.HeightInPixels)), nil
}

func defaultScreen(conn *xgb.Conn) (*xproto.ScreenInfo, error) {
	setup := xproto.Setup(conn)
	if setup == nil {
		return nil, fmt.Errorf("xproto setup unavailable")
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		return nil, fmt.Errorf("xproto screen unavailable")
	}
	return screen, nil
}

func fetchMonitors(conn *xgb.Conn, root xproto.Window) ([]Monitor, error) {
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("init randr: %w", err)
	}
	res, err := randr.GetScreenResources(conn, root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}
	primaryOutput := randr.Output(0)
	if primary, err := randr.GetOutputPrimary(conn, root).Reply(); err == nil {
		primaryOutput = primary.Output
	}
	monitors := make([]Monitor, 0, len(res.Outputs))
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, output, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		monitors = append(monitors, Monitor{
			Index:   len(monitors),
			Name:    strings.TrimSpace(string(info.Name)),
			Rect:    image.Rect(int(crtc.X), int(crtc.Y), int(crtc.X)+int(crtc.Width), int(crtc.Y)+int(crtc.Height)),
			Primary: output == primaryOutput,
		})
	}
	return monitors, nil
}

// Listener grabs the global hotkeys on the root window and forwards them
// to a control.Sender as control.KeyEvent values.
type Listener struct {
	conn  *xgb.Conn
	root  xproto.Window
	out   control.Sender
	log   *slog.Logger
	codes map[rune]xproto.Keycode
	runes map[xproto.Keycode]rune

	always, mode []control.Hotkey

	mu       sync.Mutex
	modeOn   bool
	closeOne sync.Once
}

// Listen connects to the X server and grabs the always-on bindings. The
// control-mode bindings are grabbed by SetControlMode.
func Listen(out control.Sender, log *slog.Logger) (*Listener, error) {
	if log == nil {
		log = slog.Default()
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	screen, err := defaultScreen(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	setup := xproto.Setup(conn)
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	km, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, count).Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("keyboard mapping: %w", err)
	}

	l := &Listener{
		conn:  conn,
		root:  screen.Root,
		out:   out,
		log:   log,
		codes: keycodeMap(setup.MinKeycode, int(km.KeysymsPerKeycode), km.Keysyms, control.Hotkeys),
		runes: make(map[xproto.Keycode]rune),
	}
	for r, code := range l.codes {
		l.runes[code] = r
	}
	l.always, l.mode = splitHotkeys(control.Hotkeys)
	l.grab(l.always)
	return l, nil
}

func (l *Listener) grab(keys []control.Hotkey) {
	for _, k := range keys {
		code, ok := l.codes[k.Rune]
		if !ok {
			l.log.Warn("no keycode for hotkey", "key", string(k.Rune))
			continue
		}
		for _, lock := range lockMasks {
			err := xproto.GrabKeyChecked(l.conn, true, l.root, stateFromMods(k.Mods)|lock, code,
				xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
			if err != nil {
				l.log.Warn("grab hotkey", "key", string(k.Rune), "mods", k.Mods.String(), "err", err)
				break
			}
		}
	}
}

func (l *Listener) ungrab(keys []control.Hotkey) {
	for _, k := range keys {
		code, ok := l.codes[k.Rune]
		if !ok {
			continue
		}
		for _, lock := range lockMasks {
			_ = xproto.UngrabKeyChecked(l.conn, code, l.root, stateFromMods(k.Mods)|lock).Check()
		}
	}
}

// SetControlMode grabs or releases the bindings that only act in control
// mode, so ordinary typing is untouched while it is off.
func (l *Listener) SetControlMode(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.modeOn == on {
		return
	}
	l.modeOn = on
	if on {
		l.grab(l.mode)
	} else {
		l.ungrab(l.mode)
	}
}

// Run forwards key events until ctx is done or the connection drops.
func (l *Listener) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.Close()
	}()
	for {
		ev, xerr := l.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return ctx.Err()
		}
		if xerr != nil {
			l.log.Debug("x11 error", "err", xerr)
			continue
		}
		switch e := ev.(type) {
		case xproto.KeyPressEvent:
			l.forward(e.Detail, e.State, true)
		case xproto.KeyReleaseEvent:
			l.forward(e.Detail, e.State, false)
		}
	}
}

func (l *Listener) forward(code xproto.Keycode, state uint16, pressed bool) {
	r, ok := l.runes[code]
	if !ok {
		return
	}
	l.out.Send(control.KeyEvent{Rune: r, Mods: modsFromState(state), Pressed: pressed})
}

// Close releases the connection; the server drops the grabs with it.
func (l *Listener) Close() {
	l.closeOne.Do(l.conn.Close)
}
