package appstate

import (
	"context"
	"fmt"
	"image"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/orthybt/orthy/assets"
	"github.com/orthybt/orthy/internal/clipboard"
	"github.com/orthybt/orthy/internal/config"
	"github.com/orthybt/orthy/internal/control"
	"github.com/orthybt/orthy/internal/decode"
	"github.com/orthybt/orthy/internal/desktop"
	"github.com/orthybt/orthy/internal/overlay"
	"github.com/orthybt/orthy/internal/panel"
	"github.com/orthybt/orthy/internal/render"
)

const (
	defaultCanvasW = 1280
	defaultCanvasH = 800
	flashDuration  = 2 * time.Second
)

// panelEvent wraps an event read from the panel window so it can be
// handled on the overlay loop.
type panelEvent struct{ e interface{} }

// configEvent carries a reloaded configuration from the watcher.
type configEvent struct {
	cfg *config.Config
	err error
}

// session is the state owned by the overlay loop.
type session struct {
	app   *AppState
	set   *overlay.Set
	ctrl  *control.Controller
	panel *panel.Panel
	cache *render.Cache
	dec   *decode.Decoder

	canvas image.Point

	overlayDirty bool
	panelDirty   bool

	copyImage func(image.Image) error
	copyText  func(string) error
}

func (a *AppState) newSession(canvas image.Point, opts ...control.Option) *session {
	s := &session{
		app:       a,
		set:       overlay.NewSet(a.Config.OverlayOptions()),
		cache:     &render.Cache{},
		dec:       a.decoder(),
		canvas:    canvas,
		copyImage: clipboard.WriteImage,
		copyText:  clipboard.WriteText,
	}
	refs := a.references
	if refs == nil {
		refs = assets.References
	}
	base := []control.Option{
		control.WithDecoder(s.dec),
		control.WithDialogs(a.dialogs),
		control.WithLogger(a.log),
		control.WithSettings(a.Config.ControlSettings()),
		control.WithCanvasSize(canvas.X, canvas.Y),
		control.WithReferences(assets.FS, refs),
		control.WithClipboard(clipboard.ReadImageData),
		control.WithRedraw(func() {
			s.overlayDirty = true
			s.panelDirty = true
		}),
		control.WithLoadHook(func(e *overlay.Entry) { a.notifier.Loaded(e.Name, e.Source) }),
	}
	s.ctrl = control.New(s.set, append(base, opts...)...)

	buttons := panel.DefaultButtons(refs)
	buttons = append(buttons,
		&panel.Button{Label: "Paste", Action: func(c *control.Controller) { c.PasteClipboard() }},
		&panel.Button{Label: "Copy", Action: func(*control.Controller) { s.copyComposite() }},
		&panel.Button{Label: "Copy Info", Wide: true, Action: func(*control.Controller) { s.copyInfo() }},
	)
	s.panel = panel.New(a.theme(), buttons)
	s.overlayDirty, s.panelDirty = true, true
	return s
}

// snapshot renders the visible entries onto a transparent canvas.
func (s *session) snapshot() *image.RGBA {
	c := render.NewRGBACanvas(s.canvas.X, s.canvas.Y)
	render.Composite(c, s.set, s.cache)
	return c.Image
}

func (s *session) copyComposite() {
	if len(s.set.Visible()) == 0 {
		s.app.dialogs.Warn("Warning", "Nothing to copy.")
		return
	}
	if err := s.copyImage(s.snapshot()); err != nil {
		s.app.dialogs.Error("Error", fmt.Sprintf("Copy failed: %v", err))
		return
	}
	s.app.notifier.Copy("overlay")
	s.flash("Copied overlay to clipboard")
}

func (s *session) copyInfo() {
	if err := s.copyText(s.ctrl.Describe()); err != nil {
		s.app.dialogs.Error("Error", fmt.Sprintf("Copy failed: %v", err))
		return
	}
	s.flash("Copied properties to clipboard")
}

func (s *session) flash(msg string) {
	s.app.log.Info(msg)
	s.panel.Flash(msg, flashDuration)
	s.panelDirty = true
}

// loadInitial loads the files named on the command line.
func (s *session) loadInitial(paths []string) {
	for _, p := range paths {
		if _, err := s.ctrl.LoadFile(p, ""); err != nil {
			s.app.dialogs.Error("Error", fmt.Sprintf("Failed to load image: %v", err))
		}
	}
}

// applyConfig swaps in a reloaded configuration. A bad file keeps the
// current settings.
func (s *session) applyConfig(cfg *config.Config, err error) {
	if err != nil {
		s.app.dialogs.Warn("Config", fmt.Sprintf("Config not reloaded: %v", err))
		return
	}
	a := s.app
	a.Config = cfg
	a.applyNotify(cfg)
	a.themes.Inline = cfg.Themes
	s.dec.SVGWidth = cfg.SVGWidth
	s.dec.MaxDimension = cfg.MaxDimension
	s.set.SetOptions(cfg.OverlayOptions())
	s.ctrl.ApplySettings(cfg.ControlSettings())
	s.panel.SetTheme(a.theme())
	s.flash("Configuration reloaded")
}

// handle applies one event and reports whether the loop should end.
func (s *session) handle(ev interface{}) bool {
	switch e := ev.(type) {
	case lifecycle.Event:
		return e.To == lifecycle.StageDead
	case size.Event:
		s.canvas = e.Size()
		s.ctrl.SetCanvasSize(s.canvas.X, s.canvas.Y)
		s.overlayDirty = true
	case paint.Event:
		s.overlayDirty = true
	case mouse.Event:
		s.overlayMouse(e)
	case key.Event:
		s.key(e)
	case panelEvent:
		return s.panelInput(e.e)
	case configEvent:
		s.applyConfig(e.cfg, e.err)
	case control.KeyEvent, control.Action:
		s.ctrl.Handle(e)
	case error:
		s.app.log.Error("window", "err", e)
	}
	return false
}

func (s *session) overlayMouse(e mouse.Event) {
	p := image.Pt(int(e.X), int(e.Y))
	mods := modifiers(e.Modifiers)
	switch {
	case e.Button.IsWheel():
		if e.Direction == mouse.DirStep || e.Direction == mouse.DirPress {
			s.ctrl.Wheel(wheelNotches(e.Button))
		}
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		s.ctrl.PointerDown(p, mods)
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
		s.ctrl.PointerUp(p, mods)
	case e.Button == mouse.ButtonRight && e.Direction == mouse.DirPress:
		s.ctrl.SecondaryClick(p)
	case e.Direction == mouse.DirNone:
		s.ctrl.PointerMove(p, mods)
	}
}

func (s *session) key(e key.Event) {
	if e.Direction == key.DirPress && e.Modifiers&key.ModControl != 0 && (e.Rune == 'c' || e.Rune == 'C') {
		s.copyComposite()
		return
	}
	if act := localAction(e); act != nil {
		s.ctrl.Handle(act)
	}
}

func (s *session) panelInput(ev interface{}) bool {
	switch e := ev.(type) {
	case lifecycle.Event:
		return e.To == lifecycle.StageDead
	case paint.Event:
		s.panelDirty = true
	case key.Event:
		s.key(e)
	case mouse.Event:
		p := image.Pt(int(e.X), int(e.Y))
		switch {
		case e.Direction == mouse.DirNone:
			if s.panel.Hover(p) {
				s.panelDirty = true
			}
		case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
			if s.panel.Press(p) {
				s.panelDirty = true
			}
		case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
			s.panelDirty = true
			if act := s.panel.Release(p); act != nil {
				s.ctrl.Handle(act)
			}
		}
	}
	return false
}

// paintOverlay composites the entries into a fresh buffer.
func (s *session) paintOverlay(scr screen.Screen, w screen.Window) {
	b, err := scr.NewBuffer(s.canvas)
	if err != nil {
		s.app.log.Error("new buffer", "err", err)
		return
	}
	defer b.Release()
	c := &render.RGBACanvas{Image: b.RGBA(), Background: s.app.Background}
	if s.ctrl.WindowVisible() {
		render.Composite(c, s.set, s.cache)
		render.DrawPivot(b.RGBA(), s.set.Active(), s.ctrl.Settings().PivotRadius)
	} else {
		c.Clear()
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

func (s *session) paintPanel(scr screen.Screen, w screen.Window) {
	b, err := scr.NewBuffer(s.panel.Size())
	if err != nil {
		s.app.log.Error("new buffer", "err", err)
		return
	}
	defer b.Release()
	s.panel.Draw(b.RGBA(), s.ctrl)
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

func (a *AppState) canvasSize() image.Point {
	if a.Canvas.X > 0 && a.Canvas.Y > 0 {
		return a.Canvas
	}
	r, err := desktop.ScreenRect()
	if err != nil || r.Empty() {
		a.log.Warn("screen size unavailable, using default", "err", err)
		return image.Pt(defaultCanvasW, defaultCanvasH)
	}
	return r.Size()
}

// Main opens the overlay and panel windows and runs the event loop.
func (a *AppState) Main(scr screen.Screen) {
	defer func() {
		if a.onClose != nil {
			a.onClose()
		}
	}()
	canvas := a.canvasSize()
	ow, err := scr.NewWindow(&screen.NewWindowOptions{Width: canvas.X, Height: canvas.Y, Title: "Orthy Overlay"})
	if err != nil {
		a.log.Error("new window", "err", err)
		return
	}
	defer ow.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var opts []control.Option
	if a.Hotkeys {
		if l, err := desktop.Listen(ow, a.log); err != nil {
			a.log.Warn("global hotkeys disabled", "err", err)
		} else {
			defer l.Close()
			go func() {
				if err := l.Run(ctx); err != nil && ctx.Err() == nil {
					a.log.Warn("hotkey listener stopped", "err", err)
				}
			}()
			opts = append(opts, control.WithControlModeHook(l.SetControlMode))
		}
	}

	s := a.newSession(canvas, opts...)
	defer s.ctrl.RemoveReferences()

	ps := s.panel.Size()
	pw, err := scr.NewWindow(&screen.NewWindowOptions{Width: ps.X, Height: ps.Y, Title: "Orthy"})
	if err != nil {
		a.log.Error("new panel window", "err", err)
		return
	}
	defer pw.Release()
	go func() {
		for {
			e := pw.NextEvent()
			ow.Send(panelEvent{e})
			if lc, ok := e.(lifecycle.Event); ok && lc.To == lifecycle.StageDead {
				return
			}
		}
	}()

	if a.ConfigPath != "" {
		err := config.Watch(ctx, a.ConfigPath, func(cfg *config.Config, err error) {
			ow.Send(configEvent{cfg: cfg, err: err})
		})
		if err != nil {
			a.log.Warn("config reload disabled", "err", err)
		}
	}

	s.loadInitial(a.Images)

	for {
		if s.handle(ow.NextEvent()) {
			return
		}
		if s.overlayDirty {
			s.overlayDirty = false
			s.paintOverlay(scr, ow)
		}
		if s.panelDirty {
			s.panelDirty = false
			s.paintPanel(scr, pw)
		}
	}
}
