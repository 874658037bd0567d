// Package control turns pointer, wheel and key input into overlay
// transform changes. A Controller is owned by a single goroutine.
package control

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/orthybt/orthy/internal/dialog"
	"github.com/orthybt/orthy/internal/overlay"
)

// Mode is the pointer interaction state.
type Mode int

const (
	Idle Mode = iota
	Dragging
	PivotPicking
)

func (m Mode) String() string {
	switch m {
	case Dragging:
		return "dragging"
	case PivotPicking:
		return "pivot"
	}
	return "idle"
}

// Settings are the tunable steps and behaviours.
type Settings struct {
	// ZoomStep is the linear scale change of the zoom buttons.
	ZoomStep float64
	// FineZoomStep is the linear scale change of the zoom keys.
	FineZoomStep float64
	// WheelStep is added to ScaleLog per wheel notch.
	WheelStep float64
	// RotateSensitivity is degrees per pixel of horizontal drag.
	RotateSensitivity float64
	RotateStep        float64
	NudgeStep         float64
	// LowTransparency is the faded level ToggleTransparency switches to.
	LowTransparency float64
	// RotateModifier turns a drag into a rotation.
	RotateModifier Modifiers
	// ClickSelect activates the entry under the pointer on press.
	ClickSelect bool
	// ReferenceOffset shifts reference overlays from the canvas centre.
	ReferenceOffset r2.Vec
	PivotRadius     float64
}

// DefaultSettings returns the stock steps.
func DefaultSettings() Settings {
	return Settings{
		ZoomStep:          0.05,
		FineZoomStep:      0.01,
		WheelStep:         0.05,
		RotateSensitivity: 0.1,
		RotateStep:        0.5,
		NudgeStep:         3,
		LowTransparency:   0.2,
		RotateModifier:    ModCtrl,
		ReferenceOffset:   r2.Vec{X: 156, Y: 100},
		PivotRadius:       1.5,
	}
}

// Decoder loads pixels for user images, embedded references and pasted
// data.
type Decoder interface {
	Decode(path string) (*image.RGBA, error)
	DecodeFS(fsys fs.FS, name string) (*image.RGBA, error)
	DecodeBytes(name string, data []byte) (*image.RGBA, error)
}

// Controller maps input to mutations of the active overlay entry.
type Controller struct {
	set      *overlay.Set
	decoder  Decoder
	dialogs  dialog.Provider
	log      *slog.Logger
	settings Settings
	canvas   image.Point

	assets     fs.FS
	references []Reference
	// refEntries maps a reference name to the entry loaded for it, which
	// may carry a suffixed name when a user image already took the plain one.
	refEntries map[string]*overlay.Entry
	clipboard  func() ([]byte, error)

	mode       Mode
	dragAnchor image.Point
	dragStart  overlay.Transform
	dragEntry  *overlay.Entry

	controlMode    bool
	windowVisible  bool
	previousActive string

	onRedraw func()
	onWindow  func(visible bool)
	onControl func(enabled bool)
	onLoad    func(e *overlay.Entry)
}

// Option configures a Controller.
type Option func(*Controller)

func WithDecoder(d Decoder) Option { return func(c *Controller) { c.decoder = d } }

func WithDialogs(d dialog.Provider) Option { return func(c *Controller) { c.dialogs = d } }

func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.log = l } }

func WithSettings(s Settings) Option { return func(c *Controller) { c.settings = s } }

// WithCanvasSize sets the overlay canvas size used for centring.
func WithCanvasSize(w, h int) Option { return func(c *Controller) { c.canvas = image.Pt(w, h) } }

// WithReferences registers the built-in overlays found in fsys.
func WithReferences(fsys fs.FS, refs []Reference) Option {
	return func(c *Controller) {
		c.assets = fsys
		c.references = refs
	}
}

// WithClipboard sets the source of pasted image data.
func WithClipboard(read func() ([]byte, error)) Option {
	return func(c *Controller) { c.clipboard = read }
}

// WithRedraw is called after every change that affects the picture.
func WithRedraw(fn func()) Option { return func(c *Controller) { c.onRedraw = fn } }

// WithWindowToggle is called when the overlay window is shown or hidden.
func WithWindowToggle(fn func(visible bool)) Option { return func(c *Controller) { c.onWindow = fn } }

// WithControlModeHook is called when control mode is switched.
func WithControlModeHook(fn func(enabled bool)) Option {
	return func(c *Controller) { c.onControl = fn }
}

// WithLoadHook is called for every newly loaded entry.
func WithLoadHook(fn func(e *overlay.Entry)) Option { return func(c *Controller) { c.onLoad = fn } }

// New returns a controller driving set.
func New(set *overlay.Set, opts ...Option) *Controller {
	c := &Controller{
		set:           set,
		settings:      DefaultSettings(),
		windowVisible: true,
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.dialogs == nil {
		c.dialogs = dialog.Headless{Logger: c.log}
	}
	return c
}

// dispatch runs one named action. Every input path funnels through here so
// that actions are logged in one place and redraws happen only on change.
func (c *Controller) dispatch(action string, fn func() bool) bool {
	changed := fn()
	c.log.Debug("action", "name", action, "active", c.set.ActiveName(), "mode", c.mode, "changed", changed)
	if changed && c.onRedraw != nil {
		c.onRedraw()
	}
	return changed
}

// mutate applies fn to the active entry, recording history when the undo
// policy covers this kind of change.
func (c *Controller) mutate(action string, zoom bool, fn func(*overlay.Transform)) bool {
	return c.dispatch(action, func() bool {
		e := c.set.Active()
		if e == nil {
			return false
		}
		record := zoom || e.History.Policy == overlay.UndoFull
		return e.Mutate(record, fn)
	})
}

func (c *Controller) warnNoActive() {
	c.dialogs.Warn("Warning", "No active image selected.")
}

// Set exposes the overlay collection for rendering.
func (c *Controller) Set() *overlay.Set { return c.set }

func (c *Controller) Settings() Settings { return c.settings }

// ApplySettings swaps in new steps, e.g. after a config reload.
func (c *Controller) ApplySettings(s Settings) {
	c.settings = s
	c.dispatch("settings", func() bool { return true })
}

// SetCanvasSize records the canvas size; existing entries stay put.
func (c *Controller) SetCanvasSize(w, h int) { c.canvas = image.Pt(w, h) }

// CanvasCenter is where new entries are placed.
func (c *Controller) CanvasCenter() r2.Vec {
	return r2.Vec{X: float64(c.canvas.X) / 2, Y: float64(c.canvas.Y) / 2}
}

// Pointer input.

// PointerDown starts a drag, or sets the pivot when picking one.
func (c *Controller) PointerDown(p image.Point, mods Modifiers) {
	if c.mode == PivotPicking {
		c.mutate("set_pivot", false, func(t *overlay.Transform) {
			t.SetPivot(r2.Vec{X: float64(p.X), Y: float64(p.Y)})
		})
		c.mode = Idle
		c.dispatch("pivot_mode_off", func() bool { return true })
		return
	}
	if c.settings.ClickSelect {
		if hit := c.set.EntryAt(p); hit != nil && hit.Name != c.set.ActiveName() {
			_ = c.SelectActive(hit.Name)
		}
	}
	e := c.set.Active()
	if e == nil {
		return
	}
	c.mode = Dragging
	c.dragAnchor = p
	c.dragStart = e.Transform
	c.dragEntry = e
	c.log.Debug("drag start", "x", p.X, "y", p.Y, "mods", mods)
}

// PointerMove applies the delta since the previous pointer event. Holding
// the rotate modifier turns horizontal motion into rotation.
func (c *Controller) PointerMove(p image.Point, mods Modifiers) {
	if c.mode != Dragging || c.dragEntry == nil {
		return
	}
	d := p.Sub(c.dragAnchor)
	c.dragAnchor = p
	if d == (image.Point{}) {
		return
	}
	e := c.dragEntry
	c.dispatch("drag", func() bool {
		return e.Mutate(false, func(t *overlay.Transform) {
			if mods.Has(c.settings.RotateModifier) {
				t.Rotate(float64(d.X) * c.settings.RotateSensitivity)
				return
			}
			t.Nudge(float64(d.X), float64(d.Y))
		})
	})
}

// PointerUp finishes a drag. The whole drag is one undo step.
func (c *Controller) PointerUp(p image.Point, mods Modifiers) {
	if c.mode != Dragging {
		return
	}
	c.PointerMove(p, mods)
	e := c.dragEntry
	c.mode = Idle
	c.dragEntry = nil
	if e != nil && e.History.Policy == overlay.UndoFull {
		e.Record(c.dragStart)
	}
}

// SecondaryClick resets the active entry from any state.
func (c *Controller) SecondaryClick(image.Point) {
	c.mode = Idle
	c.dragEntry = nil
	c.dispatch("reset", func() bool {
		e := c.set.Active()
		if e == nil {
			return false
		}
		e.Reset(c.CanvasCenter())
		return true
	})
}

// NormalizeWheel converts a raw wheel delta into notches: discrete sources
// give ±1 per tick, continuous ones report multiples of 120.
func NormalizeWheel(delta float64, discrete bool) float64 {
	if discrete {
		switch {
		case delta > 0:
			return 1
		case delta < 0:
			return -1
		}
		return 0
	}
	return delta / 120
}

// Wheel zooms logarithmically by notches.
func (c *Controller) Wheel(notches float64) {
	if notches == 0 {
		return
	}
	c.mutate("wheel_zoom", true, func(t *overlay.Transform) {
		t.AdjustScaleLog(c.settings.WheelStep * notches)
	})
}

// Discrete operations.

func (c *Controller) ZoomIn() { c.zoom("zoom_in", c.settings.ZoomStep) }

func (c *Controller) ZoomOut() { c.zoom("zoom_out", -c.settings.ZoomStep) }

func (c *Controller) FineZoomIn() { c.zoom("fine_zoom_in", c.settings.FineZoomStep) }

func (c *Controller) FineZoomOut() { c.zoom("fine_zoom_out", -c.settings.FineZoomStep) }

func (c *Controller) zoom(action string, d float64) {
	if c.set.Active() == nil {
		c.warnNoActive()
		return
	}
	c.mutate(action, true, func(t *overlay.Transform) { t.AdjustScale(d) })
}

// RotateBy turns the active entry clockwise by deg.
func (c *Controller) RotateBy(deg float64) {
	c.mutate("rotate", false, func(t *overlay.Transform) { t.Rotate(deg) })
}

func (c *Controller) Nudge(dx, dy float64) {
	c.mutate("nudge", false, func(t *overlay.Transform) { t.Nudge(dx, dy) })
}

func (c *Controller) FlipHorizontal() {
	if c.set.Active() == nil {
		c.warnNoActive()
		return
	}
	c.mutate("flip_horizontal", false, func(t *overlay.Transform) { t.FlipH = !t.FlipH })
}

func (c *Controller) FlipVertical() {
	if c.set.Active() == nil {
		c.warnNoActive()
		return
	}
	c.mutate("flip_vertical", false, func(t *overlay.Transform) { t.FlipV = !t.FlipV })
}

// ToggleTransparency switches between the faded level and opaque.
func (c *Controller) ToggleTransparency() {
	c.mutate("toggle_transparency", false, func(t *overlay.Transform) {
		t.ToggleTransparency(c.settings.LowTransparency)
	})
}

func (c *Controller) SetTransparency(v float64) {
	c.mutate("set_transparency", false, func(t *overlay.Transform) { t.SetTransparency(v) })
}

// TogglePivotMode enters pivot picking, or cancels it when already picking.
func (c *Controller) TogglePivotMode() {
	if c.mode == PivotPicking {
		c.CancelPivot()
		return
	}
	if c.set.Active() == nil {
		c.warnNoActive()
		return
	}
	if c.mode != Idle {
		return
	}
	c.dispatch("pivot_mode_on", func() bool {
		c.mode = PivotPicking
		return true
	})
}

// CancelPivot leaves pivot picking and clears the active pivot.
func (c *Controller) CancelPivot() {
	if c.mode != PivotPicking {
		return
	}
	c.mode = Idle
	c.mutate("clear_pivot", false, func(t *overlay.Transform) { t.ClearPivot() })
	c.dispatch("pivot_mode_off", func() bool { return true })
}

func (c *Controller) Undo() bool {
	return c.dispatch("undo", func() bool {
		e := c.set.Active()
		return e != nil && e.Undo()
	})
}

func (c *Controller) Redo() bool {
	return c.dispatch("redo", func() bool {
		e := c.set.Active()
		return e != nil && e.Redo()
	})
}

// ToggleControlMode turns global key routing on or off. It refuses to turn
// on without an active entry.
func (c *Controller) ToggleControlMode() {
	if !c.controlMode && c.set.Active() == nil {
		c.warnNoActive()
		return
	}
	c.dispatch("toggle_control_mode", func() bool {
		c.setControlMode(!c.controlMode)
		return true
	})
}

func (c *Controller) setControlMode(on bool) {
	if c.controlMode == on {
		return
	}
	c.controlMode = on
	c.log.Info("control mode", "enabled", on)
	if c.onControl != nil {
		c.onControl(on)
	}
}

// ToggleWindow shows or hides the overlay window.
func (c *Controller) ToggleWindow() {
	c.dispatch("toggle_window", func() bool {
		c.windowVisible = !c.windowVisible
		if c.onWindow != nil {
			c.onWindow(c.windowVisible)
		}
		return true
	})
}

// Collection operations.

// LoadImage adds an already decoded image and makes it active.
func (c *Controller) LoadImage(name string, img *image.RGBA) (*overlay.Entry, error) {
	var e *overlay.Entry
	var err error
	c.dispatch("load", func() bool {
		e, err = c.set.Load(name, img, c.CanvasCenter())
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Info("loaded overlay", "name", e.Name, "size", img.Bounds().Size())
	if c.onLoad != nil {
		c.onLoad(e)
	}
	return e, nil
}

// LoadFile decodes path and loads it under name, or the file's base name
// when name is empty.
func (c *Controller) LoadFile(path, name string) (*overlay.Entry, error) {
	if c.decoder == nil {
		return nil, errors.New("no decoder configured")
	}
	img, err := c.decoder.Decode(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultName(path)
	}
	return c.LoadImage(name, img)
}

// DefaultName is the file name without directory or extension.
func DefaultName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OpenImage asks for a file and a name and loads it. Failures are shown to
// the user rather than returned.
func (c *Controller) OpenImage() {
	path, err := c.dialogs.OpenFile("Select Image")
	if err != nil {
		if !errors.Is(err, dialog.ErrCanceled) {
			c.dialogs.Error("Error", fmt.Sprintf("Failed to open file chooser: %v", err))
		}
		return
	}
	name, err := c.dialogs.AskString("Image Name", "Enter a name for the image:", DefaultName(path))
	if err != nil {
		if !errors.Is(err, dialog.ErrCanceled) {
			c.dialogs.Error("Error", err.Error())
		}
		return
	}
	if _, err := c.LoadFile(path, name); err != nil {
		c.dialogs.Error("Error", fmt.Sprintf("Failed to load image: %v", err))
	}
}

// PasteClipboard loads the image on the clipboard as a new entry after
// asking for its name.
func (c *Controller) PasteClipboard() {
	if c.clipboard == nil || c.decoder == nil {
		c.dialogs.Warn("Warning", "Clipboard is not available.")
		return
	}
	data, err := c.clipboard()
	if err != nil {
		c.dialogs.Warn("Warning", fmt.Sprintf("Nothing to paste: %v", err))
		return
	}
	img, err := c.decoder.DecodeBytes("clipboard", data)
	if err != nil {
		c.dialogs.Error("Error", fmt.Sprintf("Failed to load image: %v", err))
		return
	}
	name, err := c.dialogs.AskString("Image Name", "Enter a name for the image:", "pasted")
	if err != nil {
		if !errors.Is(err, dialog.ErrCanceled) {
			c.dialogs.Error("Error", err.Error())
		}
		return
	}
	if _, err := c.LoadImage(name, img); err != nil {
		c.dialogs.Error("Error", fmt.Sprintf("Failed to load image: %v", err))
	}
}

// SelectActive makes name the target of input.
func (c *Controller) SelectActive(name string) error {
	var err error
	c.dispatch("select", func() bool {
		prev := c.set.ActiveName()
		err = c.set.SetActive(name)
		return err == nil && prev != name
	})
	return err
}

// CycleActive activates the next entry in draw order.
func (c *Controller) CycleActive() {
	if e := c.set.Next(); e != nil {
		_ = c.SelectActive(e.Name)
	}
}

// ToggleVisible shows or hides name.
func (c *Controller) ToggleVisible(name string) error {
	var err error
	c.dispatch("toggle_visible", func() bool {
		err = c.set.SetVisible(name, !c.set.IsVisible(name))
		return err == nil
	})
	return err
}

// Delete removes name. Deleting the entry being dragged ends the drag.
func (c *Controller) Delete(name string) error {
	var err error
	c.dispatch("delete", func() bool {
		e, ok := c.set.Get(name)
		err = c.set.Delete(name)
		if err != nil {
			return false
		}
		if ok && c.dragEntry == e {
			c.mode = Idle
			c.dragEntry = nil
		}
		if c.set.Active() == nil {
			c.setControlMode(false)
			if c.mode == PivotPicking {
				c.mode = Idle
			}
		}
		return true
	})
	return err
}

// DeleteActive removes the active entry, warning when there is none.
func (c *Controller) DeleteActive() {
	name := c.set.ActiveName()
	if name == "" {
		c.warnNoActive()
		return
	}
	_ = c.Delete(name)
}

// Query surface for labels and buttons.

func (c *Controller) Mode() Mode { return c.mode }

func (c *Controller) ControlMode() bool { return c.controlMode }

func (c *Controller) WindowVisible() bool { return c.windowVisible }

func (c *Controller) ActiveName() string { return c.set.ActiveName() }

func (c *Controller) IsVisible(name string) bool { return c.set.IsVisible(name) }

// TransparencyLevel returns the opacity of name.
func (c *Controller) TransparencyLevel(name string) (float64, bool) {
	e, ok := c.set.Get(name)
	if !ok {
		return 0, false
	}
	return e.Transform.Transparency, true
}

func (c *Controller) CanUndo() bool {
	e := c.set.Active()
	return e != nil && e.History.CanUndo()
}

func (c *Controller) CanRedo() bool {
	e := c.set.Active()
	return e != nil && e.History.CanRedo()
}

// Describe returns the active entry's properties, or a notice when none.
func (c *Controller) Describe() string {
	e := c.set.Active()
	if e == nil {
		return "No active image"
	}
	return e.Describe()
}
