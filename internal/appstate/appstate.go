// Package appstate runs the overlay and control panel windows. All overlay
// state is owned by the overlay window's event loop; other goroutines only
// post events to it.
package appstate

import (
	"image"
	"image/color"
	"log/slog"

	"golang.org/x/exp/shiny/driver"

	"github.com/orthybt/orthy/internal/config"
	"github.com/orthybt/orthy/internal/control"
	"github.com/orthybt/orthy/internal/decode"
	"github.com/orthybt/orthy/internal/dialog"
	"github.com/orthybt/orthy/internal/notify"
	"github.com/orthybt/orthy/internal/theme"
)

// AppState holds what the UI needs before the windows exist.
type AppState struct {
	Config     *config.Config
	ConfigPath string
	Images     []string
	Canvas     image.Point
	Hotkeys    bool
	// Background fills the overlay canvas behind the entries.
	Background color.RGBA

	log        *slog.Logger
	dialogs    dialog.Provider
	notifier   *notify.Notifier
	themes     *theme.Loader
	references []control.Reference
	onClose    func()
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithConfig sets the configuration and the file to watch for changes.
// An empty path disables reloading.
func WithConfig(cfg *config.Config, path string) Option {
	return func(a *AppState) {
		a.Config = cfg
		a.ConfigPath = path
	}
}

// WithImages loads the given files on start up.
func WithImages(paths ...string) Option { return func(a *AppState) { a.Images = paths } }

// WithCanvasSize fixes the overlay size instead of using the screen size.
func WithCanvasSize(w, h int) Option { return func(a *AppState) { a.Canvas = image.Pt(w, h) } }

// WithHotkeys enables the global X11 hotkey listener.
func WithHotkeys(on bool) Option { return func(a *AppState) { a.Hotkeys = on } }

func WithLogger(l *slog.Logger) Option { return func(a *AppState) { a.log = l } }

func WithDialogs(d dialog.Provider) Option { return func(a *AppState) { a.dialogs = d } }

func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithReferences sets the reference overlays offered on the panel.
func WithReferences(refs []control.Reference) Option {
	return func(a *AppState) { a.references = refs }
}

// WithOnClose registers a callback invoked when the windows close.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		Hotkeys:    true,
		Background: color.RGBA{A: 0},
	}
	for _, o := range opts {
		o(a)
	}
	if a.Config == nil {
		a.Config = config.New()
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	if a.notifier == nil {
		a.notifier = notify.New(notify.LoadPreferences())
	}
	a.applyNotify(a.Config)
	if a.dialogs == nil {
		a.dialogs = dialog.NewZenity(a.notifier, a.log)
	}
	a.themes = theme.NewLoader(a.Config.Themes)
	return a
}

func (a *AppState) applyNotify(cfg *config.Config) {
	a.notifier.Enable(notify.EventWarning, cfg.Notify.Warnings)
	a.notifier.Enable(notify.EventError, cfg.Notify.Errors)
	a.notifier.Enable(notify.EventLoad, cfg.Notify.Load)
	a.notifier.Enable(notify.EventCopy, cfg.Notify.Copy)
}

func (a *AppState) decoder() *decode.Decoder {
	return &decode.Decoder{SVGWidth: a.Config.SVGWidth, MaxDimension: a.Config.MaxDimension}
}

func (a *AppState) theme() *theme.Theme {
	th, err := a.themes.Load(a.Config.Theme)
	if err != nil {
		a.log.Warn("theme", "name", a.Config.Theme, "err", err)
		return theme.Default()
	}
	return th
}

// Run executes the UI loop using shiny's driver. It returns when the
// windows are closed.
func (a *AppState) Run() { driver.Main(a.Main) }
