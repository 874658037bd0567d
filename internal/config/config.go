package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/orthybt/orthy/internal/control"
	"github.com/orthybt/orthy/internal/overlay"
	"github.com/orthybt/orthy/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Warnings bool `toml:"warnings"`
	Errors   bool `toml:"errors"`
	Load     bool `toml:"load"`
	Copy     bool `toml:"copy"`
}

// Config holds the application configuration.
type Config struct {
	Theme string `toml:"theme"`

	DefaultTransparency float64 `toml:"default_transparency"`
	MinTransparency     float64 `toml:"min_transparency"`
	ZoomStep            float64 `toml:"zoom_step"`
	FineZoomStep        float64 `toml:"fine_zoom_step"`
	WheelStep           float64 `toml:"wheel_step"`
	RotateSensitivity   float64 `toml:"rotate_sensitivity"`
	RotateStep          float64 `toml:"fine_rotate_step"`
	NudgeStep           float64 `toml:"nudge_step"`
	RotateModifier      string  `toml:"rotate_modifier"`
	Undo                string  `toml:"undo"`
	Duplicates          string  `toml:"duplicates"`
	SVGWidth            int     `toml:"svg_width"`
	MaxDimension        int     `toml:"max_dimension"`
	ClickSelect         bool    `toml:"click_select"`
	ReferenceDX         float64 `toml:"reference_dx"`
	ReferenceDY         float64 `toml:"reference_dy"`

	Notify Notify                  `toml:"notify"`
	Themes map[string]*theme.Theme `toml:"-"`
}

// New creates a new Config with defaults.
func New() *Config {
	d := control.DefaultSettings()
	return &Config{
		Theme:               "", // Default to empty to allow fallback to Env/Default
		DefaultTransparency: 1,
		MinTransparency:     d.LowTransparency,
		ZoomStep:            d.ZoomStep,
		FineZoomStep:        d.FineZoomStep,
		WheelStep:           d.WheelStep,
		RotateSensitivity:   d.RotateSensitivity,
		RotateStep:          d.RotateStep,
		NudgeStep:           d.NudgeStep,
		RotateModifier:      d.RotateModifier.String(),
		Undo:                overlay.UndoFull.String(),
		Duplicates:          overlay.DuplicateSuffix.String(),
		MaxDimension:        1920,
		ReferenceDX:         d.ReferenceOffset.X,
		ReferenceDY:         d.ReferenceOffset.Y,
		Notify: Notify{
			Warnings: true,
			Errors:   true,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	if _, err := overlay.ParseUndoPolicy(c.Undo); err != nil {
		return err
	}
	if _, err := overlay.ParseDuplicatePolicy(c.Duplicates); err != nil {
		return err
	}
	if _, ok := control.ParseModifier(c.RotateModifier); !ok {
		return fmt.Errorf("unknown rotate_modifier %q", c.RotateModifier)
	}
	if c.DefaultTransparency <= 0 || c.DefaultTransparency > 1 {
		return fmt.Errorf("default_transparency must be in (0, 1], got %v", c.DefaultTransparency)
	}
	if c.MinTransparency <= 0 || c.MinTransparency > 1 {
		return fmt.Errorf("min_transparency must be in (0, 1], got %v", c.MinTransparency)
	}
	for key, v := range map[string]float64{
		"zoom_step":          c.ZoomStep,
		"fine_zoom_step":     c.FineZoomStep,
		"wheel_step":         c.WheelStep,
		"rotate_sensitivity": c.RotateSensitivity,
		"fine_rotate_step":   c.RotateStep,
		"nudge_step":         c.NudgeStep,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", key, v)
		}
	}
	if c.SVGWidth < 0 || c.MaxDimension < 0 {
		return fmt.Errorf("svg_width and max_dimension must not be negative")
	}
	return nil
}

// ControlSettings converts the config into controller settings. Invalid
// enumerations fall back to their defaults; call Validate to reject them.
func (c *Config) ControlSettings() control.Settings {
	s := control.DefaultSettings()
	s.ZoomStep = c.ZoomStep
	s.FineZoomStep = c.FineZoomStep
	s.WheelStep = c.WheelStep
	s.RotateSensitivity = c.RotateSensitivity
	s.RotateStep = c.RotateStep
	s.NudgeStep = c.NudgeStep
	s.LowTransparency = c.MinTransparency
	if m, ok := control.ParseModifier(c.RotateModifier); ok {
		s.RotateModifier = m
	}
	s.ClickSelect = c.ClickSelect
	s.ReferenceOffset = r2.Vec{X: c.ReferenceDX, Y: c.ReferenceDY}
	return s
}

// OverlayOptions converts the config into overlay set options.
func (c *Config) OverlayOptions() overlay.Options {
	undo, _ := overlay.ParseUndoPolicy(c.Undo)
	dup, _ := overlay.ParseDuplicatePolicy(c.Duplicates)
	return overlay.Options{
		Duplicates:          dup,
		Undo:                undo,
		DefaultTransparency: c.DefaultTransparency,
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	fmt.Fprintf(&sb, "default_transparency = %v\n", c.DefaultTransparency)
	fmt.Fprintf(&sb, "min_transparency = %v\n", c.MinTransparency)
	fmt.Fprintf(&sb, "zoom_step = %v\n", c.ZoomStep)
	fmt.Fprintf(&sb, "fine_zoom_step = %v\n", c.FineZoomStep)
	fmt.Fprintf(&sb, "wheel_step = %v\n", c.WheelStep)
	fmt.Fprintf(&sb, "rotate_sensitivity = %v\n", c.RotateSensitivity)
	fmt.Fprintf(&sb, "fine_rotate_step = %v\n", c.RotateStep)
	fmt.Fprintf(&sb, "nudge_step = %v\n", c.NudgeStep)
	fmt.Fprintf(&sb, "rotate_modifier = %s\n", c.RotateModifier)
	fmt.Fprintf(&sb, "undo = %s\n", c.Undo)
	fmt.Fprintf(&sb, "duplicates = %s\n", c.Duplicates)
	fmt.Fprintf(&sb, "svg_width = %d\n", c.SVGWidth)
	fmt.Fprintf(&sb, "max_dimension = %d\n", c.MaxDimension)
	fmt.Fprintf(&sb, "click_select = %v\n", c.ClickSelect)
	fmt.Fprintf(&sb, "reference_dx = %v\n", c.ReferenceDX)
	fmt.Fprintf(&sb, "reference_dy = %v\n", c.ReferenceDY)
	sb.WriteString("\n")

	// Notify section
	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "warnings = %v\n", c.Notify.Warnings)
	fmt.Fprintf(&sb, "errors = %v\n", c.Notify.Errors)
	fmt.Fprintf(&sb, "load = %v\n", c.Notify.Load)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		fmt.Fprintf(&sb, "Background: %s\n", toHex(t.Background))
		fmt.Fprintf(&sb, "Foreground: %s\n", toHex(t.Foreground))
		fmt.Fprintf(&sb, "ButtonBackground: %s\n", toHex(t.ButtonBackground))
		fmt.Fprintf(&sb, "ButtonBackgroundHover: %s\n", toHex(t.ButtonBackgroundHover))
		fmt.Fprintf(&sb, "ButtonBackgroundPress: %s\n", toHex(t.ButtonBackgroundPress))
		fmt.Fprintf(&sb, "ButtonActive: %s\n", toHex(t.ButtonActive))
		fmt.Fprintf(&sb, "ButtonText: %s\n", toHex(t.ButtonText))
		fmt.Fprintf(&sb, "ButtonBorder: %s\n", toHex(t.ButtonBorder))
		fmt.Fprintf(&sb, "StatusText: %s\n", toHex(t.StatusText))
		sb.WriteString("\n")
	}

	return sb.String()
}

func toHex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
