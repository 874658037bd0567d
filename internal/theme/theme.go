package theme

import (
	"image/color"
)

// Theme defines the colour palette of the control panel.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Panel background
	Foreground color.RGBA // Section labels

	// Buttons
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonActive          color.RGBA // Toggle buttons that are switched on
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA

	// Status line under the buttons
	StatusText color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonBackgroundPress: color.RGBA{150, 150, 150, 255},
		ButtonActive:          color.RGBA{150, 200, 150, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		StatusText:            color.RGBA{40, 40, 40, 255},
	}
}
