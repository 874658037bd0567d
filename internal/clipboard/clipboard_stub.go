//go:build !(linux || freebsd || openbsd || netbsd || dragonfly) || !cgo

// Package clipboard copies composited overlays out and pastes images in as
// new overlays.
package clipboard

import (
	"errors"
	"image"
)

var (
	errUnsupported = errors.New("clipboard is not supported in this build")
	// ErrEmpty is returned when the clipboard holds no data of the wanted kind.
	ErrEmpty = errors.New("clipboard does not contain image data")
)

func WriteImage(image.Image) error { return errUnsupported }

func ReadImageData() ([]byte, error) { return nil, errUnsupported }

func WriteText(string) error { return errUnsupported }
