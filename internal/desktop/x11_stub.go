//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package desktop

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"github.com/orthybt/orthy/internal/control"
)

var errUnsupported = errors.New("desktop integration requires X11")

func ListMonitors() ([]Monitor, error) { return nil, errUnsupported }

func ScreenRect() (image.Rectangle, error) { return image.Rectangle{}, errUnsupported }

// Listener is unavailable off X11.
type Listener struct{}

func Listen(control.Sender, *slog.Logger) (*Listener, error) { return nil, errUnsupported }

func (*Listener) SetControlMode(bool) {}

func (*Listener) Run(context.Context) error { return errUnsupported }

func (*Listener) Close() {}
