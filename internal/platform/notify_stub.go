//go:build !linux

package platform

import "errors"

// ErrUnsupported is returned where no notification service is wired up.
var ErrUnsupported = errors.New("desktop notifications not supported on this platform")

// Notify reports ErrUnsupported; callers log it and carry on.
func Notify(title, body string, opts Options) error {
	return ErrUnsupported
}
