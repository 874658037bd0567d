// Package dialog asks the user for files and names and reports problems.
package dialog

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/orthybt/orthy/internal/notify"
)

// ErrCanceled is returned when the user dismisses a prompt.
var ErrCanceled = errors.New("dialog canceled")

// Provider is what the controller needs from the desktop.
type Provider interface {
	OpenFile(title string) (string, error)
	AskString(title, prompt, def string) (string, error)
	Warn(title, msg string)
	Error(title, msg string)
}

// ImagePatterns filters the file chooser.
var ImagePatterns = []string{"*.png", "*.jpg", "*.jpeg", "*.bmp", "*.gif", "*.tif", "*.tiff", "*.webp", "*.tga", "*.svg"}

// Zenity shows GTK dialogs through the zenity binary. Warnings and errors
// go to the log and the desktop notification service so they never block
// the event loop.
type Zenity struct {
	Notifier *notify.Notifier
	Logger   *slog.Logger

	run func(args ...string) (string, error)
}

// NewZenity returns a Provider backed by zenity on PATH.
func NewZenity(n *notify.Notifier, logger *slog.Logger) *Zenity {
	if logger == nil {
		logger = slog.Default()
	}
	return &Zenity{Notifier: n, Logger: logger, run: runZenity}
}

func runZenity(args ...string) (string, error) {
	cmd := exec.Command("zenity", args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", ErrCanceled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("zenity: %w: %s", err, msg)
		}
		return "", fmt.Errorf("zenity: %w", err)
	}
	return strings.TrimRight(out.String(), "\r\n"), nil
}

func (z *Zenity) OpenFile(title string) (string, error) {
	path, err := z.run("--file-selection", "--title="+title,
		"--file-filter=Images | "+strings.Join(ImagePatterns, " "),
		"--file-filter=All files | *")
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", ErrCanceled
	}
	return path, nil
}

func (z *Zenity) AskString(title, prompt, def string) (string, error) {
	s, err := z.run("--entry", "--title="+title, "--text="+prompt, "--entry-text="+def)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func (z *Zenity) Warn(title, msg string) {
	z.Logger.Warn(msg, "title", title)
	z.Notifier.Warn(title, msg)
}

func (z *Zenity) Error(title, msg string) {
	z.Logger.Error(msg, "title", title)
	z.Notifier.Error(title, msg)
}

// Headless never prompts. File prompts are cancelled and string prompts
// return their default.
type Headless struct {
	Logger *slog.Logger
}

func (h Headless) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func (Headless) OpenFile(string) (string, error) { return "", ErrCanceled }

func (Headless) AskString(_, _, def string) (string, error) { return def, nil }

func (h Headless) Warn(title, msg string) { h.logger().Warn(msg, "title", title) }

func (h Headless) Error(title, msg string) { h.logger().Error(msg, "title", title) }
