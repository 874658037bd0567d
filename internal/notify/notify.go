package notify

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/orthybt/orthy/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventWarning is raised for recoverable user mistakes such as
	// acting without an active image.
	EventWarning Event = "warning"
	// EventError is raised when a file cannot be loaded or a dialog fails.
	EventError Event = "error"
	// EventLoad emits a notification when an overlay is loaded.
	EventLoad Event = "load"
	// EventCopy emits a notification when the composite is copied.
	EventCopy Event = "copy"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Orthy",
		Events: map[Event]EventPreference{
			EventWarning: {Template: "%s"},
			EventError:   {Template: "%s"},
			EventLoad:    {Template: "Loaded %s"},
			EventCopy:    {Template: "Copied %s to clipboard"},
		},
	}
}

// LoadPreferences reads configuration from environment variables.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("ORTHY_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	apply := func(key string, event Event) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			eventPrefs := prefs.Events[event]
			eventPrefs.Template = v
			prefs.Events[event] = eventPrefs
		}
	}
	apply("ORTHY_NOTIFY_LOAD_TEXT", EventLoad)
	apply("ORTHY_NOTIFY_COPY_TEXT", EventCopy)
	return prefs
}

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    func(title, body string, opts platform.Options) error
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool), send: platform.Notify}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// Warn reports a recoverable problem. title overrides the default title.
func (n *Notifier) Warn(title, detail string) {
	n.dispatch(EventWarning, title, detail, platform.Options{Urgency: platform.UrgencyNormal, ReplaceKey: string(EventWarning)})
}

// Error reports a failed operation.
func (n *Notifier) Error(title, detail string) {
	n.dispatch(EventError, title, detail, platform.Options{Urgency: platform.UrgencyCritical})
}

// Loaded announces a newly loaded overlay with a preview of its pixels.
func (n *Notifier) Loaded(name string, img image.Image) {
	if !n.enabledFor(EventLoad) {
		return
	}
	opts := platform.Options{}
	if img != nil {
		if path, cleanup, err := createPreview(img); err != nil {
			slog.Warn("notification preview", "err", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventLoad, "", name, opts)
}

// Copy sends a clipboard notification.
func (n *Notifier) Copy(detail string) {
	if strings.TrimSpace(detail) == "" {
		detail = "overlay"
	}
	n.dispatch(EventCopy, "", detail, platform.Options{ReplaceKey: string(EventCopy), Timeout: 2 * time.Second})
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil {
		return false
	}
	if n.enabled == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, title, detail string, opts platform.Options) {
	if !n.enabledFor(event) {
		return
	}
	template := strings.TrimSpace(n.template(event))
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if strings.TrimSpace(title) == "" {
		title = n.prefs.Title
	}
	if err := n.send(title, body, opts); err != nil {
		slog.Warn("notification failed", "event", event, "err", err)
	}
}

func (n *Notifier) template(event Event) string {
	if n == nil {
		return ""
	}
	if pref, ok := n.prefs.Events[event]; ok {
		return pref.Template
	}
	return ""
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "orthy-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("remove preview", "err", err)
		}
	}
	return path, cleanup, nil
}
