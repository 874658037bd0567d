package platform

import "time"

// Urgency mirrors the freedesktop notification urgency levels.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file shown with the
	// notification.
	IconPath string
	Urgency  Urgency
	// ReplaceKey groups notifications; a new one with the same key replaces
	// the previous bubble instead of stacking.
	ReplaceKey string
	// Timeout overrides the display time. Critical notifications stay until
	// dismissed.
	Timeout time.Duration
}

func (o Options) timeout(def time.Duration) time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return def
}
