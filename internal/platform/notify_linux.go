//go:build linux

package platform

import (
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest  = "org.freedesktop.Notifications"
	notifyPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyCall  = notifyDest + ".Notify"
	defaultWait = 5 * time.Second
)

var bus struct {
	sync.Mutex
	conn *dbus.Conn
	// ids maps a replace key to the id the server handed back, so a burst
	// of identical warnings updates one bubble.
	ids map[string]uint32
}

func session() (*dbus.Conn, error) {
	if bus.conn != nil && bus.conn.Connected() {
		return bus.conn, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	bus.conn = conn
	return conn, nil
}

// Notify sends a desktop notification over the session bus.
func Notify(title, body string, opts Options) error {
	bus.Lock()
	defer bus.Unlock()

	conn, err := session()
	if err != nil {
		return err
	}
	hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(opts.Urgency))}
	expire := int32(opts.timeout(defaultWait) / time.Millisecond)
	if opts.Urgency == UrgencyCritical {
		expire = 0
	}
	var replaces uint32
	if opts.ReplaceKey != "" {
		replaces = bus.ids[opts.ReplaceKey]
	}

	var id uint32
	err = conn.Object(notifyDest, notifyPath).Call(notifyCall, 0,
		"Orthy", replaces, opts.IconPath, title, body, []string{}, hints, expire).Store(&id)
	if err != nil {
		return err
	}
	if opts.ReplaceKey != "" {
		if bus.ids == nil {
			bus.ids = make(map[string]uint32)
		}
		bus.ids[opts.ReplaceKey] = id
	}
	return nil
}
