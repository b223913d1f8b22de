// Package notify delivers desktop notifications over the session bus
// using the org.freedesktop.Notifications interface.
package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/sipsense/go-sipsense/internal/log"
)

const (
	busName       = "org.freedesktop.Notifications"
	objectPath    = "/org/freedesktop/Notifications"
	notifyMethod  = "org.freedesktop.Notifications.Notify"
	defaultExpiry = int32(10000) // ms
)

// Desktop sends notifications through the freedesktop notification
// service. Zero value is not usable; call New.
type Desktop struct {
	conn    *dbus.Conn
	appName string
	// lastID lets the service replace a still-visible notification
	// instead of stacking a new one.
	lastID uint32
}

// New connects to the session bus and verifies the notification service
// is reachable.
func New(appName string) (*Desktop, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	d := &Desktop{conn: conn, appName: appName}
	if !d.serviceAvailable() {
		conn.Close()
		return nil, fmt.Errorf("notification service %s not available", busName)
	}

	log.Info("desktop notifications ready", "app", appName)
	return d, nil
}

// serviceAvailable checks whether anything owns the notification bus name
// or can be activated to own it.
func (d *Desktop) serviceAvailable() bool {
	obj := d.conn.Object("org.freedesktop.DBus", "/org/freedesktop/DBus")

	var owned bool
	if err := obj.Call("org.freedesktop.DBus.NameHasOwner", 0, busName).Store(&owned); err != nil {
		return false
	}
	if owned {
		return true
	}

	var activatable []string
	if err := obj.Call("org.freedesktop.DBus.ListActivatableNames", 0).Store(&activatable); err != nil {
		return false
	}
	for _, name := range activatable {
		if name == busName {
			return true
		}
	}
	return false
}

// Notify shows a desktop notification. When sound is set, the standard
// sound-name hint asks the service to play the message tone.
func (d *Desktop) Notify(title, body string, sound bool) error {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(1)), // Normal
	}
	if sound {
		hints["sound-name"] = dbus.MakeVariant("message-new-instant")
	} else {
		hints["suppress-sound"] = dbus.MakeVariant(true)
	}

	obj := d.conn.Object(busName, dbus.ObjectPath(objectPath))
	call := obj.Call(notifyMethod, 0,
		d.appName,
		d.lastID, // replaces_id
		"",       // app_icon
		title,
		body,
		[]string{}, // actions
		hints,
		defaultExpiry,
	)
	if call.Err != nil {
		return fmt.Errorf("send notification: %w", call.Err)
	}

	return call.Store(&d.lastID)
}

// Close releases the bus connection.
func (d *Desktop) Close() error {
	return d.conn.Close()
}
