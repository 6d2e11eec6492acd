package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	nmDest               = "org.freedesktop.NetworkManager"
	nmPath               = dbus.ObjectPath("/org/freedesktop/NetworkManager")
	nmInterface          = "org.freedesktop.NetworkManager"
	nmActiveInterface    = "org.freedesktop.NetworkManager.Connection.Active"
	nmAccessPointIface   = "org.freedesktop.NetworkManager.AccessPoint"
	wirelessConnection   = "802-11-wireless"
	noObject             = dbus.ObjectPath("/")
	propertyPrimary      = nmInterface + ".PrimaryConnection"
	propertyActiveType   = nmActiveInterface + ".Type"
	propertyActiveID     = nmActiveInterface + ".Id"
	propertySpecificObj  = nmActiveInterface + ".SpecificObject"
	propertyAccessPointS = nmAccessPointIface + ".Ssid"
)

// ErrNotWireless is returned when the primary connection is not a Wi-Fi
// connection.
var ErrNotWireless = errors.New("primary connection is not wireless")

// ErrNoConnection is returned when NetworkManager reports no primary
// connection.
var ErrNoConnection = errors.New("no primary connection")

// ActiveConnection describes NetworkManager's primary connection.
type ActiveConnection struct {
	Path           dbus.ObjectPath
	ID             string
	Type           string
	SpecificObject dbus.ObjectPath
}

// Wireless reports whether the connection is a Wi-Fi connection.
func (c ActiveConnection) Wireless() bool {
	return c.Type == wirelessConnection
}

// NetworkManager is a client for the NetworkManager D-Bus API.
type NetworkManager struct {
	conn   *dbus.Conn
	logger *slog.Logger
}

// ConnectNetworkManager opens a private system bus connection.
func ConnectNetworkManager(logger *slog.Logger) (*NetworkManager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}

	return &NetworkManager{
		conn:   conn,
		logger: logger,
	}, nil
}

// Close closes the bus connection.
func (nm *NetworkManager) Close() error {
	return nm.conn.Close()
}

// PrimaryConnection returns the connection NetworkManager routes through.
func (nm *NetworkManager) PrimaryConnection() (ActiveConnection, error) {
	var primary dbus.ObjectPath
	if err := nm.property(nmPath, propertyPrimary, &primary); err != nil {
		return ActiveConnection{}, err
	}
	if primary == "" || primary == noObject {
		return ActiveConnection{}, ErrNoConnection
	}

	ac := ActiveConnection{Path: primary}
	if err := nm.property(primary, propertyActiveType, &ac.Type); err != nil {
		return ActiveConnection{}, err
	}
	if err := nm.property(primary, propertyActiveID, &ac.ID); err != nil {
		return ActiveConnection{}, err
	}
	if err := nm.property(primary, propertySpecificObj, &ac.SpecificObject); err != nil {
		return ActiveConnection{}, err
	}
	return ac, nil
}

// WirelessSSID returns the SSID of the access point the primary connection
// uses.
func (nm *NetworkManager) WirelessSSID() (string, error) {
	ac, err := nm.PrimaryConnection()
	if err != nil {
		return "", err
	}
	if !ac.Wireless() || ac.SpecificObject == noObject {
		return "", ErrNotWireless
	}

	var ssid []byte
	if err := nm.property(ac.SpecificObject, propertyAccessPointS, &ssid); err != nil {
		return "", err
	}
	return DecodeSSID(ssid), nil
}

// property reads one property into dst.
func (nm *NetworkManager) property(path dbus.ObjectPath, name string, dst any) error {
	v, err := nm.conn.Object(nmDest, path).GetProperty(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := v.Store(dst); err != nil {
		return fmt.Errorf("unexpected type for %s: %w", name, err)
	}
	return nil
}

// DecodeSSID turns the raw SSID bytes into a printable string. SSIDs are
// arbitrary octets; invalid UTF-8 is replaced.
func DecodeSSID(raw []byte) string {
	return strings.ToValidUTF8(strings.TrimRight(string(raw), "\x00"), "�")
}
