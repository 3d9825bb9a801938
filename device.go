package keyguard

// DeviceContext is the host-supplied context that carries the device identifier.
// Implementations must be safe for concurrent use.
type DeviceContext interface {
	// DeviceID returns the identifier the keystream is derived from.
	// An empty string means no identifier is available.
	DeviceID() string
}

// StaticDevice is a DeviceContext with a fixed identifier.
type StaticDevice string

// DeviceID returns the identifier.
func (d StaticDevice) DeviceID() string {
	return string(d)
}

// PlaceholderDeviceID is the identifier used when the host has no real one wired in.
const PlaceholderDeviceID = "native_device_id_placeholder"

// PlaceholderDevice returns a DeviceContext for PlaceholderDeviceID.
func PlaceholderDevice() DeviceContext {
	return StaticDevice(PlaceholderDeviceID)
}

// deviceID returns the identifier of dev, or ErrEmptyDeviceID.
func deviceID(dev DeviceContext) (string, error) {
	if dev == nil {
		return "", ErrEmptyDeviceID
	}
	id := dev.DeviceID()
	if id == "" {
		return "", ErrEmptyDeviceID
	}
	return id, nil
}

// Compile-time interface check.
var _ DeviceContext = StaticDevice("")
