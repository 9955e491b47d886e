package ble

// ConnectionState tracks one device's link lifecycle. Transitions are strictly linear:
// Disconnected -> Connecting -> Connected -> Disconnecting -> Disconnected, with Connecting
// falling back to Disconnected on timeout or link error. The Manager is the only writer.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateDisconnecting
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "invalid"
	}
}

// ConnectionUpdate is one entry in the update sequence produced by Connect. A flow that ends
// abnormally carries the cause in Err on its final Disconnected update; callers on other flows
// never see it.
type ConnectionUpdate struct {
	State ConnectionState
	Err   error
}

// DeviceHandle identifies one discovered peripheral. Handles are immutable; the Manager replaces
// (never mutates) the stored handle when a device is sighted again.
type DeviceHandle struct {
	ID            string
	Name          string
	RSSI          int16
	Advertisement []byte
}
