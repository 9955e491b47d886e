package ble

import (
	"context"
)

//go:generate mockgen -source iface.go -destination ../../../mocks/ble.go -package mocks -mock_names Adapter=BLEAdapter,Device=BLEDevice,Service=BLEService

// Beacon is one advertisement sighting. Beacons are immutable; a rediscovered device produces a
// fresh Beacon rather than mutating the old one.
type Beacon struct {
	ID            string
	LocalName     string
	RSSI          int16
	Advertisement []byte
}

// Characteristic describes one attribute discovered on a connected device. The descriptor is
// only valid while the owning connection is up; discovery rebuilds the set on every connect.
type Characteristic struct {
	ServiceUUID string
	UUID        string
	Read        bool
	Write       bool
	Notify      bool
}

// Adapter abstracts the platform radio. Backends live in the goble and tinygo subpackages.
type Adapter interface {
	// Scan streams advertisement sightings to fn until ctx is canceled. A non-empty filterUUID
	// restricts sightings to devices advertising that service. fn runs on the backend's
	// callback goroutine and must not block.
	Scan(ctx context.Context, filterUUID string, fn func(Beacon)) error

	// Connect establishes a link with the device identified by a Beacon ID. Honors ctx
	// deadlines.
	Connect(ctx context.Context, id string) (Device, error)

	Close() error
}

// Device is one established link.
type Device interface {
	// ExchangeMTU negotiates the link MTU. Failure is expected on some platforms and is never
	// fatal; callers fall back to the default.
	ExchangeMTU(mtu int) (int, error)

	// DiscoverService enumerates the characteristics of one service.
	DiscoverService(ctx context.Context, uuid string) (Service, error)

	// Disconnected returns a channel that closes when the link drops, whether or not Close was
	// called.
	Disconnected() <-chan struct{}

	Close() error
}

// Service is one discovered service on a connected device.
type Service interface {
	Characteristics() []Characteristic

	// Subscribe enables notifications on a characteristic. The callback runs on the backend's
	// notification goroutine and must not block.
	Subscribe(uuid string, fn func([]byte)) error

	// WriteCharacteristic writes data. With withResponse set, it blocks until the device
	// acknowledges the write.
	WriteCharacteristic(uuid string, data []byte, withResponse bool) error

	ReadCharacteristic(uuid string) ([]byte, error)
}
