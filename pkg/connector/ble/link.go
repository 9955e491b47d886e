package ble

import (
	"context"
	"sync"

	"github.com/epdlink/panel-command/pkg/protocol"
)

// DeviceLink is the characteristic IO surface for one connected device, handed to the transfer
// engine after discovery. Writes are serialized: the radio link admits one operation in flight
// per connection, so each write blocks until the previous one is acknowledged.
type DeviceLink struct {
	manager *Manager
	id      string

	writeMu sync.Mutex
}

// Link returns an IO handle for a device that is Connected and whose service characteristics
// have been discovered.
func (m *Manager) Link(deviceID string) (*DeviceLink, error) {
	m.mu.Lock()
	s := m.sessions[deviceID]
	ready := s != nil && s.state == StateConnected && s.service != nil
	m.mu.Unlock()
	if !ready {
		return nil, protocol.ErrNotConnected
	}
	return &DeviceLink{manager: m, id: deviceID}, nil
}

func (l *DeviceLink) service() (Service, error) {
	m := l.manager
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.sessions[l.id]; s != nil && s.state == StateConnected && s.service != nil {
		return s.service, nil
	}
	return nil, protocol.ErrNotConnected
}

// Write performs an acknowledged write to the named characteristic. Returns once the device has
// confirmed the write or the link failed.
func (l *DeviceLink) Write(ctx context.Context, charUUID string, data []byte) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	service, err := l.service()
	if err != nil {
		return err
	}
	return service.WriteCharacteristic(charUUID, data, true)
}

// Read reads the named characteristic's current value.
func (l *DeviceLink) Read(ctx context.Context, charUUID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	service, err := l.service()
	if err != nil {
		return nil, err
	}
	return service.ReadCharacteristic(charUUID)
}

// Subscribe enables notifications on the named characteristic. The callback is serialized
// through the Manager's command queue, so it never runs concurrently with connection-state
// handling or other notifications.
func (l *DeviceLink) Subscribe(charUUID string, fn func([]byte)) error {
	service, err := l.service()
	if err != nil {
		return err
	}
	m := l.manager
	return service.Subscribe(charUUID, func(buf []byte) {
		m.queue.Post(func() {
			fn(buf)
		})
	})
}
