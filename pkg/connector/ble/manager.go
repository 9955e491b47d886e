// Package ble owns the connection lifecycle for tri-color panel peripherals: scanning, connect
// and disconnect, MTU negotiation and characteristic discovery. One Manager drives one device
// session at a time; all session state is mutated on a single command queue so that overlapping
// radio callbacks can never interleave their effects.
package ble

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/epdlink/panel-command/internal/log"
	"github.com/epdlink/panel-command/internal/router"
	"github.com/epdlink/panel-command/pkg/protocol"
)

const (
	// DefaultConnectTimeout bounds one connection attempt.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultRequestedMTU is the MTU requested after connect. 247 leaves room for the default
	// 200-byte transfer chunks plus the 3-byte ATT write header.
	DefaultRequestedMTU = 247

	// FallbackMTU is the link-layer minimum, used when negotiation fails.
	FallbackMTU = 23

	sightingBuffer = 16
	updateBuffer   = 8
)

// Config carries the tunables consumed by the Manager. The zero value selects the defaults.
type Config struct {
	ConnectTimeout time.Duration
	RequestedMTU   int
}

func (c *Config) applyDefaults() {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.RequestedMTU == 0 {
		c.RequestedMTU = DefaultRequestedMTU
	}
}

type scanSession struct {
	cancel    context.CancelFunc
	sightings chan DeviceHandle
	order     []string
	byID      map[string]DeviceHandle
	err       error
	ended     bool
}

type session struct {
	id      string
	state   ConnectionState
	updates chan ConnectionUpdate
	cancel  context.CancelFunc // aborts an in-flight connect attempt
	device  Device
	service Service
	chars   []Characteristic
	mtu     int
	ended   bool // updates closed, session removed from the registry
}

// Manager discovers, connects to and enumerates one panel at a time. All mutation of scan and
// session state runs on the Manager's command queue; public methods post commands and wait.
type Manager struct {
	adapter Adapter
	queue   *router.Router
	cfg     Config

	mu       sync.Mutex
	scan     *scanSession
	sessions map[string]*session
}

func NewManager(adapter Adapter, cfg Config) (*Manager, error) {
	cfg.applyDefaults()
	m := &Manager{
		adapter:  adapter,
		queue:    router.New(),
		cfg:      cfg,
		sessions: make(map[string]*session),
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.queue.Start(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// do posts fn to the command queue and waits for it to run. Returns false if the Manager has
// been closed.
func (m *Manager) do(fn func()) bool {
	done := make(chan struct{})
	if !m.queue.Post(func() {
		fn()
		close(done)
	}) {
		return false
	}
	<-done
	return true
}

// StartScan begins producing DeviceHandle sightings, canceling and replacing any prior scan. The
// returned channel closes when the scan ends; ScanErr reports why. An unavailable adapter is
// surfaced through ScanErr as protocol.ErrAdapterUnavailable, not as a panic or an error from
// this call.
func (m *Manager) StartScan(ctx context.Context, serviceFilter string) <-chan DeviceHandle {
	sightings := make(chan DeviceHandle, sightingBuffer)
	scanCtx, cancel := context.WithCancel(ctx)
	ok := m.do(func() {
		m.endScanLocked(nil)
		s := &scanSession{
			cancel:    cancel,
			sightings: sightings,
			byID:      make(map[string]DeviceHandle),
		}
		m.mu.Lock()
		m.scan = s
		m.mu.Unlock()
		go m.runScan(scanCtx, serviceFilter, s)
	})
	if !ok {
		cancel()
		close(sightings)
	}
	return sightings
}

// StopScan terminates the active scan. Idempotent; safe with no scan running.
func (m *Manager) StopScan() {
	m.do(func() {
		m.endScanLocked(protocol.ErrScanStopped)
	})
}

// ScanErr reports why the last scan stopped. It returns nil while a scan is live and after a
// scan ended by context cancellation; a deliberate StopScan reads as protocol.ErrScanStopped.
func (m *Manager) ScanErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scan == nil {
		return nil
	}
	return m.scan.err
}

// Devices returns the discovered-device set in first-seen insertion order. A rediscovered device
// keeps its original position with its latest advertisement.
func (m *Manager) Devices() []DeviceHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scan == nil {
		return nil
	}
	devices := make([]DeviceHandle, 0, len(m.scan.order))
	for _, id := range m.scan.order {
		devices = append(devices, m.scan.byID[id])
	}
	return devices
}

func (m *Manager) runScan(ctx context.Context, filter string, s *scanSession) {
	err := m.adapter.Scan(ctx, filter, func(b Beacon) {
		m.queue.Post(func() {
			m.recordSighting(s, b)
		})
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		log.Warning("ble: scan stopped: %s", err)
	}
	m.queue.Post(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.scan == s {
			m.endScan(s, err)
		}
	})
}

// recordSighting runs on the command queue.
func (m *Manager) recordSighting(s *scanSession, b Beacon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ended || m.scan != s {
		return
	}
	handle := DeviceHandle{
		ID:            b.ID,
		Name:          b.LocalName,
		RSSI:          b.RSSI,
		Advertisement: b.Advertisement,
	}
	if _, seen := s.byID[b.ID]; !seen {
		s.order = append(s.order, b.ID)
	}
	s.byID[b.ID] = handle
	select {
	case s.sightings <- handle:
	default:
		log.Debug("ble: dropping sighting of %s, consumer is behind", b.ID)
	}
}

// endScanLocked runs on the command queue and takes m.mu itself.
func (m *Manager) endScanLocked(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scan != nil {
		m.endScan(m.scan, err)
	}
}

// endScan requires m.mu.
func (m *Manager) endScan(s *scanSession, err error) {
	if s.ended {
		return
	}
	s.ended = true
	s.err = err
	s.cancel()
	close(s.sightings)
}

// Connect transitions a device Disconnected -> Connecting and, on success, -> Connected. The
// returned channel carries the state sequence; an abnormal end (timeout, link loss) appears as a
// final Disconnected update with Err set, and then the channel closes. A second Connect for the
// same device first tears down the in-flight attempt.
func (m *Manager) Connect(ctx context.Context, deviceID string) (<-chan ConnectionUpdate, error) {
	m.Disconnect(deviceID)

	updates := make(chan ConnectionUpdate, updateBuffer)
	connectCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	s := &session{
		id:      deviceID,
		state:   StateConnecting,
		updates: updates,
		cancel:  cancel,
	}
	ok := m.do(func() {
		m.mu.Lock()
		m.sessions[deviceID] = s
		m.mu.Unlock()
		m.emit(s, ConnectionUpdate{State: StateConnecting})
	})
	if !ok {
		cancel()
		return nil, protocol.ErrNotConnected
	}

	go m.runConnect(connectCtx, s)
	return updates, nil
}

func (m *Manager) runConnect(ctx context.Context, s *session) {
	device, err := m.adapter.Connect(ctx, s.id)
	s.cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = protocol.ErrConnectTimeout
		}
		m.queue.Post(func() {
			m.failConnect(s, err)
		})
		return
	}
	m.queue.Post(func() {
		m.establish(s, device)
	})
}

// failConnect runs on the command queue.
func (m *Manager) failConnect(s *session, err error) {
	m.mu.Lock()
	if s.ended || m.sessions[s.id] != s || s.state != StateConnecting {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	log.Warning("ble: connection to %s failed: %s", s.id, err)
	m.finish(s, err)
}

// establish runs on the command queue.
func (m *Manager) establish(s *session, device Device) {
	m.mu.Lock()
	if s.ended || m.sessions[s.id] != s || s.state != StateConnecting {
		m.mu.Unlock()
		// The attempt was torn down while the dial raced to completion.
		if err := device.Close(); err != nil {
			log.Warning("ble: failed to close orphaned link to %s: %s", s.id, err)
		}
		return
	}
	s.device = device
	s.state = StateConnected
	m.mu.Unlock()

	log.Info("ble: connected to %s", s.id)
	m.emit(s, ConnectionUpdate{State: StateConnected})
	go m.watchLink(s, device)
}

func (m *Manager) watchLink(s *session, device Device) {
	<-device.Disconnected()
	m.queue.Post(func() {
		m.mu.Lock()
		lost := !s.ended && m.sessions[s.id] == s && s.state == StateConnected
		m.mu.Unlock()
		if lost {
			log.Warning("ble: link to %s lost", s.id)
			m.finish(s, protocol.ErrLinkLost)
		}
	})
}

// finish runs on the command queue: emits the terminal Disconnected update, closes the update
// stream and removes the session from the registry.
func (m *Manager) finish(s *session, err error) {
	m.mu.Lock()
	if s.ended {
		m.mu.Unlock()
		return
	}
	s.ended = true
	s.state = StateDisconnected
	s.service = nil
	s.chars = nil
	if m.sessions[s.id] == s {
		delete(m.sessions, s.id)
	}
	m.mu.Unlock()

	m.emit(s, ConnectionUpdate{State: StateDisconnected, Err: err})
	close(s.updates)
}

// Disconnect cancels the device's link and every subscription derived from it. Idempotent on an
// already-disconnected device.
func (m *Manager) Disconnect(deviceID string) {
	m.do(func() {
		m.mu.Lock()
		s := m.sessions[deviceID]
		m.mu.Unlock()
		if s == nil {
			return
		}
		switch s.state {
		case StateConnecting:
			s.cancel()
			m.finish(s, nil)
		case StateConnected:
			m.mu.Lock()
			s.state = StateDisconnecting
			device := s.device
			m.mu.Unlock()
			m.emit(s, ConnectionUpdate{State: StateDisconnecting})
			if err := device.Close(); err != nil {
				log.Warning("ble: failed to close link to %s: %s", deviceID, err)
			}
			m.finish(s, nil)
		}
	})
}

// RequestMTU negotiates the link MTU. Negotiation failure is non-fatal: it is logged, and the
// returned MTU falls back to the link-layer default so transfers can proceed.
func (m *Manager) RequestMTU(deviceID string, mtu int) int {
	device := m.connectedDevice(deviceID)
	if device == nil {
		log.Warning("ble: MTU request for %s without a connection", deviceID)
		return FallbackMTU
	}
	negotiated, err := device.ExchangeMTU(mtu)
	if err != nil {
		log.Warning("ble: MTU negotiation with %s failed, using default: %s", deviceID, err)
		negotiated = FallbackMTU
	} else {
		log.Debug("ble: negotiated MTU %d with %s", negotiated, deviceID)
	}
	m.do(func() {
		m.mu.Lock()
		if s := m.sessions[deviceID]; s != nil {
			s.mtu = negotiated
		}
		m.mu.Unlock()
	})
	return negotiated
}

// MTU returns the negotiated MTU for a connected device, or the fallback if negotiation has not
// happened.
func (m *Manager) MTU(deviceID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.sessions[deviceID]; s != nil && s.mtu != 0 {
		return s.mtu
	}
	return FallbackMTU
}

// DiscoverCharacteristics enumerates one service on a connected device and caches the result for
// Link. If the service is absent the connection stays up with an empty characteristic set and
// protocol.ErrServiceNotFound is returned; the caller may retry discovery.
func (m *Manager) DiscoverCharacteristics(ctx context.Context, deviceID, serviceUUID string) ([]Characteristic, error) {
	device := m.connectedDevice(deviceID)
	if device == nil {
		return nil, protocol.ErrNotConnected
	}

	service, err := device.DiscoverService(ctx, serviceUUID)
	if err != nil {
		log.Warning("ble: service %s not found on %s: %s", serviceUUID, deviceID, err)
		m.do(func() {
			m.mu.Lock()
			if s := m.sessions[deviceID]; s != nil {
				s.service = nil
				s.chars = nil
			}
			m.mu.Unlock()
		})
		return nil, protocol.ErrServiceNotFound
	}

	chars := service.Characteristics()
	m.do(func() {
		m.mu.Lock()
		if s := m.sessions[deviceID]; s != nil && s.state == StateConnected {
			s.service = service
			s.chars = chars
		}
		m.mu.Unlock()
	})
	log.Debug("ble: discovered %d characteristics on %s", len(chars), deviceID)
	return chars, nil
}

// State reports the connection state for a device id. Unknown devices are Disconnected.
func (m *Manager) State(deviceID string) ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.sessions[deviceID]; s != nil {
		return s.state
	}
	return StateDisconnected
}

func (m *Manager) connectedDevice(deviceID string) Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.sessions[deviceID]; s != nil && s.state == StateConnected {
		return s.device
	}
	return nil
}

// emit delivers an update without blocking the command queue. A caller that stops draining its
// update channel loses updates rather than wedging the Manager.
func (m *Manager) emit(s *session, update ConnectionUpdate) {
	select {
	case s.updates <- update:
	default:
		log.Error("ble: dropping %s update for %s, consumer is behind", update.State, s.id)
	}
}

// Close stops the scan, disconnects every device and releases the adapter.
func (m *Manager) Close() error {
	m.StopScan()
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.Disconnect(id)
	}
	m.queue.Stop()
	return m.adapter.Close()
}
