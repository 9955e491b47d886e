// Package tinygo implements the ble.Adapter interface on top of tinygo.org/x/bluetooth, which
// talks to BlueZ over D-Bus on Linux and to the native stacks on Darwin and Windows.
package tinygo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/epdlink/panel-command/internal/log"
	"github.com/epdlink/panel-command/pkg/connector/ble"
	"github.com/epdlink/panel-command/pkg/protocol"
)

type linkState struct {
	ch   chan struct{}
	once sync.Once
}

func (l *linkState) drop() {
	l.once.Do(func() {
		close(l.ch)
	})
}

type adapter struct {
	device *bluetooth.Adapter

	mu    sync.Mutex
	links map[string]*linkState
}

func NewAdapter(id string) (ble.Adapter, error) {
	device, err := newAdapter(id)
	if err != nil {
		return nil, fmt.Errorf("ble: failed to create adapter: %s", err)
	}
	if err := device.Enable(); err != nil {
		if isAdapterError(err) {
			return nil, fmt.Errorf("%w: %s", protocol.ErrAdapterUnavailable, err)
		}
		return nil, fmt.Errorf("ble: failed to enable adapter: %s", err)
	}

	a := &adapter{
		device: device,
		links:  make(map[string]*linkState),
	}
	device.SetConnectHandler(func(d bluetooth.Device, connected bool) {
		if connected {
			return
		}
		a.mu.Lock()
		link := a.links[d.Address.String()]
		delete(a.links, d.Address.String())
		a.mu.Unlock()
		if link != nil {
			link.drop()
		}
	})
	return a, nil
}

func (a *adapter) Scan(ctx context.Context, filterUUID string, fn func(ble.Beacon)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var filter bluetooth.UUID
	filtered := filterUUID != ""
	if filtered {
		var err error
		filter, err = bluetooth.ParseUUID(filterUUID)
		if err != nil {
			return fmt.Errorf("ble: invalid service filter %q: %s", filterUUID, err)
		}
	}

	stopScan := func() {
		if err := a.device.StopScan(); err != nil {
			if strings.Contains(err.Error(), "no scan in progress") {
				return
			}
			log.Warning("ble: failed to stop scan: %+v", err)
		}
	}
	go func() {
		<-ctx.Done()
		stopScan()
	}()

	err := a.device.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		if filtered && !result.HasServiceUUID(filter) {
			return
		}
		fn(resultToBeacon(result))
	})
	if err != nil {
		if isAdapterError(err) {
			return fmt.Errorf("%w: %s", protocol.ErrAdapterUnavailable, err)
		}
		return err
	}
	return ctx.Err()
}

func (a *adapter) Connect(ctx context.Context, id string) (ble.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addr, err := parseAddress(id)
	if err != nil {
		return nil, err
	}

	params := bluetooth.ConnectionParams{}
	if deadline, ok := ctx.Deadline(); ok {
		params.ConnectionTimeout = bluetooth.NewDuration(time.Until(deadline))
	}

	client, err := a.device.Connect(addr, params)
	if err != nil {
		return nil, err
	}

	link := &linkState{ch: make(chan struct{})}
	a.mu.Lock()
	a.links[addr.String()] = link
	a.mu.Unlock()

	return &device{
		adapter: a,
		client:  &client,
		address: addr.String(),
		link:    link,
	}, nil
}

func (a *adapter) Close() error {
	a.device = nil
	return nil
}

func (a *adapter) forgetLink(address string) {
	a.mu.Lock()
	delete(a.links, address)
	a.mu.Unlock()
}

func resultToBeacon(result bluetooth.ScanResult) ble.Beacon {
	beacon := ble.Beacon{
		ID:        result.Address.String(),
		LocalName: result.LocalName(),
		RSSI:      result.RSSI,
	}
	if elements := result.ManufacturerData(); len(elements) > 0 {
		beacon.Advertisement = elements[0].Data
	}
	return beacon
}
