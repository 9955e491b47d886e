package tinygo

import (
	"context"
	"errors"
	"fmt"

	"tinygo.org/x/bluetooth"

	"github.com/epdlink/panel-command/pkg/connector/ble"
)

type device struct {
	adapter *adapter
	client  *bluetooth.Device
	address string
	link    *linkState
}

func (d *device) ExchangeMTU(int) (int, error) {
	// BlueZ and the native mobile stacks negotiate the MTU themselves; this backend cannot
	// initiate an exchange. Callers fall back to the link-layer default, which is always safe.
	return 0, errors.New("ble: MTU exchange not supported by this backend")
}

func (d *device) DiscoverService(_ context.Context, uuid string) (ble.Service, error) {
	parsed, err := bluetooth.ParseUUID(uuid)
	if err != nil {
		return nil, fmt.Errorf("ble: invalid service uuid %q: %s", uuid, err)
	}

	services, err := d.client.DiscoverServices([]bluetooth.UUID{parsed})
	if err != nil {
		return nil, fmt.Errorf("ble: failed to enumerate device services: %s", err)
	}
	if len(services) != 1 {
		return nil, fmt.Errorf("ble: service %s not present", uuid)
	}

	characteristics, err := services[0].DiscoverCharacteristics(nil)
	if err != nil {
		return nil, fmt.Errorf("ble: failed to discover service characteristics: %s", err)
	}
	byUUID := make(map[string]bluetooth.DeviceCharacteristic, len(characteristics))
	for _, c := range characteristics {
		byUUID[c.UUID().String()] = c
	}

	return &service{
		serviceUUID: services[0].UUID().String(),
		byUUID:      byUUID,
	}, nil
}

func (d *device) Disconnected() <-chan struct{} {
	return d.link.ch
}

func (d *device) Close() error {
	err := d.client.Disconnect()
	d.adapter.forgetLink(d.address)
	d.link.drop()
	return err
}
