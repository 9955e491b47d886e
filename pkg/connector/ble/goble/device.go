package goble

import (
	"context"
	"errors"
	"fmt"

	goble "github.com/go-ble/ble"

	"github.com/epdlink/panel-command/pkg/connector/ble"
)

type device struct {
	client goble.Client
}

func (d *device) ExchangeMTU(mtu int) (int, error) {
	return d.client.ExchangeMTU(mtu)
}

func (d *device) DiscoverService(_ context.Context, uuid string) (ble.Service, error) {
	parsed, err := goble.Parse(uuid)
	if err != nil {
		return nil, fmt.Errorf("ble: invalid service uuid %q: %s", uuid, err)
	}

	services, err := d.client.DiscoverServices([]goble.UUID{parsed})
	if err != nil {
		return nil, fmt.Errorf("ble: failed to enumerate device services: %s", err)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("ble: service %s not present", uuid)
	}

	characteristics, err := d.client.DiscoverCharacteristics(nil, services[0])
	if err != nil {
		return nil, fmt.Errorf("ble: failed to discover service characteristics: %s", err)
	}
	byUUID := make(map[string]*goble.Characteristic, len(characteristics))
	for _, c := range characteristics {
		// Descriptors must be discovered before Subscribe can find the CCCD.
		if _, err := d.client.DiscoverDescriptors(nil, c); err != nil {
			return nil, fmt.Errorf("ble: couldn't fetch descriptors: %s", err)
		}
		byUUID[c.UUID.String()] = c
	}

	return &service{
		client:      d.client,
		serviceUUID: services[0].UUID.String(),
		byUUID:      byUUID,
	}, nil
}

func (d *device) Disconnected() <-chan struct{} {
	return d.client.Disconnected()
}

func (d *device) Close() error {
	client := d.client
	d.client = nil

	err1 := client.ClearSubscriptions()
	err2 := client.CancelConnection()
	return errors.Join(err1, err2)
}
