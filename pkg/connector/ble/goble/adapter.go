// Package goble implements the ble.Adapter interface on top of github.com/go-ble/ble. This is
// the preferred backend on Linux hosts with raw HCI access.
package goble

import (
	"context"
	"fmt"
	"strings"

	goble "github.com/go-ble/ble"

	"github.com/epdlink/panel-command/pkg/connector/ble"
	"github.com/epdlink/panel-command/pkg/protocol"
)

func NewAdapter(id string) (ble.Adapter, error) {
	device, err := newDevice(id)
	if err != nil {
		if isAdapterError(err) {
			return nil, fmt.Errorf("%w: %s", protocol.ErrAdapterUnavailable, err)
		}
		return nil, fmt.Errorf("ble: failed to enable device: %s", err)
	}
	return &adapter{device: device}, nil
}

type adapter struct {
	device goble.Device
}

func (a *adapter) Scan(ctx context.Context, filterUUID string, fn func(ble.Beacon)) error {
	var filter goble.UUID
	if filterUUID != "" {
		var err error
		filter, err = goble.Parse(filterUUID)
		if err != nil {
			return fmt.Errorf("ble: invalid service filter %q: %s", filterUUID, err)
		}
	}

	err := a.device.Scan(ctx, false, func(adv goble.Advertisement) {
		if filter != nil && !advertisesService(adv, filter) {
			return
		}
		fn(advertisementToBeacon(adv))
	})
	if err != nil && isAdapterError(err) {
		return fmt.Errorf("%w: %s", protocol.ErrAdapterUnavailable, err)
	}
	return err
}

func (a *adapter) Connect(ctx context.Context, id string) (ble.Device, error) {
	client, err := a.device.Dial(ctx, goble.NewAddr(id))
	if err != nil {
		return nil, err
	}
	return &device{client: client}, nil
}

func (a *adapter) Close() error {
	if a.device == nil {
		return nil
	}
	device := a.device
	a.device = nil
	return device.Stop()
}

func advertisesService(adv goble.Advertisement, filter goble.UUID) bool {
	for _, u := range adv.Services() {
		if u.Equal(filter) {
			return true
		}
	}
	return false
}

func advertisementToBeacon(adv goble.Advertisement) ble.Beacon {
	return ble.Beacon{
		ID:            adv.Addr().String(),
		LocalName:     adv.LocalName(),
		RSSI:          int16(adv.RSSI()),
		Advertisement: adv.ManufacturerData(),
	}
}

func isAdapterError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	// HCI socket errors surface when the controller is missing or powered off.
	return strings.Contains(msg, "can't init hci") ||
		strings.Contains(msg, "no devices available") ||
		strings.Contains(msg, "network is down")
}
