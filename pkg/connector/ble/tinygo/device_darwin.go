package tinygo

import (
	"errors"
	"fmt"

	"tinygo.org/x/bluetooth"
)

func isAdapterError(_ error) bool {
	return false
}

func newAdapter(id string) (*bluetooth.Adapter, error) {
	if id != "" {
		return nil, errors.New("ble: Darwin does not support specifying an adapter ID")
	}
	return bluetooth.DefaultAdapter, nil
}

var deviceCharacteristicWrite = bluetooth.DeviceCharacteristic.Write

// Darwin identifies peripherals by a CoreBluetooth UUID rather than a MAC address.
func parseAddress(address string) (bluetooth.Address, error) {
	uuid, err := bluetooth.ParseUUID(address)
	if err != nil {
		return bluetooth.Address{}, fmt.Errorf("ble: failed to parse device UUID: %s", err)
	}
	return bluetooth.Address{
		UUID: uuid,
	}, nil
}
