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
		return nil, errors.New("ble: Windows does not support specifying an adapter ID")
	}
	return bluetooth.DefaultAdapter, nil
}

// The WinRT stack does not expose acknowledged writes through this API.
var deviceCharacteristicWrite = bluetooth.DeviceCharacteristic.WriteWithoutResponse

func parseAddress(address string) (bluetooth.Address, error) {
	mac, err := bluetooth.ParseMAC(address)
	if err != nil {
		return bluetooth.Address{}, fmt.Errorf("ble: failed to parse MAC address: %s", err)
	}
	return bluetooth.Address{
		MACAddress: bluetooth.MACAddress{
			MAC: mac,
		},
	}, nil
}
