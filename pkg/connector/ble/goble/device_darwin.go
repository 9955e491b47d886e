package goble

import (
	goble "github.com/go-ble/ble"
	"github.com/go-ble/ble/darwin"

	"github.com/epdlink/panel-command/internal/log"
)

func newDevice(id string) (goble.Device, error) {
	if id != "" {
		log.Warning("Darwin does not support specifying a Bluetooth adapter ID")
	}
	return darwin.NewDevice()
}
