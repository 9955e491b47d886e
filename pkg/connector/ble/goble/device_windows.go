package goble

import (
	"errors"

	goble "github.com/go-ble/ble"
)

func newDevice(_ string) (goble.Device, error) {
	// Use the tinygo backend on Windows.
	return nil, errors.New("not supported on Windows")
}
