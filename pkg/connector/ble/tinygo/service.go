package tinygo

import (
	"fmt"

	"tinygo.org/x/bluetooth"

	"github.com/epdlink/panel-command/pkg/connector/ble"
)

type service struct {
	serviceUUID string
	byUUID      map[string]bluetooth.DeviceCharacteristic
}

func (s *service) Characteristics() []ble.Characteristic {
	out := make([]ble.Characteristic, 0, len(s.byUUID))
	for uuid := range s.byUUID {
		// This API does not expose the property mask, so operations are reported as
		// supported and individual calls fail if the peripheral rejects them.
		out = append(out, ble.Characteristic{
			ServiceUUID: s.serviceUUID,
			UUID:        uuid,
			Read:        true,
			Write:       true,
			Notify:      true,
		})
	}
	return out
}

func (s *service) Subscribe(uuid string, fn func([]byte)) error {
	c, err := s.characteristic(uuid)
	if err != nil {
		return err
	}
	if err := c.EnableNotifications(fn); err != nil {
		return fmt.Errorf("ble: failed to subscribe to %s: %s", uuid, err)
	}
	return nil
}

func (s *service) WriteCharacteristic(uuid string, data []byte, withResponse bool) error {
	c, err := s.characteristic(uuid)
	if err != nil {
		return err
	}
	if withResponse {
		_, err = deviceCharacteristicWrite(c, data)
	} else {
		_, err = c.WriteWithoutResponse(data)
	}
	return err
}

func (s *service) ReadCharacteristic(uuid string) ([]byte, error) {
	c, err := s.characteristic(uuid)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 512)
	n, err := c.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (s *service) characteristic(uuid string) (bluetooth.DeviceCharacteristic, error) {
	parsed, err := bluetooth.ParseUUID(uuid)
	if err != nil {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("ble: invalid characteristic uuid %q: %s", uuid, err)
	}
	if c, ok := s.byUUID[parsed.String()]; ok {
		return c, nil
	}
	return bluetooth.DeviceCharacteristic{}, fmt.Errorf("ble: characteristic %s not in discovered service", uuid)
}
