package goble

import (
	"fmt"

	goble "github.com/go-ble/ble"

	"github.com/epdlink/panel-command/pkg/connector/ble"
)

type service struct {
	client      goble.Client
	serviceUUID string
	byUUID      map[string]*goble.Characteristic
}

func (s *service) Characteristics() []ble.Characteristic {
	out := make([]ble.Characteristic, 0, len(s.byUUID))
	for uuid, c := range s.byUUID {
		out = append(out, ble.Characteristic{
			ServiceUUID: s.serviceUUID,
			UUID:        uuid,
			Read:        c.Property&goble.CharRead != 0,
			Write:       c.Property&(goble.CharWrite|goble.CharWriteNR) != 0,
			Notify:      c.Property&goble.CharNotify != 0,
		})
	}
	return out
}

func (s *service) Subscribe(uuid string, fn func([]byte)) error {
	c, err := s.characteristic(uuid)
	if err != nil {
		return err
	}
	if err := s.client.Subscribe(c, false, fn); err != nil {
		return fmt.Errorf("ble: failed to subscribe to %s: %s", uuid, err)
	}
	return nil
}

func (s *service) WriteCharacteristic(uuid string, data []byte, withResponse bool) error {
	c, err := s.characteristic(uuid)
	if err != nil {
		return err
	}
	return s.client.WriteCharacteristic(c, data, !withResponse)
}

func (s *service) ReadCharacteristic(uuid string) ([]byte, error) {
	c, err := s.characteristic(uuid)
	if err != nil {
		return nil, err
	}
	return s.client.ReadCharacteristic(c)
}

func (s *service) characteristic(uuid string) (*goble.Characteristic, error) {
	parsed, err := goble.Parse(uuid)
	if err != nil {
		return nil, fmt.Errorf("ble: invalid characteristic uuid %q: %s", uuid, err)
	}
	if c, ok := s.byUUID[parsed.String()]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("ble: characteristic %s not in discovered service", uuid)
}
