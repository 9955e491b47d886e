package panel_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/epdlink/panel-command/mocks"
	"github.com/epdlink/panel-command/pkg/connector/ble"
	"github.com/epdlink/panel-command/pkg/panel"
	"github.com/epdlink/panel-command/pkg/protocol"
)

// testbed wires mock adapter, device and service behind a real Manager so Panel flows exercise
// the full connect path.
type testbed struct {
	adapter *mocks.BLEAdapter
	device  *mocks.BLEDevice
	service *mocks.BLEService
	manager *ble.Manager

	// closes once the link watcher has attached, so the controller sees the Disconnected call
	// before the test ends.
	watching chan struct{}
}

func newTestbed(t *testing.T, ctrl *gomock.Controller) *testbed {
	t.Helper()
	tb := &testbed{
		adapter:  mocks.NewBLEAdapter(ctrl),
		device:   mocks.NewBLEDevice(ctrl),
		service:  mocks.NewBLEService(ctrl),
		watching: make(chan struct{}),
	}
	manager, err := ble.NewManager(tb.adapter, ble.Config{ConnectTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewManager: %s", err)
	}
	tb.manager = manager
	return tb
}

// expectConnect scripts the standard connect flow: dial, MTU exchange, service discovery.
func (tb *testbed) expectConnect(deviceID string, negotiatedMTU int) {
	link := make(chan struct{})
	tb.adapter.EXPECT().Connect(gomock.Any(), deviceID).Return(tb.device, nil)
	tb.device.EXPECT().Disconnected().DoAndReturn(func() <-chan struct{} {
		close(tb.watching)
		return link
	})
	tb.device.EXPECT().ExchangeMTU(ble.DefaultRequestedMTU).Return(negotiatedMTU, nil)
	tb.device.EXPECT().DiscoverService(gomock.Any(), protocol.ServiceUUID).Return(tb.service, nil)
	tb.service.EXPECT().Characteristics().Return([]ble.Characteristic{
		{ServiceUUID: protocol.ServiceUUID, UUID: protocol.FileTransferUUID, Write: true},
		{ServiceUUID: protocol.ServiceUUID, UUID: protocol.CompletionUUID, Read: true, Write: true},
	})
	tb.device.EXPECT().Close().Return(nil).AnyTimes()
	tb.adapter.EXPECT().Close().Return(nil).AnyTimes()
}

func (tb *testbed) connect(t *testing.T, p *panel.Panel) {
	t.Helper()
	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %s", err)
	}
	<-tb.watching
	t.Cleanup(func() {
		p.Disconnect()
		tb.manager.Close()
	})
}

func solidImage(width, height int) image.Image {
	// The zero RGBA raster reads as black everywhere, which encodes to a full black plane and
	// an empty red plane.
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func TestSendImageWritesProtocolSequence(t *testing.T) {
	ctrl := gomock.NewController(t)
	tb := newTestbed(t, ctrl)
	model := panel.Model{Name: "test", Width: 16, Height: 8}
	p := panel.NewByID(tb.manager, "panel-1", panel.Config{Model: model, ChunkSize: 200})

	tb.expectConnect("panel-1", 247)
	tb.connect(t, p)

	// 16x8 black pixels: 16-byte black plane of 0xFF, 16-byte empty red plane.
	payload := append(bytes.Repeat([]byte{0xff}, 16), bytes.Repeat([]byte{0x00}, 16)...)
	header := []byte{
		0x00, 0x00,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x20,
		0x00, 0x00, 0x00, 0x00,
	}
	gomock.InOrder(
		tb.service.EXPECT().Subscribe(protocol.SendResultUUID, gomock.Any()).Return(nil),
		tb.service.EXPECT().WriteCharacteristic(protocol.FileTransferUUID, header, true).Return(nil),
		tb.service.EXPECT().WriteCharacteristic(protocol.FileTransferUUID, payload, true).Return(nil),
		tb.service.EXPECT().WriteCharacteristic(protocol.CompletionUUID, []byte{protocol.CompletionCommand}, true).Return(nil),
		tb.service.EXPECT().ReadCharacteristic(protocol.CompletionUUID).Return([]byte{protocol.StatusSuccess}, nil),
	)

	result, err := p.SendImage(context.Background(), solidImage(16, 8))
	if err != nil {
		t.Fatalf("SendImage: %s", err)
	}
	if result.Code != protocol.ResultSuccess {
		t.Errorf("Expected success, got %s", result)
	}
}

func TestChunkSizeClampedToNegotiatedMTU(t *testing.T) {
	ctrl := gomock.NewController(t)
	tb := newTestbed(t, ctrl)
	// 100x16 pixels: two 200-byte planes, a 400-byte payload.
	model := panel.Model{Name: "test", Width: 100, Height: 16}
	p := panel.NewByID(tb.manager, "panel-2", panel.Config{Model: model, ChunkSize: 200})

	// MTU 100 leaves 97 bytes per write, so the 400-byte payload needs five data packets.
	tb.expectConnect("panel-2", 100)
	tb.connect(t, p)

	tb.service.EXPECT().Subscribe(protocol.SendResultUUID, gomock.Any()).Return(nil)
	transferWrites := 0
	tb.service.EXPECT().WriteCharacteristic(protocol.FileTransferUUID, gomock.Any(), true).
		DoAndReturn(func(_ string, data []byte, _ bool) error {
			transferWrites++
			if len(data) > 97 && transferWrites > 1 {
				t.Errorf("Data packet %d exceeds the clamped chunk size: %d bytes", transferWrites-1, len(data))
			}
			return nil
		}).Times(6)
	tb.service.EXPECT().WriteCharacteristic(protocol.CompletionUUID, []byte{protocol.CompletionCommand}, true).Return(nil)
	tb.service.EXPECT().ReadCharacteristic(protocol.CompletionUUID).Return([]byte{protocol.StatusSuccess}, nil)

	if _, err := p.SendImage(context.Background(), solidImage(100, 16)); err != nil {
		t.Fatalf("SendImage: %s", err)
	}
	if transferWrites != 6 {
		t.Errorf("Expected header plus five data packets, got %d writes", transferWrites)
	}
}

func TestClearScreen(t *testing.T) {
	ctrl := gomock.NewController(t)
	tb := newTestbed(t, ctrl)
	p := panel.NewByID(tb.manager, "panel-3", panel.Config{})

	tb.expectConnect("panel-3", 247)
	tb.connect(t, p)

	tb.service.EXPECT().WriteCharacteristic(protocol.ClearScreenUUID, []byte{protocol.ClearScreenCommand}, true).Return(nil)
	if err := p.ClearScreen(context.Background()); err != nil {
		t.Fatalf("ClearScreen: %s", err)
	}
}

func TestFirmwareVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	tb := newTestbed(t, ctrl)
	p := panel.NewByID(tb.manager, "panel-4", panel.Config{})

	tb.expectConnect("panel-4", 247)
	tb.connect(t, p)

	tb.service.EXPECT().ReadCharacteristic(protocol.FirmwareVersionUUID).Return([]byte("v1.4.2"), nil)
	version, err := p.FirmwareVersion(context.Background())
	if err != nil {
		t.Fatalf("FirmwareVersion: %s", err)
	}
	if version != "v1.4.2" {
		t.Errorf("Expected v1.4.2, got %q", version)
	}
}

func TestSubscribeBasicInfoParsesBattery(t *testing.T) {
	ctrl := gomock.NewController(t)
	tb := newTestbed(t, ctrl)
	p := panel.NewByID(tb.manager, "panel-5", panel.Config{})

	tb.expectConnect("panel-5", 247)
	tb.connect(t, p)

	var push func([]byte)
	tb.service.EXPECT().Subscribe(protocol.BasicInfoUUID, gomock.Any()).
		DoAndReturn(func(_ string, fn func([]byte)) error {
			push = fn
			return nil
		})

	infos := make(chan panel.BasicInfo, 1)
	if err := p.SubscribeBasicInfo(func(info panel.BasicInfo) { infos <- info }); err != nil {
		t.Fatalf("SubscribeBasicInfo: %s", err)
	}

	push([]byte{87, 0x01, 0x02})
	select {
	case info := <-infos:
		if info.Battery != 87 {
			t.Errorf("Expected battery 87, got %d", info.Battery)
		}
		if len(info.Raw) != 3 {
			t.Errorf("Expected the raw record to ride along, got %d bytes", len(info.Raw))
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for the basic-info push")
	}
}

func TestCommandsRequireConnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	tb := newTestbed(t, ctrl)
	t.Cleanup(func() {
		tb.adapter.EXPECT().Close().Return(nil)
		tb.manager.Close()
	})
	p := panel.NewByID(tb.manager, "panel-6", panel.Config{})

	if _, err := p.SendImage(context.Background(), solidImage(16, 8)); !errors.Is(err, protocol.ErrNotConnected) {
		t.Errorf("SendImage before connect: expected ErrNotConnected, got %v", err)
	}
	if err := p.ClearScreen(context.Background()); !errors.Is(err, protocol.ErrNotConnected) {
		t.Errorf("ClearScreen before connect: expected ErrNotConnected, got %v", err)
	}
	if _, err := p.FirmwareVersion(context.Background()); !errors.Is(err, protocol.ErrNotConnected) {
		t.Errorf("FirmwareVersion before connect: expected ErrNotConnected, got %v", err)
	}
	if err := p.SubscribeBasicInfo(func(panel.BasicInfo) {}); !errors.Is(err, protocol.ErrNotConnected) {
		t.Errorf("SubscribeBasicInfo before connect: expected ErrNotConnected, got %v", err)
	}
}
