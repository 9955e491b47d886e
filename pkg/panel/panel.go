// Package panel is the high-level client for a tri-color e-paper panel. It ties the connection
// manager, image encoder, packet builder and transfer engine together behind one type, so that
// callers deal in images and results rather than characteristics and status bytes.
package panel

import (
	"context"
	"fmt"
	"image"

	"github.com/epdlink/panel-command/internal/log"
	"github.com/epdlink/panel-command/pkg/connector/ble"
	"github.com/epdlink/panel-command/pkg/protocol"
	"github.com/epdlink/panel-command/pkg/raster"
	"github.com/epdlink/panel-command/pkg/transfer"
)

// Config tunes a Panel. The zero value is usable: the default model, chunk size and poll
// parameters apply.
type Config struct {
	// Model overrides the model parsed from the advertisement. Leave zero to use the
	// advertised model, falling back to DefaultModel.
	Model Model
	// ChunkSize caps the data-packet payload. It is further clamped to the negotiated MTU
	// minus the 3-byte ATT write header on connect.
	ChunkSize int
	// Transfer tunes the completion poll loop.
	Transfer transfer.Config
}

// BasicInfo is the record the panel pushes shortly after subscription. Only the battery level is
// decoded; firmware, screen id and driver IC fields ride along raw.
type BasicInfo struct {
	Battery int
	Raw     []byte
}

// Panel drives one e-paper device through an established Manager. Create with New, then Connect
// before invoking commands. Not safe for concurrent command use.
type Panel struct {
	manager   *ble.Manager
	id        string
	model     Model
	chunkSize int
	transfer  transfer.Config
	conn      transfer.Link
	engine    *transfer.Engine
}

// New prepares a Panel for the device identified by handle. The handle's advertised name selects
// the model when cfg.Model is unset.
func New(manager *ble.Manager, handle ble.DeviceHandle, cfg Config) *Panel {
	model := cfg.Model
	if model == (Model{}) {
		parsed, ok := ParseAdvertisedName(handle.Name)
		if !ok {
			log.Debug("No model in advertised name %q, assuming %s", handle.Name, DefaultModel)
			parsed = DefaultModel
		}
		model = parsed
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = protocol.DefaultChunkSize
	}
	return &Panel{
		manager:   manager,
		id:        handle.ID,
		model:     model,
		chunkSize: chunkSize,
		transfer:  cfg.Transfer,
	}
}

// NewByID prepares a Panel for a device that was not observed advertising, such as one addressed
// directly from the command line.
func NewByID(manager *ble.Manager, deviceID string, cfg Config) *Panel {
	return New(manager, ble.DeviceHandle{ID: deviceID}, cfg)
}

// ID returns the device identifier the Panel drives.
func (p *Panel) ID() string { return p.id }

// Model returns the panel variant in effect.
func (p *Panel) Model() Model { return p.model }

// Connect establishes the link, negotiates the MTU and discovers the vendor service. MTU
// negotiation failure is logged and tolerated; service discovery failure is not, since no
// command can proceed without the characteristics.
func (p *Panel) Connect(ctx context.Context) error {
	updates, err := p.manager.Connect(ctx, p.id)
	if err != nil {
		return err
	}
	if err := waitConnected(ctx, updates); err != nil {
		return err
	}

	mtu := p.manager.RequestMTU(p.id, ble.DefaultRequestedMTU)
	if limit := mtu - 3; limit < p.chunkSize {
		log.Info("Negotiated MTU %d caps the chunk size at %d bytes", mtu, limit)
		p.chunkSize = limit
	}

	if _, err := p.manager.DiscoverCharacteristics(ctx, p.id, protocol.ServiceUUID); err != nil {
		return fmt.Errorf("failed to discover panel service: %w", err)
	}
	link, err := p.manager.Link(p.id)
	if err != nil {
		return err
	}
	p.conn = link
	p.engine = transfer.New(link, p.transfer)
	return nil
}

func waitConnected(ctx context.Context, updates <-chan ble.ConnectionUpdate) error {
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return protocol.ErrNotConnected
			}
			if update.Err != nil {
				return update.Err
			}
			if update.State == ble.StateConnected {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Disconnect tears the link down. Idempotent.
func (p *Panel) Disconnect() {
	p.conn = nil
	p.engine = nil
	p.manager.Disconnect(p.id)
}

// SendImage encodes img for the panel's resolution and runs a complete transfer. The returned
// Result is the panel's verdict; err covers link-level failures only.
func (p *Panel) SendImage(ctx context.Context, img image.Image) (protocol.Result, error) {
	if p.engine == nil {
		return protocol.Result{}, protocol.ErrNotConnected
	}
	planes := raster.EncodeTriColor(img, p.model.Width, p.model.Height)
	plan, err := protocol.BuildPackets(planes.Payload(), p.chunkSize)
	if err != nil {
		return protocol.Result{}, err
	}
	log.Debug("Sending %dx%d image as %d packets of up to %d bytes",
		p.model.Width, p.model.Height, plan.DataPacketCount(), p.chunkSize)
	return p.engine.Send(ctx, plan)
}

// ClearScreen blanks the panel.
func (p *Panel) ClearScreen(ctx context.Context) error {
	if p.conn == nil {
		return protocol.ErrNotConnected
	}
	return p.conn.Write(ctx, protocol.ClearScreenUUID, []byte{protocol.ClearScreenCommand})
}

// FirmwareVersion reads the panel's firmware version string.
func (p *Panel) FirmwareVersion(ctx context.Context) (string, error) {
	if p.conn == nil {
		return "", protocol.ErrNotConnected
	}
	payload, err := p.conn.Read(ctx, protocol.FirmwareVersionUUID)
	if err != nil {
		return "", fmt.Errorf("failed to read firmware version: %w", err)
	}
	return string(payload), nil
}

// SubscribeBasicInfo arranges for fn to receive the panel's basic-info pushes. The panel sends
// one record shortly after subscription and again when the battery state changes. fn runs on the
// router goroutine and must not block.
func (p *Panel) SubscribeBasicInfo(fn func(BasicInfo)) error {
	if p.conn == nil {
		return protocol.ErrNotConnected
	}
	return p.conn.Subscribe(protocol.BasicInfoUUID, func(data []byte) {
		if len(data) == 0 {
			return
		}
		fn(BasicInfo{Battery: int(data[0]), Raw: data})
	})
}
