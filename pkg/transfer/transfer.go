// Package transfer pushes framed image payloads over an established BLE link and resolves the
// panel's verdict. The panel acknowledges an upload in two ways: an optional notification on the
// send-result characteristic, and an authoritative poll loop on the completion characteristic.
// The engine writes every packet with response so a failure is pinned to a packet index.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/epdlink/panel-command/internal/log"
	"github.com/epdlink/panel-command/pkg/protocol"
)

// Link is the write/read/notify surface the engine needs from a connected device. It is
// satisfied by ble.DeviceLink.
type Link interface {
	Write(ctx context.Context, characteristicUUID string, data []byte) error
	Read(ctx context.Context, characteristicUUID string) ([]byte, error)
	Subscribe(characteristicUUID string, handler func(data []byte)) error
}

// Config tunes the completion poll loop.
type Config struct {
	// MaxPollTries bounds how many times the completion characteristic is read before the
	// transfer is declared timed out.
	MaxPollTries int
	// PollInterval is the delay between completion reads.
	PollInterval time.Duration
}

const (
	defaultMaxPollTries = 20
	defaultPollInterval = 200 * time.Millisecond
)

// Engine sends a packetized payload over a Link. An Engine is not safe for concurrent use; run
// one transfer at a time per link.
type Engine struct {
	link Link
	cfg  Config
}

// New creates an Engine over link. Zero fields of cfg take defaults.
func New(link Link, cfg Config) *Engine {
	if cfg.MaxPollTries <= 0 {
		cfg.MaxPollTries = defaultMaxPollTries
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &Engine{link: link, cfg: cfg}
}

// SendFile writes the plan's header and data packets in order. Each write waits for the
// peripheral's acknowledgment before the next begins; the panel reassembles by arrival order and
// has no way to reorder or request retransmission. On failure the returned error records the
// index of the packet that did not go through.
func (e *Engine) SendFile(ctx context.Context, plan *protocol.TransferPlan) error {
	for i, packet := range plan.Packets {
		if err := e.link.Write(ctx, protocol.FileTransferUUID, packet); err != nil {
			return &protocol.TransferAbortedError{PacketIndex: i, Err: err}
		}
	}
	return nil
}

// errStillRefreshing marks a completion read that carried no verdict yet (empty payload or the
// busy status). backoff retries it; everything else is permanent.
var errStillRefreshing = errors.New("panel still refreshing")

// FinalizeAndPoll writes the end-of-transfer command and polls the completion characteristic
// until the panel reports a verdict or MaxPollTries reads come back empty or busy. Exhausting
// the poll budget yields ResultTimedOut rather than an error: the panel may simply take longer
// than our patience on a full refresh.
func (e *Engine) FinalizeAndPoll(ctx context.Context) (protocol.Result, error) {
	if err := e.link.Write(ctx, protocol.CompletionUUID, []byte{protocol.CompletionCommand}); err != nil {
		return protocol.Result{}, fmt.Errorf("failed to signal end of transfer: %w", err)
	}

	var result protocol.Result
	haveResult := false
	reads := 0
	operation := func() error {
		reads++
		payload, err := e.link.Read(ctx, protocol.CompletionUUID)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to read completion status: %w", err))
		}
		if len(payload) == 0 || payload[0] == protocol.StatusBusy {
			log.Debug("Completion read %d/%d: panel busy", reads, e.cfg.MaxPollTries)
			return errStillRefreshing
		}
		result = protocol.ResultFromStatus(payload[0])
		haveResult = true
		return nil
	}

	// MaxPollTries reads total, so MaxPollTries-1 retries after the first.
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(e.cfg.PollInterval), uint64(e.cfg.MaxPollTries-1)),
		ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if errors.Is(err, errStillRefreshing) {
			return protocol.ResultTimedOut, nil
		}
		return protocol.Result{}, err
	}
	if !haveResult {
		return protocol.ResultTimedOut, nil
	}
	return result, nil
}

// Send runs a complete transfer: arm the send-result notification, stream the packets, then
// finalize and poll. A verdict notified mid-poll short-circuits the loop.
func (e *Engine) Send(ctx context.Context, plan *protocol.TransferPlan) (protocol.Result, error) {
	transferID := uuid.New()
	log.Info("Transfer %s: %d data packets, %d bytes", transferID, plan.DataPacketCount(), plan.FileLength)

	notified := e.armNotify(transferID)

	if err := e.SendFile(ctx, plan); err != nil {
		return protocol.Result{}, err
	}

	// A notification that raced ahead of the completion write already carries the verdict.
	select {
	case status := <-notified:
		result := protocol.ResultFromStatus(status)
		log.Info("Transfer %s: notified result %s", transferID, result)
		return result, nil
	default:
	}

	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()
	done := make(chan pollOutcome, 1)
	go func() {
		result, err := e.FinalizeAndPoll(pollCtx)
		done <- pollOutcome{result: result, err: err}
	}()

	select {
	case status := <-notified:
		result := protocol.ResultFromStatus(status)
		log.Info("Transfer %s: notified result %s", transferID, result)
		return result, nil
	case outcome := <-done:
		if outcome.err != nil {
			return protocol.Result{}, outcome.err
		}
		log.Info("Transfer %s: polled result %s", transferID, outcome.result)
		return outcome.result, nil
	}
}

type pollOutcome struct {
	result protocol.Result
	err    error
}

// armNotify subscribes to the send-result characteristic. Subscription failure is tolerable: the
// notification is an optimization and the poll loop delivers the verdict regardless.
func (e *Engine) armNotify(transferID uuid.UUID) <-chan byte {
	notified := make(chan byte, 1)
	err := e.link.Subscribe(protocol.SendResultUUID, func(data []byte) {
		if len(data) == 0 {
			return
		}
		select {
		case notified <- data[0]:
		default:
		}
	})
	if err != nil {
		log.Warning("Transfer %s: send-result subscription unavailable, relying on polling: %s", transferID, err)
	}
	return notified
}
