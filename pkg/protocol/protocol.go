// Package protocol implements the vendor GATT protocol spoken by tri-color e-paper panels: the
// characteristic table, the chunked file-transfer packet format, and the completion handshake
// status codes.
package protocol

import "fmt"

// The panel exposes a single vendor service. Characteristic UUIDs share the service's base and
// differ only in the third byte of the first group.
const (
	ServiceUUID = "7b12ff00-4413-49c1-a307-74997b8b5941"

	// BasicInfoUUID notifies firmware, battery, screen id and driver IC info shortly after the
	// notification is enabled.
	BasicInfoUUID = "7b12ff01-4413-49c1-a307-74997b8b5941"

	// FirmwareVersionUUID reads as a firmware version string.
	FirmwareVersionUUID = "7b12ff02-4413-49c1-a307-74997b8b5941"

	// FileTransferUUID receives the header packet followed by the data packets.
	FileTransferUUID = "7b12ff03-4413-49c1-a307-74997b8b5941"

	// SendResultUUID notifies a single status byte once the panel has processed an upload. The
	// radio link may drop this notification, so CompletionUUID is the authoritative channel.
	SendResultUUID = "7b12ff04-4413-49c1-a307-74997b8b5941"

	// CompletionUUID is written to signal end-of-transfer and read back to poll for the result.
	CompletionUUID = "7b12ff10-4413-49c1-a307-74997b8b5941"

	// ClearScreenUUID blanks the panel when written with ClearScreenCommand.
	ClearScreenUUID = "7b12ff13-4413-49c1-a307-74997b8b5941"
)

// Status bytes read from CompletionUUID or notified on SendResultUUID.
const (
	StatusFailure       = 0x00
	StatusSuccess       = 0x01
	StatusBusy          = 0x02 // Panel is still refreshing; keep polling.
	StatusImageTooLarge = 0x0a
)

const (
	// CompletionCommand is written to CompletionUUID after the last data packet. The value is
	// asserted by the vendor protocol documentation; firmware behavior for other operation
	// types has not been confirmed on hardware.
	CompletionCommand = 0x01

	// ClearScreenCommand blanks the panel when written to ClearScreenUUID.
	ClearScreenCommand = 0x0c
)

// ResultCode classifies the terminal outcome of one transfer attempt.
type ResultCode int

const (
	ResultUnknownCode ResultCode = iota
	ResultSuccess
	ResultDeviceFailure
	ResultImageTooLarge
	ResultTimeout
)

func (c ResultCode) String() string {
	switch c {
	case ResultSuccess:
		return "success"
	case ResultDeviceFailure:
		return "device failure"
	case ResultImageTooLarge:
		return "image too large"
	case ResultTimeout:
		return "timeout"
	default:
		return "unknown status code"
	}
}

// Result is the terminal outcome of one transfer attempt, with the raw status byte retained for
// codes this package does not recognize. The package never retries a terminal result; retry
// policy belongs to the caller.
type Result struct {
	Code   ResultCode
	Status byte // raw status byte; meaningful when Code is ResultUnknownCode
}

func (r Result) String() string {
	if r.Code == ResultUnknownCode {
		return fmt.Sprintf("unknown status code 0x%02x", r.Status)
	}
	return r.Code.String()
}

// ResultTimedOut is the Result for a poll loop that exhausted its tries without a terminal
// status byte.
var ResultTimedOut = Result{Code: ResultTimeout}

// ResultFromStatus maps a terminal status byte to a Result. StatusBusy is not terminal and must
// be filtered by the poll loop before calling.
func ResultFromStatus(code byte) Result {
	switch code {
	case StatusSuccess:
		return Result{Code: ResultSuccess, Status: code}
	case StatusFailure:
		return Result{Code: ResultDeviceFailure, Status: code}
	case StatusImageTooLarge:
		return Result{Code: ResultImageTooLarge, Status: code}
	default:
		return Result{Code: ResultUnknownCode, Status: code}
	}
}
