package protocol

import (
	"errors"
	"fmt"
)

// Error exposes methods useful for categorizing errors.
type Error interface {
	error

	// Temporary returns true if the Error might be the result of a transient condition. For
	// example, a connect timeout while the panel finishes a refresh cycle usually clears on the
	// next attempt.
	Temporary() bool
}

var (
	// ErrAdapterUnavailable indicates the local radio is powered off or missing. Scanning and
	// connecting are refused until the adapter is ready.
	ErrAdapterUnavailable = NewError("bluetooth adapter unavailable", false)
	// ErrConnectTimeout indicates the panel did not establish a link within the connect timeout.
	ErrConnectTimeout = NewError("timed out waiting for panel connection", true)
	// ErrNotConnected indicates an operation that requires an established link was attempted
	// without one.
	ErrNotConnected = NewError("panel not connected", false)
	// ErrLinkLost indicates an established connection dropped without a disconnect request.
	ErrLinkLost = NewError("panel link lost", true)
	// ErrServiceNotFound indicates the connected device does not expose the requested service.
	// The connection stays up; the caller may retry discovery.
	ErrServiceNotFound = NewError("service not found on device", true)
	// ErrCharacteristicNotFound indicates discovery succeeded but the requested characteristic is
	// absent from the service.
	ErrCharacteristicNotFound = NewError("characteristic not found in service", false)
	// ErrMTUNegotiationFailed is logged and swallowed by callers; transfers proceed with the
	// default MTU.
	ErrMTUNegotiationFailed = NewError("MTU negotiation failed", true)
	// ErrScanStopped indicates a scan ended because StopScan was called rather than because of a
	// radio fault.
	ErrScanStopped = errors.New("scan stopped")
)

type CommandError struct {
	Err               error
	PossibleTemporary bool
}

func NewError(message string, temporary bool) error {
	return &CommandError{Err: errors.New(message), PossibleTemporary: temporary}
}

func (e *CommandError) Error() string {
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func (e *CommandError) Temporary() bool {
	return e.PossibleTemporary
}

// TransferAbortedError indicates a packet write failed. The remaining packets were not sent. The
// connection itself is left up; the panel discards a partial upload when a new header arrives.
type TransferAbortedError struct {
	PacketIndex int
	Err         error
}

func (e *TransferAbortedError) Error() string {
	return fmt.Sprintf("transfer aborted at packet %d: %s", e.PacketIndex, e.Err)
}

func (e *TransferAbortedError) Unwrap() error {
	return e.Err
}

func (e *TransferAbortedError) Temporary() bool {
	return true
}

// Temporary returns true if err indicates a condition that may clear without user action.
func Temporary(err error) bool {
	var commErr Error
	if errors.As(err, &commErr) {
		return commErr.Temporary()
	}
	return false
}

// ShouldRetry returns true if the caller may reasonably reattempt the operation that triggered
// err.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	return Temporary(err)
}
