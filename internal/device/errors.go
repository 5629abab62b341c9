package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
//
// None of them are fatal. Callers report the message and carry on.
var (
	// ErrDeviceNotFound is returned when no device matches a name lookup.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrUnknownKind is returned when a kind tag or menu number is not recognised.
	ErrUnknownKind = errors.New("device: unknown kind")

	// ErrInvalidName is returned when a device name is empty or cannot be stored.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrOutOfRange is returned when numeric input falls outside its allowed range
	// (schedule hour/minute, schedule index, timer duration, unparseable numbers).
	ErrOutOfRange = errors.New("device: value out of range")

	// ErrInvalidChoice is returned when a menu option id is not offered by the device.
	ErrInvalidChoice = errors.New("device: invalid choice")

	// ErrDeviceOff is returned when an operation requires the device to be on.
	ErrDeviceOff = errors.New("device: device is off")

	// ErrSessionClosed is returned when a finished device session is used again.
	ErrSessionClosed = errors.New("device: session closed")

	// ErrMalformedRecord is returned when a persisted line cannot be fully decoded.
	ErrMalformedRecord = errors.New("device: malformed record")
)
