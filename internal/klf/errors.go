package klf

import (
	"errors"
	"fmt"
)

// Sentinel envelope errors.
var (
	// ErrShortFrame is returned for frames too short to carry a command code.
	ErrShortFrame = errors.New("klf: frame too short")

	// ErrLengthMismatch is returned when the length byte does not match the
	// frame size.
	ErrLengthMismatch = errors.New("klf: length field mismatch")

	// ErrPayloadTooLarge is returned when an encoded payload does not fit the
	// one-byte length field.
	ErrPayloadTooLarge = errors.New("klf: payload too large")

	// ErrPayloadLength is wrapped by decoders when a payload is shorter than
	// the fixed layout of its command.
	ErrPayloadLength = errors.New("klf: payload length mismatch")

	// ErrRecordType is wrapped by encoders handed a record of the wrong type.
	ErrRecordType = errors.New("klf: unexpected record type")

	// ErrFieldTooLong is wrapped by encoders when a string field exceeds its
	// fixed width.
	ErrFieldTooLong = errors.New("klf: field too long")
)

// ChecksumError reports a frame whose trailing XOR byte does not match.
type ChecksumError struct {
	Command Command
	Want    byte // computed over the frame
	Got     byte // carried in the frame
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("klf: checksum mismatch for %s: computed 0x%02X, frame has 0x%02X", e.Command, e.Want, e.Got)
}

// DecodeError wraps a payload decoder failure.
type DecodeError struct {
	Command Command
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("klf: decode %s: %v", e.Command, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError wraps a payload encoder failure.
type EncodeError struct {
	Command Command
	Err     error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("klf: encode %s: %v", e.Command, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

func lengthError(want, got int) error {
	return fmt.Errorf("%w: want at least %d bytes, got %d", ErrPayloadLength, want, got)
}

func recordTypeError(want string, got Record) error {
	return fmt.Errorf("%w: want %s, got %T", ErrRecordType, want, got)
}
