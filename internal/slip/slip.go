// Package slip implements the byte-stuffing framing used on the gateway
// connection (RFC 1055 style SLIP with a leading and trailing delimiter).
//
// Every wire packet starts and ends with End. Inside the packet a literal End
// byte is sent as Esc EscEnd and a literal Esc byte as Esc EscEsc, so the
// delimiter never appears unescaped between the two boundaries.
package slip

import (
	"errors"
	"fmt"
)

// Framing bytes
const (
	End    = 0xC0 // packet delimiter
	Esc    = 0xDB // escape introducer
	EscEnd = 0xDC // escaped End
	EscEsc = 0xDD // escaped Esc
)

// Sentinel framing errors, matched with errors.Is against a *FramingError.
var (
	ErrShortPacket   = errors.New("slip: packet too short")
	ErrMissingStart  = errors.New("slip: packet does not start with END")
	ErrMissingEnd    = errors.New("slip: packet does not end with END")
	ErrUnescapedEnd  = errors.New("slip: unescaped END inside packet")
	ErrPacketTooLong = errors.New("slip: packet exceeds maximum size")
)

// FramingError describes a malformed wire packet.
type FramingError struct {
	Reason error // one of the sentinel errors above
	Offset int   // byte offset where the problem was detected
	Length int   // length of the offending packet
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("%v (offset %d, length %d)", e.Reason, e.Offset, e.Length)
}

func (e *FramingError) Unwrap() error {
	return e.Reason
}

// Pack wraps frame in delimiters and escapes every End and Esc byte in it.
// The input is never modified.
func Pack(frame []byte) []byte {
	out := make([]byte, 0, len(frame)+2+escapeCount(frame))
	out = append(out, End)
	for _, b := range frame {
		switch b {
		case End:
			out = append(out, Esc, EscEnd)
		case Esc:
			out = append(out, Esc, EscEsc)
		default:
			out = append(out, b)
		}
	}
	return append(out, End)
}

// Unpack strips the delimiters from a single wire packet and reverses the
// escape sequences. The returned frame is a fresh buffer.
//
// An Esc followed by a byte other than EscEnd or EscEsc is kept as a literal
// Esc; the following byte is then processed normally.
func Unpack(packet []byte) ([]byte, error) {
	if len(packet) < 2 {
		return nil, &FramingError{Reason: ErrShortPacket, Offset: 0, Length: len(packet)}
	}
	if packet[0] != End {
		return nil, &FramingError{Reason: ErrMissingStart, Offset: 0, Length: len(packet)}
	}
	last := len(packet) - 1
	if packet[last] != End {
		return nil, &FramingError{Reason: ErrMissingEnd, Offset: last, Length: len(packet)}
	}

	frame := make([]byte, 0, len(packet)-2)
	for i := 1; i < last; i++ {
		b := packet[i]
		switch b {
		case End:
			return nil, &FramingError{Reason: ErrUnescapedEnd, Offset: i, Length: len(packet)}
		case Esc:
			if i+1 < last {
				switch packet[i+1] {
				case EscEnd:
					frame = append(frame, End)
					i++
					continue
				case EscEsc:
					frame = append(frame, Esc)
					i++
					continue
				}
			}
			frame = append(frame, Esc)
		default:
			frame = append(frame, b)
		}
	}
	return frame, nil
}

func escapeCount(frame []byte) int {
	n := 0
	for _, b := range frame {
		if b == End || b == Esc {
			n++
		}
	}
	return n
}
