package klf

import (
	"encoding/binary"
	"fmt"
)

// Frame layout constants
const (
	HeaderSize     = 4   // ID + length + 2-byte command
	FrameOverhead  = 5   // header + checksum
	MaxPayloadSize = 250 // largest payload the gateway accepts
	ProtocolID     = 0x00
)

// Message is a parsed inbound or outbound frame.
type Message struct {
	ID      byte
	Command Command
	Payload []byte // raw payload bytes, checksum excluded
	Record  Record // decoded payload, nil when not decoded
}

// Name returns the protocol name of the message command.
func (m *Message) Name() string {
	return m.Command.String()
}

// IsNotification reports whether the message is an unsolicited event.
func (m *Message) IsNotification() bool {
	return m.Command.Kind() == KindNotify
}

// IsConfirmation reports whether the message is a request reply.
func (m *Message) IsConfirmation() bool {
	return m.Command.Kind() == KindConfirm
}

// Decoded reports whether Record holds a decoded payload.
func (m *Message) Decoded() bool {
	return m.Record != nil
}

func (m *Message) String() string {
	if m.Record != nil {
		return fmt.Sprintf("%s %+v", m.Command, m.Record)
	}
	return fmt.Sprintf("%s [% X]", m.Command, m.Payload)
}

// Checksum returns the XOR of all bytes in b.
func Checksum(b []byte) byte {
	var cs byte
	for _, v := range b {
		cs ^= v
	}
	return cs
}

// BuildFrame encodes rec with the encoder registered for cmd and wraps it in
// the frame envelope:
//
//	[0x00][total-2][cmd hi][cmd lo][payload...][xor of preceding bytes]
//
// Commands without an encoder, or a nil rec, produce an empty payload.
func BuildFrame(reg *Registry, cmd Command, rec Record) ([]byte, error) {
	var payload []byte
	if rec != nil {
		if enc, ok := reg.Encoder(cmd); ok {
			var err error
			payload, err = enc(rec)
			if err != nil {
				return nil, &EncodeError{Command: cmd, Err: err}
			}
		}
	}
	return BuildRawFrame(cmd, payload)
}

// BuildRawFrame wraps an already encoded payload in the frame envelope.
func BuildRawFrame(cmd Command, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %s payload is %d bytes, max %d", ErrPayloadTooLarge, cmd, len(payload), MaxPayloadSize)
	}

	frame := make([]byte, len(payload)+FrameOverhead)
	frame[0] = ProtocolID
	frame[1] = byte(len(frame) - 2)
	binary.BigEndian.PutUint16(frame[2:4], uint16(cmd))
	copy(frame[HeaderSize:], payload)
	frame[len(frame)-1] = Checksum(frame[:len(frame)-1])
	return frame, nil
}

// ParseFrame extracts the envelope of b and decodes its payload.
//
// Problems with a single frame never panic. The returned error classifies
// them while the Message still carries what could be extracted:
//   - len(b) <= 4: an empty Message and ErrShortFrame
//   - checksum mismatch: envelope fields, no Record, *ChecksumError
//   - length byte disagrees with the frame: envelope fields, no Record,
//     ErrLengthMismatch
//   - decoder failure: envelope fields, no Record, *DecodeError
//
// A command without a registered decoder is not an error; the Message is
// returned with a nil Record.
func ParseFrame(reg *Registry, b []byte) (*Message, error) {
	if len(b) <= HeaderSize {
		return &Message{}, ErrShortFrame
	}

	last := len(b) - 1
	msg := &Message{
		ID:      b[0],
		Command: Command(binary.BigEndian.Uint16(b[2:4])),
	}
	if last > HeaderSize {
		msg.Payload = append([]byte(nil), b[HeaderSize:last]...)
	}

	if cs := Checksum(b[:last]); cs != b[last] {
		return msg, &ChecksumError{Command: msg.Command, Want: cs, Got: b[last]}
	}

	if int(b[1]) != len(b)-2 {
		return msg, fmt.Errorf("%w: %s declares %d bytes, frame carries %d", ErrLengthMismatch, msg.Command, b[1], len(b)-2)
	}

	if len(b) <= FrameOverhead {
		return msg, nil
	}
	dec, ok := reg.Decoder(msg.Command)
	if !ok {
		return msg, nil
	}
	rec, err := dec(msg.Payload)
	if err != nil {
		return msg, &DecodeError{Command: msg.Command, Err: err}
	}
	msg.Record = rec
	return msg, nil
}
