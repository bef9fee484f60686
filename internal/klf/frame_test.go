package klf

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuildFrame_Concrete(t *testing.T) {
	reg := DefaultRegistry()

	got, err := BuildFrame(reg, CmdRebootReq, nil)
	if err != nil {
		t.Fatalf("BuildFrame() error = %v", err)
	}
	want := []byte{0x00, 0x03, 0x00, 0x01, 0x02}
	if !bytes.Equal(got, want) {
		t.Errorf("BuildFrame(GW_REBOOT_REQ) = % X, want % X", got, want)
	}
}

func TestBuildFrame_Layout(t *testing.T) {
	reg := DefaultRegistry()

	frame, err := BuildFrame(reg, CmdPasswordEnterReq, PasswordEnter{Password: "velux123"})
	if err != nil {
		t.Fatalf("BuildFrame() error = %v", err)
	}
	if len(frame) != passwordSize+FrameOverhead {
		t.Fatalf("frame length = %d, want %d", len(frame), passwordSize+FrameOverhead)
	}
	if frame[0] != ProtocolID {
		t.Errorf("frame[0] = 0x%02X, want 0x00", frame[0])
	}
	if int(frame[1]) != len(frame)-2 {
		t.Errorf("length byte = %d, want %d", frame[1], len(frame)-2)
	}
	if frame[2] != 0x30 || frame[3] != 0x00 {
		t.Errorf("command bytes = % X, want 30 00", frame[2:4])
	}
	if Checksum(frame) != 0 {
		t.Errorf("XOR over the whole frame = 0x%02X, want 0", Checksum(frame))
	}
}

func TestBuildFrame_EncoderErrors(t *testing.T) {
	reg := DefaultRegistry()

	_, err := BuildFrame(reg, CmdPasswordEnterReq, PasswordEnter{Password: string(bytes.Repeat([]byte("x"), 40))})
	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("BuildFrame() error = %v, want *EncodeError", err)
	}
	if !errors.Is(err, ErrFieldTooLong) {
		t.Errorf("BuildFrame() error = %v, want ErrFieldTooLong", err)
	}

	_, err = BuildFrame(reg, CmdPasswordEnterReq, SetUTC{})
	if !errors.Is(err, ErrRecordType) {
		t.Errorf("BuildFrame() with wrong record error = %v, want ErrRecordType", err)
	}
}

func TestBuildFrame_NoEncoder(t *testing.T) {
	reg := DefaultRegistry()

	// GW_GET_STATE_REQ has no payload; a stray record is ignored
	frame, err := BuildFrame(reg, CmdGetStateReq, State{})
	if err != nil {
		t.Fatalf("BuildFrame() error = %v", err)
	}
	if len(frame) != FrameOverhead {
		t.Errorf("frame length = %d, want %d", len(frame), FrameOverhead)
	}
}

func TestBuildRawFrame_TooLarge(t *testing.T) {
	_, err := BuildRawFrame(CmdGetStateReq, make([]byte, MaxPayloadSize+1))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("BuildRawFrame() error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestParseFrame(t *testing.T) {
	reg := DefaultRegistry()

	stateCfm, _ := BuildFrame(reg, CmdGetStateCfm, State{State: 2, SubState: 0x80})

	tests := []struct {
		name    string
		frame   []byte
		wantCmd Command
		wantErr error
		verify  func(t *testing.T, m *Message)
	}{
		{
			name:    "reboot request",
			frame:   []byte{0x00, 0x03, 0x00, 0x01, 0x02},
			wantCmd: CmdRebootReq,
			verify: func(t *testing.T, m *Message) {
				if len(m.Payload) != 0 || m.Record != nil {
					t.Errorf("payload = % X, record = %v, want empty", m.Payload, m.Record)
				}
			},
		},
		{
			name:    "decoded confirmation",
			frame:   stateCfm,
			wantCmd: CmdGetStateCfm,
			verify: func(t *testing.T, m *Message) {
				s, ok := m.Record.(State)
				if !ok {
					t.Fatalf("record = %T, want State", m.Record)
				}
				if s.State != 2 || s.SubState != 0x80 {
					t.Errorf("state = %+v", s)
				}
				if !m.IsConfirmation() || m.IsNotification() {
					t.Error("message kind misreported")
				}
			},
		},
		{
			name:    "unknown command",
			frame:   []byte{0x00, 0x04, 0xAB, 0xCD, 0x01, 0x63},
			wantCmd: 0xABCD,
			verify: func(t *testing.T, m *Message) {
				if m.Name() != "UNKNOWN_0xABCD" {
					t.Errorf("Name() = %q", m.Name())
				}
				if !bytes.Equal(m.Payload, []byte{0x01}) {
					t.Errorf("payload = % X", m.Payload)
				}
			},
		},
		{
			name:    "short frame",
			frame:   []byte{0x00, 0x02, 0x00, 0x01},
			wantErr: ErrShortFrame,
		},
		{
			name:    "length byte mismatch",
			frame:   []byte{0x00, 0x09, 0x00, 0x01, 0x08},
			wantCmd: CmdRebootReq,
			wantErr: ErrLengthMismatch,
		},
		{
			name:    "decoder failure",
			frame:   mustRaw(t, CmdGetStateCfm, []byte{0x02}),
			wantCmd: CmdGetStateCfm,
			wantErr: ErrPayloadLength,
			verify: func(t *testing.T, m *Message) {
				if m.Record != nil {
					t.Errorf("record = %v, want nil", m.Record)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseFrame(reg, tt.frame)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseFrame() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("ParseFrame() error = %v", err)
			}
			if m == nil {
				t.Fatal("ParseFrame() returned nil message")
			}
			if m.Command != tt.wantCmd {
				t.Errorf("Command = %s, want %s", m.Command, tt.wantCmd)
			}
			if tt.verify != nil {
				tt.verify(t, m)
			}
		})
	}
}

func TestParseFrame_DecodeErrorType(t *testing.T) {
	_, err := ParseFrame(DefaultRegistry(), mustRaw(t, CmdGetVersionCfm, []byte{1, 2}))
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if decErr.Command != CmdGetVersionCfm {
		t.Errorf("DecodeError.Command = %s", decErr.Command)
	}
}

func TestParseFrame_ChecksumFlip(t *testing.T) {
	reg := DefaultRegistry()
	frame, err := BuildFrame(reg, CmdGetProtocolVersionCfm, ProtocolVersion{Major: 3, Minor: 14})
	if err != nil {
		t.Fatal(err)
	}

	// Flipping any single bit before the checksum byte must be detected.
	for i := 0; i < len(frame)-1; i++ {
		for bit := 0; bit < 8; bit++ {
			bad := append([]byte(nil), frame...)
			bad[i] ^= 1 << bit
			m, err := ParseFrame(reg, bad)
			var csErr *ChecksumError
			if !errors.As(err, &csErr) {
				t.Fatalf("byte %d bit %d: error = %v, want *ChecksumError", i, bit, err)
			}
			if m.Record != nil {
				t.Fatalf("byte %d bit %d: record decoded despite bad checksum", i, bit)
			}
		}
	}
}

func TestParseFrame_DoesNotAliasInput(t *testing.T) {
	reg := DefaultRegistry()
	frame := mustRaw(t, 0xABCD, []byte{1, 2, 3})
	m, err := ParseFrame(reg, frame)
	if err != nil {
		t.Fatal(err)
	}
	frame[4] = 0xFF
	if m.Payload[0] != 1 {
		t.Error("Message.Payload aliases the input frame")
	}
}

func TestChecksum(t *testing.T) {
	if got := Checksum([]byte{0x00, 0x03, 0x00, 0x01}); got != 0x02 {
		t.Errorf("Checksum() = 0x%02X, want 0x02", got)
	}
	if got := Checksum(nil); got != 0 {
		t.Errorf("Checksum(nil) = 0x%02X, want 0", got)
	}
}

func mustRaw(t *testing.T, cmd Command, payload []byte) []byte {
	t.Helper()
	frame, err := BuildRawFrame(cmd, payload)
	if err != nil {
		t.Fatalf("BuildRawFrame() error = %v", err)
	}
	return frame
}
