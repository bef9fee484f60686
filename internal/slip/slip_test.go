package slip

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

func TestPack(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		want  []byte
	}{
		{
			name:  "empty frame",
			frame: []byte{},
			want:  []byte{0xC0, 0xC0},
		},
		{
			name:  "no special bytes",
			frame: []byte{0x00, 0x03, 0x00, 0x01, 0x02},
			want:  []byte{0xC0, 0x00, 0x03, 0x00, 0x01, 0x02, 0xC0},
		},
		{
			name:  "end byte is escaped",
			frame: []byte{0x01, 0xC0, 0x02},
			want:  []byte{0xC0, 0x01, 0xDB, 0xDC, 0x02, 0xC0},
		},
		{
			name:  "esc byte is escaped",
			frame: []byte{0xDB},
			want:  []byte{0xC0, 0xDB, 0xDD, 0xC0},
		},
		{
			name:  "escape-like sequence in data",
			frame: []byte{0xDB, 0xDC, 0xC0, 0xDD},
			want:  []byte{0xC0, 0xDB, 0xDD, 0xDC, 0xDB, 0xDC, 0xDD, 0xC0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pack(tt.frame)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Pack(% X) = % X, want % X", tt.frame, got, tt.want)
			}
		})
	}
}

func TestPack_DoesNotModifyInput(t *testing.T) {
	frame := []byte{0xC0, 0xDB, 0x01}
	orig := append([]byte(nil), frame...)
	Pack(frame)
	if !bytes.Equal(frame, orig) {
		t.Errorf("input modified: % X, want % X", frame, orig)
	}
}

func TestUnpack(t *testing.T) {
	tests := []struct {
		name    string
		packet  []byte
		want    []byte
		wantErr error
	}{
		{
			name:   "concrete frame",
			packet: []byte{0xC0, 0x00, 0x03, 0x00, 0x01, 0x02, 0xC0},
			want:   []byte{0x00, 0x03, 0x00, 0x01, 0x02},
		},
		{
			name:   "escaped end",
			packet: []byte{0xC0, 0xDB, 0xDC, 0xC0},
			want:   []byte{0xC0},
		},
		{
			name:   "escaped esc",
			packet: []byte{0xC0, 0xDB, 0xDD, 0xC0},
			want:   []byte{0xDB},
		},
		{
			name:   "empty body",
			packet: []byte{0xC0, 0xC0},
			want:   []byte{},
		},
		{
			name:   "dangling escape is literal",
			packet: []byte{0xC0, 0xDB, 0x01, 0xC0},
			want:   []byte{0xDB, 0x01},
		},
		{
			name:   "escape before closing delimiter is literal",
			packet: []byte{0xC0, 0x01, 0xDB, 0xC0},
			want:   []byte{0x01, 0xDB},
		},
		{
			name:    "missing leading end",
			packet:  []byte{0x00, 0x01, 0xC0},
			wantErr: ErrMissingStart,
		},
		{
			name:    "missing trailing end",
			packet:  []byte{0xC0, 0x00, 0x01},
			wantErr: ErrMissingEnd,
		},
		{
			name:    "unescaped end inside",
			packet:  []byte{0xC0, 0x01, 0xC0, 0x02, 0xC0},
			wantErr: ErrUnescapedEnd,
		},
		{
			name:    "single byte",
			packet:  []byte{0xC0},
			wantErr: ErrShortPacket,
		},
		{
			name:    "nil packet",
			packet:  nil,
			wantErr: ErrShortPacket,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unpack(tt.packet)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Unpack() error = %v, want %v", err, tt.wantErr)
				}
				var fe *FramingError
				if !errors.As(err, &fe) {
					t.Fatalf("Unpack() error is %T, want *FramingError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unpack() unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Unpack() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestUnpack_DoesNotModifyInput(t *testing.T) {
	packet := []byte{0xC0, 0xDB, 0xDC, 0xDB, 0xDD, 0xC0}
	orig := append([]byte(nil), packet...)
	if _, err := Unpack(packet); err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	if !bytes.Equal(packet, orig) {
		t.Errorf("input modified: % X, want % X", packet, orig)
	}
}

func TestUnpack_ErrorOffset(t *testing.T) {
	_, err := Unpack([]byte{0xC0, 0x01, 0x02, 0xC0, 0x03, 0xC0})
	var fe *FramingError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FramingError", err)
	}
	if fe.Offset != 3 {
		t.Errorf("Offset = %d, want 3", fe.Offset)
	}
	if fe.Length != 6 {
		t.Errorf("Length = %d, want 6", fe.Length)
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	inputs := [][]byte{
		{},
		{0xC0},
		{0xDB},
		{0xC0, 0xC0, 0xDB, 0xDB},
		{0xDB, 0xDC},
		{0xDB, 0xDD},
	}
	for i := 0; i < 200; i++ {
		n := rng.Intn(300)
		b := make([]byte, n)
		for j := range b {
			// Bias towards the special bytes.
			switch rng.Intn(4) {
			case 0:
				b[j] = End
			case 1:
				b[j] = Esc
			default:
				b[j] = byte(rng.Intn(256))
			}
		}
		inputs = append(inputs, b)
	}

	for _, in := range inputs {
		packed := Pack(in)
		if packed[0] != End || packed[len(packed)-1] != End {
			t.Fatalf("Pack(% X) not delimited: % X", in, packed)
		}
		if bytes.IndexByte(packed[1:len(packed)-1], End) >= 0 {
			t.Fatalf("Pack(% X) contains unescaped END: % X", in, packed)
		}
		out, err := Unpack(packed)
		if err != nil {
			t.Fatalf("Unpack(Pack(% X)) error: %v", in, err)
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("round trip mismatch: got % X, want % X", out, in)
		}
	}
}

func BenchmarkPack(b *testing.B) {
	frame := bytes.Repeat([]byte{0x00, 0xC0, 0x12, 0xDB}, 32)
	for i := 0; i < b.N; i++ {
		Pack(frame)
	}
}

func BenchmarkUnpack(b *testing.B) {
	packet := Pack(bytes.Repeat([]byte{0x00, 0xC0, 0x12, 0xDB}, 32))
	for i := 0; i < b.N; i++ {
		_, _ = Unpack(packet)
	}
}
