package klf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// Position is a relative actuator position. 0x0000-0xC800 covers 0-100 % in
// steps of 1/512 %; values above carry special meanings.
type Position uint16

// Special position values
const (
	PositionMin     Position = 0x0000
	PositionMax     Position = 0xC800
	PositionTarget  Position = 0xD100 // the node's current target
	PositionCurrent Position = 0xD200 // the node's current position
	PositionDefault Position = 0xD300 // the node's default value
	PositionIgnore  Position = 0xD400 // leave the parameter untouched
	PositionUnknown Position = 0xF7FF // no feedback available

	positionUnitsPerPercent = 512
)

// ErrPercentRange is returned by PercentToPosition for values outside 0-100.
var ErrPercentRange = errors.New("klf: percent out of range")

// PercentToPosition converts a percentage to the nearest relative position.
func PercentToPosition(pct float64) (Position, error) {
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return 0, fmt.Errorf("%w: %v", ErrPercentRange, pct)
	}
	return Position(math.Round(pct * positionUnitsPerPercent)), nil
}

// IsRelative reports whether p is a plain 0-100 % position.
func (p Position) IsRelative() bool {
	return p <= PositionMax
}

// Percent returns p as a percentage. It is only meaningful when IsRelative.
func (p Position) Percent() float64 {
	return float64(p) / positionUnitsPerPercent
}

func (p Position) String() string {
	switch p {
	case PositionTarget:
		return "target"
	case PositionCurrent:
		return "current"
	case PositionDefault:
		return "default"
	case PositionIgnore:
		return "ignore"
	case PositionUnknown:
		return "unknown"
	}
	if p.IsRelative() {
		return fmt.Sprintf("%.1f%%", p.Percent())
	}
	return fmt.Sprintf("0x%04X", uint16(p))
}

// Node bit array layout: 25 bytes for 200 actuators, 1 byte for 3 beacons.
const (
	MaxActuators = 200
	MaxBeacons   = 3
	NodeSetSize  = 26
)

// NodeSet is a set of actuator and beacon indexes carried as a bit array.
type NodeSet struct {
	Actuators [MaxActuators]bool
	Beacons   [MaxBeacons]bool
}

// NodeSetOf returns a set containing the given actuator indexes. Indexes
// outside 0-199 are ignored.
func NodeSetOf(ids ...int) NodeSet {
	var s NodeSet
	for _, id := range ids {
		if id >= 0 && id < MaxActuators {
			s.Actuators[id] = true
		}
	}
	return s
}

// Nodes returns the actuator indexes in the set, ascending.
func (s NodeSet) Nodes() []int {
	var ids []int
	for i, set := range s.Actuators {
		if set {
			ids = append(ids, i)
		}
	}
	return ids
}

// Empty reports whether no actuator or beacon is set.
func (s NodeSet) Empty() bool {
	return len(s.Nodes()) == 0 && s.Beacons == [MaxBeacons]bool{}
}

func (s NodeSet) put(dst []byte) {
	for i := 0; i < MaxActuators; i++ {
		if s.Actuators[i] {
			dst[i/8] |= 1 << (i % 8)
		}
	}
	for i := 0; i < MaxBeacons; i++ {
		if s.Beacons[i] {
			dst[25] |= 1 << i
		}
	}
}

func readNodeSet(src []byte) NodeSet {
	var s NodeSet
	for i := 0; i < MaxActuators; i++ {
		s.Actuators[i] = src[i/8]&(1<<(i%8)) != 0
	}
	for i := 0; i < MaxBeacons; i++ {
		s.Beacons[i] = src[25]&(1<<i) != 0
	}
	return s
}

// putString writes s into the fixed-width field dst, zero padded. The last
// byte of the field is always a terminating zero.
func putString(dst []byte, s string) error {
	if len(s) >= len(dst) {
		return fmt.Errorf("%w: %d bytes, field holds %d", ErrFieldTooLong, len(s), len(dst)-1)
	}
	n := copy(dst, s)
	clear(dst[n:])
	return nil
}

// readString returns the text of a zero-terminated fixed-width field.
// Invalid UTF-8 is replaced rather than rejected.
func readString(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		src = src[:i]
	}
	if utf8.Valid(src) {
		return string(src)
	}
	return string(bytes.ToValidUTF8(src, []byte("�")))
}

// readUnix decodes a big endian UNIX timestamp. Zero means not set.
func readUnix(src []byte) time.Time {
	sec := binary.BigEndian.Uint32(src)
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(int64(sec), 0).UTC()
}

func putUnix(dst []byte, t time.Time) {
	if t.IsZero() {
		binary.BigEndian.PutUint32(dst, 0)
		return
	}
	binary.BigEndian.PutUint32(dst, uint32(t.Unix()))
}

func needLen(b []byte, n int) error {
	if len(b) < n {
		return lengthError(n, len(b))
	}
	return nil
}
