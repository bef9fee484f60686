package slip

// MaxPacketSize bounds the stuffed body buffered by a Decoder. A gateway frame
// is at most 257 bytes; fully stuffed that doubles, plus two delimiters.
const MaxPacketSize = 2*257 + 2

// Decoder splits a byte stream into delimited wire packets.
//
// TLS records do not line up with packets: one read may carry half a packet
// or several packets at once. Feed keeps the incomplete tail between calls.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	buf     []byte
	maxSize int
	dropped int
}

// NewDecoder returns a Decoder with the default size limit.
func NewDecoder() *Decoder {
	return &Decoder{maxSize: MaxPacketSize}
}

// Feed appends p to the internal buffer and returns every complete wire
// packet (delimiters included) now available, in stream order.
//
// Bytes before the first End are noise and are discarded. Two adjacent End
// bytes are a boundary between packets, never an empty packet.
func (d *Decoder) Feed(p []byte) [][]byte {
	if d.maxSize == 0 {
		d.maxSize = MaxPacketSize
	}
	d.buf = append(d.buf, p...)

	var packets [][]byte
	for {
		start := indexEnd(d.buf, 0)
		if start < 0 {
			d.dropped += len(d.buf)
			d.buf = d.buf[:0]
			break
		}
		if start > 0 {
			d.dropped += start
			d.buf = d.buf[start:]
		}

		stop := indexEnd(d.buf, 1)
		if stop < 0 {
			if len(d.buf) > d.maxSize {
				d.dropped += len(d.buf)
				d.buf = d.buf[:0]
			}
			break
		}
		if stop == 1 {
			// END END: the first delimiter closed nothing.
			d.buf = d.buf[1:]
			continue
		}

		packet := make([]byte, stop+1)
		copy(packet, d.buf[:stop+1])
		packets = append(packets, packet)
		d.buf = d.buf[stop+1:]
	}

	// Compact so the backing array does not grow without bound.
	if len(d.buf) == 0 {
		d.buf = nil
	} else if cap(d.buf) > 4*d.maxSize {
		d.buf = append([]byte(nil), d.buf...)
	}
	return packets
}

// Buffered reports how many bytes of an incomplete packet are held.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Dropped reports how many noise or oversized bytes have been discarded.
func (d *Decoder) Dropped() int {
	return d.dropped
}

// Reset discards any buffered bytes.
func (d *Decoder) Reset() {
	d.buf = nil
}

func indexEnd(b []byte, from int) int {
	for i := from; i < len(b); i++ {
		if b[i] == End {
			return i
		}
	}
	return -1
}
