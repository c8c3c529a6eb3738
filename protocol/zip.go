package protocol

import "encoding/binary"

// ZipUint64 encodes n little-endian with trailing zero bytes trimmed, so
// small numbers (and most millisecond deltas) stay short on the wire.
func ZipUint64(n uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	l := 8
	for l > 0 && buf[l-1] == 0 {
		l--
	}
	return buf[:l]
}

// UnzipUint64 reverses ZipUint64. Inputs longer than 8 bytes are
// truncated to the low 8.
func UnzipUint64(zip []byte) (n uint64) {
	if len(zip) > 8 {
		zip = zip[:8]
	}
	var buf [8]byte
	copy(buf[:], zip)
	return binary.LittleEndian.Uint64(buf[:])
}
