// Package protocol implements the compact TLV (type-length-value) record
// format statebox containers are shipped in.
//
// Record types are single letters A-Z. Three encodings are chosen
// automatically by body size:
//
//   - tiny, 1 byte header: ['0'+len] for bodies of 0..9 bytes, only when
//     the record is written with a lowercase type (the type letter itself
//     is not stored);
//   - short, 2 byte header: [lowercase type, len] for bodies up to 255
//     bytes;
//   - long, 5 byte header: [uppercase type, 4-byte little-endian len]
//     for anything larger.
//
// Take reads trusted data and signals problems with nil returns;
// TakeWary reads untrusted data and returns explicit errors.
package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const caseBit byte = 'a' - 'A'

var (
	ErrIncomplete = errors.New("protocol: incomplete data")
	ErrBadRecord  = errors.New("protocol: bad TLV record")
)

// ProbeHeader inspects a record header without consuming it. lit is the
// canonical (uppercase) type, '0' for tiny records, '-' for garbage and
// 0 for data too short to tell.
func ProbeHeader(data []byte) (lit byte, hdrlen, bodylen int) {
	if len(data) == 0 {
		return 0, 0, 0
	}
	b := data[0]
	switch {
	case b >= '0' && b <= '9':
		return '0', 1, int(b - '0')
	case b >= 'a' && b <= 'z':
		if len(data) < 2 {
			return 0, 0, 0
		}
		return b - caseBit, 2, int(data[1])
	case b >= 'A' && b <= 'Z':
		if len(data) < 5 {
			return 0, 0, 0
		}
		bl := binary.LittleEndian.Uint32(data[1:5])
		if bl > 0x7fffffff {
			return '-', 0, 0
		}
		return b, 5, int(bl)
	default:
		return '-', 0, 0
	}
}

// AppendHeader writes a record header for a body of bodylen bytes.
// A lowercase lit permits the tiny encoding for small bodies.
func AppendHeader(into []byte, lit byte, bodylen int) []byte {
	canon := lit &^ caseBit
	if canon < 'A' || canon > 'Z' {
		panic("TLV record types are A..Z")
	}
	switch {
	case bodylen < 10 && lit&caseBit != 0:
		return append(into, byte('0'+bodylen))
	case bodylen <= 0xff:
		return append(into, canon|caseBit, byte(bodylen))
	case bodylen <= 0x7fffffff:
		into = append(into, canon)
		return binary.LittleEndian.AppendUint32(into, uint32(bodylen))
	default:
		panic("oversized TLV record")
	}
}

// Append appends a complete record to the buffer.
func Append(into []byte, lit byte, body ...[]byte) []byte {
	total := 0
	for _, b := range body {
		total += len(b)
	}
	into = AppendHeader(into, lit, total)
	for _, b := range body {
		into = append(into, b...)
	}
	return into
}

// Record builds a complete record in a fresh buffer.
func Record(lit byte, body ...[]byte) []byte {
	return Append(make([]byte, 0, 5), lit, body...)
}

// Take reads a record of the given type from trusted data. On a type
// mismatch body is nil; on incomplete data body is nil and rest is the
// original buffer. Tiny records match any requested type, so parsing is
// positional.
func Take(lit byte, data []byte) (body, rest []byte) {
	flit, hdrlen, bodylen := ProbeHeader(data)
	if flit == 0 || hdrlen+bodylen > len(data) {
		return nil, data
	}
	if flit != lit && flit != '0' {
		return nil, nil
	}
	return data[hdrlen : hdrlen+bodylen], data[hdrlen+bodylen:]
}

// TakeAny reads whatever record comes next from trusted data.
func TakeAny(data []byte) (lit byte, body, rest []byte) {
	if len(data) == 0 {
		return 0, nil, nil
	}
	lit = data[0] &^ caseBit
	body, rest = Take(lit, data)
	return
}

// TakeWary reads a record of the given type from untrusted data.
func TakeWary(lit byte, data []byte) (body, rest []byte, err error) {
	flit, hdrlen, bodylen := ProbeHeader(data)
	if flit == '-' {
		return nil, data, ErrBadRecord
	}
	if flit == 0 || hdrlen+bodylen > len(data) {
		return nil, data, ErrIncomplete
	}
	if flit != lit && flit != '0' {
		return nil, nil, ErrBadRecord
	}
	return data[hdrlen : hdrlen+bodylen], data[hdrlen+bodylen:], nil
}

// Split cuts a buffer into whole records, headers included.
func Split(data *bytes.Buffer) (recs [][]byte, err error) {
	for data.Len() > 0 {
		lit, hdrlen, bodylen := ProbeHeader(data.Bytes())
		if lit == '-' {
			return recs, ErrBadRecord
		}
		if lit == 0 || hdrlen+bodylen > data.Len() {
			return recs, ErrIncomplete
		}
		rec := make([]byte, hdrlen+bodylen)
		if _, err = data.Read(rec); err != nil {
			return
		}
		recs = append(recs, rec)
	}
	return
}

// Concat glues byte slices with a single allocation.
func Concat(chunks ...[]byte) []byte {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	ret := make([]byte, 0, total)
	for _, c := range chunks {
		ret = append(ret, c...)
	}
	return ret
}
