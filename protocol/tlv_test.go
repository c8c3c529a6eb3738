package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendFormats(t *testing.T) {
	buf := Append(nil, 'A', []byte{'A'})
	buf = Append(buf, 'b', []byte{'B', 'B'})
	correct := []byte{'a', 1, 'A', '2', 'B', 'B'}
	assert.Equal(t, correct, buf)

	var c256 [256]byte
	for n := range c256 {
		c256[n] = 'c'
	}
	buf = Append(buf, 'C', c256[:])
	assert.Equal(t, len(correct)+5+len(c256), len(buf))
	assert.Equal(t, byte('C'), buf[len(correct)])

	lit, body, buf := TakeAny(buf)
	assert.Equal(t, byte('A'), lit)
	assert.Equal(t, []byte{'A'}, body)

	body, buf = Take('B', buf)
	assert.Equal(t, []byte{'B', 'B'}, body)

	body, rest := Take('C', buf)
	assert.Equal(t, c256[:], body)
	assert.Empty(t, rest)
}

func TestTinyLosesTypeButParsesPositionally(t *testing.T) {
	rec := Record('x', []byte("12"))
	assert.Equal(t, []byte{'2', '1', '2'}, rec)
	body, rest := Take('Q', rec)
	assert.Equal(t, []byte("12"), body)
	assert.Empty(t, rest)
}

func TestTakeMismatch(t *testing.T) {
	rec := Record('A', bytes.Repeat([]byte{'x'}, 20))
	body, rest := Take('B', rec)
	assert.Nil(t, body)
	assert.Nil(t, rest)
}

func TestTakeWary(t *testing.T) {
	rec := Append(nil, 'm', []byte("hello, tlv"))
	body, rest, err := TakeWary('M', rec)
	require.NoError(t, err)
	assert.Equal(t, "hello, tlv", string(body))
	assert.Empty(t, rest)

	_, _, err = TakeWary('M', rec[:3])
	assert.ErrorIs(t, err, ErrIncomplete)

	_, _, err = TakeWary('M', []byte{0xff, 0x01})
	assert.ErrorIs(t, err, ErrBadRecord)

	_, _, err = TakeWary('X', rec)
	assert.ErrorIs(t, err, ErrBadRecord)
}

func TestSplit(t *testing.T) {
	buf := Concat(
		Record('A', []byte("one")),
		Record('b', []byte("two")),
		Record('C', bytes.Repeat([]byte{'y'}, 300)),
	)
	recs, err := Split(bytes.NewBuffer(buf))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, byte('a'), recs[0][0])

	_, err = Split(bytes.NewBuffer(buf[:len(buf)-5]))
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestZipUint64RoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 9, 255, 256, 0xffff, 0x10000,
		0xdeadbeef, 1700000000000, ^uint64(0)} {
		zip := ZipUint64(n)
		assert.LessOrEqual(t, len(zip), 8)
		assert.Equal(t, n, UnzipUint64(zip))
	}
	assert.Empty(t, ZipUint64(0))
}
