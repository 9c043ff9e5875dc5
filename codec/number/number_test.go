package number

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWidthRoundTrip(t *testing.T) {
	buf := WriteU32LE(nil, 0xdeadbeef)
	buf = WriteI64LE(buf, -12345)
	buf = WriteF64LE(buf, 3.5)

	cursor, u32, err := ReadU32LE(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), u32)

	cursor, i64, err := ReadI64LE(buf, cursor)
	require.NoError(t, err)
	assert.Equal(t, int64(-12345), i64)

	cursor, f64, err := ReadF64LE(buf, cursor)
	require.NoError(t, err)
	assert.Equal(t, 3.5, f64)
	assert.Equal(t, len(buf), cursor)
}

func TestReadPastEndFails(t *testing.T) {
	_, _, err := ReadU64LE([]byte{1, 2, 3}, 0)
	assert.Error(t, err)
}

func TestVarU64RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40, ^uint64(0)}
	for _, v := range cases {
		buf := EncodeVarU64(nil, v)
		_, got, err := DecodeVarU64(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestVarI64RoundTrip(t *testing.T) {
	cases := []int64{0, -1, 1, -64, 64, -1 << 40, 1 << 40}
	for _, v := range cases {
		buf := EncodeVarI64(nil, v)
		_, got, err := DecodeVarI64(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestCompactBytesRoundTrip(t *testing.T) {
	cases := [][]byte{nil, {}, []byte("pk"), make([]byte, 300)}
	for _, v := range cases {
		buf := EncodeCompactBytes(nil, v)
		_, got, err := DecodeCompactBytes(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, len(v), len(got))
	}
}

func TestDecodeCompactBytesTruncated(t *testing.T) {
	buf := EncodeVarU64(nil, 10)
	_, _, err := DecodeCompactBytes(buf, 0)
	assert.Error(t, err)
}
