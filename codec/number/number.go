// Package number provides the little-endian fixed-width, varint and
// compact-bytes primitives the json, sqltime and lock codecs are built
// on. It follows the teacher repo's append-style buffer convention
// (util/buffer_writer.go, util/buffer_reader.go): writers take and
// return a growing []byte, readers take a cursor and return the
// advanced cursor alongside the decoded value.
package number

import (
	"math"

	"github.com/pingcap/errors"
)

// ErrBufferTooShort is returned whenever a reader runs past the end of
// the supplied slice.
var ErrBufferTooShort = errors.New("number: buffer too short")

// --- fixed width little-endian ---

func WriteU16LE(buf []byte, v uint16) []byte {
	return append(buf, byte(v), byte(v>>8))
}

func WriteI16LE(buf []byte, v int16) []byte {
	return WriteU16LE(buf, uint16(v))
}

func WriteU32LE(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func WriteI32LE(buf []byte, v int32) []byte {
	return WriteU32LE(buf, uint32(v))
}

func WriteU64LE(buf []byte, v uint64) []byte {
	return append(buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

func WriteI64LE(buf []byte, v int64) []byte {
	return WriteU64LE(buf, uint64(v))
}

func WriteF64LE(buf []byte, v float64) []byte {
	return WriteU64LE(buf, math.Float64bits(v))
}

func ReadU16LE(b []byte, cursor int) (int, uint16, error) {
	if cursor+2 > len(b) {
		return cursor, 0, errors.Trace(ErrBufferTooShort)
	}
	return cursor + 2, uint16(b[cursor]) | uint16(b[cursor+1])<<8, nil
}

func ReadI16LE(b []byte, cursor int) (int, int16, error) {
	c, v, err := ReadU16LE(b, cursor)
	return c, int16(v), err
}

func ReadU32LE(b []byte, cursor int) (int, uint32, error) {
	if cursor+4 > len(b) {
		return cursor, 0, errors.Trace(ErrBufferTooShort)
	}
	v := uint32(b[cursor]) | uint32(b[cursor+1])<<8 | uint32(b[cursor+2])<<16 | uint32(b[cursor+3])<<24
	return cursor + 4, v, nil
}

func ReadI32LE(b []byte, cursor int) (int, int32, error) {
	c, v, err := ReadU32LE(b, cursor)
	return c, int32(v), err
}

func ReadU64LE(b []byte, cursor int) (int, uint64, error) {
	if cursor+8 > len(b) {
		return cursor, 0, errors.Trace(ErrBufferTooShort)
	}
	v := uint64(b[cursor]) | uint64(b[cursor+1])<<8 | uint64(b[cursor+2])<<16 | uint64(b[cursor+3])<<24 |
		uint64(b[cursor+4])<<32 | uint64(b[cursor+5])<<40 | uint64(b[cursor+6])<<48 | uint64(b[cursor+7])<<56
	return cursor + 8, v, nil
}

func ReadI64LE(b []byte, cursor int) (int, int64, error) {
	c, v, err := ReadU64LE(b, cursor)
	return c, int64(v), err
}

func ReadF64LE(b []byte, cursor int) (int, float64, error) {
	c, v, err := ReadU64LE(b, cursor)
	return c, math.Float64frombits(v), err
}

// --- varint (LEB128-style, MSB continuation bit) ---

func EncodeVarU64(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func DecodeVarU64(b []byte, cursor int) (int, uint64, error) {
	var v uint64
	var shift uint
	for {
		if cursor >= len(b) {
			return cursor, 0, errors.Trace(ErrBufferTooShort)
		}
		c := b[cursor]
		cursor++
		v |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return cursor, v, nil
		}
		shift += 7
		if shift >= 64 {
			return cursor, 0, errors.New("number: varint overflows uint64")
		}
	}
}

// EncodeVarI64 zig-zag encodes a signed varint so small negative
// magnitudes stay compact.
func EncodeVarI64(buf []byte, v int64) []byte {
	return EncodeVarU64(buf, uint64(v<<1)^uint64(v>>63))
}

func DecodeVarI64(b []byte, cursor int) (int, int64, error) {
	cursor, u, err := DecodeVarU64(b, cursor)
	if err != nil {
		return cursor, 0, err
	}
	return cursor, int64(u>>1) ^ -int64(u&1), nil
}

// --- compact bytes: varint length prefix followed by raw bytes ---

func EncodeCompactBytes(buf []byte, data []byte) []byte {
	buf = EncodeVarU64(buf, uint64(len(data)))
	return append(buf, data...)
}

func DecodeCompactBytes(b []byte, cursor int) (int, []byte, error) {
	cursor, n, err := DecodeVarU64(b, cursor)
	if err != nil {
		return cursor, nil, err
	}
	end := cursor + int(n)
	if end < cursor || end > len(b) {
		return cursor, nil, errors.Trace(ErrBufferTooShort)
	}
	return end, b[cursor:end], nil
}
