package sqltime

import (
	stdtime "time"

	"github.com/zhukovaskychina/tidb-codec-core/codec/evalctx"
	"github.com/zhukovaskychina/tidb-codec-core/codec/number"
)

// ToUTCUnixSeconds interprets t's wall-clock components in ctx.Location
// and returns the corresponding Unix epoch second. Used by Validate to
// bound Timestamp values to [0, 2^31-1] (spec.md §3.2, §4.2).
func ToUTCUnixSeconds(ctx *evalctx.Context, t Time) (int64, bool) {
	loc := ctx.Location
	if loc == nil {
		loc = stdtime.UTC
	}
	tm := stdtime.Date(int(t.Year()), stdtime.Month(t.Month()), int(t.Day()),
		int(t.Hour()), int(t.Minute()), int(t.Second()), int(t.Micro())*1000, loc)
	return tm.Unix(), true
}

// ToChunkUint64 returns the raw packed bitfield (spec.md §4.2 "Chunk
// u64"): the wire form is this value written little-endian.
func (t Time) ToChunkUint64() uint64 { return t.core }

// FromChunkUint64 is the inverse of ToChunkUint64.
func FromChunkUint64(v uint64) Time { return Time{core: v} }

// EncodeChunk appends the 8-byte little-endian chunk form.
func EncodeChunk(buf []byte, t Time) []byte {
	return number.WriteU64LE(buf, t.ToChunkUint64())
}

// DecodeChunk reads the 8-byte little-endian chunk form.
func DecodeChunk(b []byte, cursor int) (int, Time, error) {
	cursor, v, err := number.ReadU64LE(b, cursor)
	if err != nil {
		return cursor, Time{}, err
	}
	return cursor, FromChunkUint64(v), nil
}

// ToSortableUint64 packs t into the MVCC-key-friendly ordering from
// spec.md §4.2:
//
//	((((y*13 + m) << 5 | d) << 17 | h<<12 | min<<6 | s) << 24) | µs
//
// Timestamp values are first converted to UTC through ctx.Location.
func ToSortableUint64(ctx *evalctx.Context, t Time) uint64 {
	y, mo, d, h, mi, s, micro := t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Micro()
	if t.Type() == TypeTimestamp {
		loc := ctx.Location
		if loc == nil {
			loc = stdtime.UTC
		}
		tm := stdtime.Date(int(y), stdtime.Month(mo), int(d), int(h), int(mi), int(s), int(micro)*1000, loc).UTC()
		y, mo, d = uint32(tm.Year()), uint32(tm.Month()), uint32(tm.Day())
		h, mi, s = uint32(tm.Hour()), uint32(tm.Minute()), uint32(tm.Second())
		micro = uint32(tm.Nanosecond() / 1000)
	}
	v := uint64(y)*13 + uint64(mo)
	v = (v << 5) | uint64(d)
	v = (v << 17) | (uint64(h)<<12 | uint64(mi)<<6 | uint64(s))
	v = (v << 24) | uint64(micro)
	return v
}

// FromSortableUint64 is the inverse of ToSortableUint64. For
// Timestamp it interprets the decoded components as UTC and converts
// them back into ctx.Location.
func FromSortableUint64(ctx *evalctx.Context, v uint64, tp Type, fsp int8) Time {
	micro := uint32(v & 0xffffff)
	rest := v >> 24
	s := uint32(rest & 0x3f)
	mi := uint32((rest >> 6) & 0x3f)
	h := uint32((rest >> 12) & 0x1f)
	rest >>= 17
	d := uint32(rest & 0x1f)
	rest >>= 5
	mo := uint32(rest % 13)
	y := uint32(rest / 13)

	if tp == TypeTimestamp {
		loc := ctx.Location
		if loc == nil {
			loc = stdtime.UTC
		}
		tm := stdtime.Date(int(y), stdtime.Month(mo), int(d), int(h), int(mi), int(s), int(micro)*1000, stdtime.UTC).In(loc)
		y, mo, d = uint32(tm.Year()), uint32(tm.Month()), uint32(tm.Day())
		h, mi, s = uint32(tm.Hour()), uint32(tm.Minute()), uint32(tm.Second())
		micro = uint32(tm.Nanosecond() / 1000)
	}
	return New(y, mo, d, h, mi, s, micro, tp, fsp)
}

// Duration is the TIME-family value (spec.md §3.1's "Time (duration)"
// JSON payload / §6.3's 12-byte encoding): a signed nanosecond count
// plus its fsp.
type Duration struct {
	Nanos int64
	Fsp   int8
}

// EncodeDuration appends the 8-byte signed-nanoseconds + 4-byte fsp
// little-endian wire form.
func EncodeDuration(buf []byte, d Duration) []byte {
	buf = number.WriteI64LE(buf, d.Nanos)
	return number.WriteU32LE(buf, uint32(d.Fsp))
}

// DecodeDuration is the inverse of EncodeDuration.
func DecodeDuration(b []byte, cursor int) (int, Duration, error) {
	cursor, nanos, err := number.ReadI64LE(b, cursor)
	if err != nil {
		return cursor, Duration{}, err
	}
	cursor, fsp, err := number.ReadU32LE(b, cursor)
	if err != nil {
		return cursor, Duration{}, err
	}
	return cursor, Duration{Nanos: nanos, Fsp: int8(fsp)}, nil
}

func (d Duration) String() string {
	neg := ""
	n := d.Nanos
	if n < 0 {
		neg = "-"
		n = -n
	}
	total := n / int64(stdtime.Second)
	h := total / 3600
	mi := (total % 3600) / 60
	s := total % 60
	out := neg
	if h != 0 {
		out += padInt(int(h), 2) + ":"
	} else {
		out += "00:"
	}
	out += padInt(int(mi), 2) + ":" + padInt(int(s), 2)
	if d.Fsp > 0 {
		frac := (n % int64(stdtime.Second)) / int64(pow10u64(uint32(9-d.Fsp)))
		out += "." + padInt(int(frac), int(d.Fsp))
	}
	return out
}

func padInt(v, width int) string {
	s := itoa(v)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var digits [20]byte
	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	s := string(digits[i:])
	if neg {
		s = "-" + s
	}
	return s
}
