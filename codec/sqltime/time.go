// Package sqltime implements the DATE/DATETIME/TIMESTAMP codec: packed
// 64-bit representations (spec.md §3.2), parsing from strings/ints/
// floats/decimals, DATE_FORMAT/STR_TO_DATE, arithmetic and SQL-mode
// aware validation (spec.md §4.2). It follows the teacher repo's
// convention (server/innodb/basic/value.go) of a tagged-variant value
// type with explicit constructors rather than an interface hierarchy
// per concrete kind.
package sqltime

import (
	"fmt"

	"github.com/pingcap/errors"
	"github.com/zhukovaskychina/tidb-codec-core/codec/evalctx"
)

// Type distinguishes DATE, DATETIME and TIMESTAMP. It is recovered
// from (not stored alongside) the packed core, per spec.md §3.2.
type Type uint8

const (
	TypeDate Type = iota
	TypeDateTime
	TypeTimestamp
)

func (t Type) String() string {
	switch t {
	case TypeDate:
		return "DATE"
	case TypeDateTime:
		return "DATETIME"
	case TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "UNKNOWN"
	}
}

// dateFspTT is the reserved fsp_tt nibble marking a Date value
// (spec.md §3.2: fsp_tt == 0b1110).
const dateFspTT = 0xE

// Time is the packed bitfield value from spec.md §3.2:
//
//	[year:14][month:4][day:5][hour:5][minute:6][second:6][micro:20][fsp_tt:4]
//
// The underlying integer is never exposed; callers use accessors and
// the pack.go functions (ToChunkUint64 /
// FromChunkUint64, ToSortableUint64 / FromSortableUint64) for the two
// documented wire forms.
type Time struct {
	core uint64
}

func pack(year, month, day, hour, minute, second, micro uint64, fspTT uint64) uint64 {
	return (year&0x3fff)<<50 |
		(month&0xf)<<46 |
		(day&0x1f)<<41 |
		(hour&0x1f)<<36 |
		(minute&0x3f)<<30 |
		(second&0x3f)<<24 |
		(micro&0xfffff)<<4 |
		(fspTT & 0xf)
}

func fspTTOf(tp Type, fsp int8) uint64 {
	if tp == TypeDate {
		return dateFspTT
	}
	v := uint64(fsp&0x7) << 1
	if tp == TypeTimestamp {
		v |= 1
	}
	return v
}

// New builds a Time from its components without validating them;
// callers that need SQL-mode validation call Validate explicitly
// (parse.go's entry points always do).
func New(year, month, day, hour, minute, second, micro uint32, tp Type, fsp int8) Time {
	return Time{core: pack(uint64(year), uint64(month), uint64(day), uint64(hour), uint64(minute), uint64(second), uint64(micro), fspTTOf(tp, fsp))}
}

// Zero returns the zero value ("0000-00-00" or "0000-00-00 00:00:00")
// for the given type and fsp.
func Zero(tp Type, fsp int8) Time {
	return New(0, 0, 0, 0, 0, 0, 0, tp, fsp)
}

func (t Time) fspTT() uint64  { return t.core & 0xf }
func (t Time) Micro() uint32  { return uint32((t.core >> 4) & 0xfffff) }
func (t Time) Second() uint32 { return uint32((t.core >> 24) & 0x3f) }
func (t Time) Minute() uint32 { return uint32((t.core >> 30) & 0x3f) }
func (t Time) Hour() uint32   { return uint32((t.core >> 36) & 0x1f) }
func (t Time) Day() uint32    { return uint32((t.core >> 41) & 0x1f) }
func (t Time) Month() uint32  { return uint32((t.core >> 46) & 0xf) }
func (t Time) Year() uint32   { return uint32((t.core >> 50) & 0x3fff) }

// Type recovers the variant tag from fsp_tt (spec.md §3.2).
func (t Time) Type() Type {
	f := t.fspTT()
	if f == dateFspTT {
		return TypeDate
	}
	if f&1 == 1 {
		return TypeTimestamp
	}
	return TypeDateTime
}

// Fsp recovers the fractional-seconds precision, 0 for Date.
func (t Time) Fsp() int8 {
	f := t.fspTT()
	if f == dateFspTT {
		return 0
	}
	return int8((f >> 1) & 0x7)
}

// WithFsp returns a copy with a different fsp, same type and
// components — used by round_frac and packed-form round trips where
// the caller supplies fsp out of band.
func (t Time) WithFsp(fsp int8) Time {
	return New(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Micro(), t.Type(), fsp)
}

// WithType reinterprets the same components under a different type
// tag, leaving hour/minute/second untouched (e.g. json's GetTime
// tagging a decoded chunk value as Date, Datetime or Timestamp).
func (t Time) WithType(tp Type) Time {
	return New(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Micro(), tp, t.Fsp())
}

// IsZero reports the MySQL "zero date" (spec.md §3.2): year, month
// and day all zero.
func (t Time) IsZero() bool {
	return t.Year() == 0 && t.Month() == 0 && t.Day() == 0
}

// comparable masks fsp_tt so precision never affects identity or
// order (spec.md §3.2, §4.1).
func (t Time) comparable() uint64 { return t.core &^ 0xf }

// Compare returns -1/0/1, ignoring fsp and type tag — two Time values
// built from the same calendar components compare equal regardless of
// fsp (spec.md §3.2: "Equality and ordering compare the value with
// fsp_tt zeroed").
func (t Time) Compare(other Time) int {
	a, b := t.comparable(), other.comparable()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (t Time) Equal(other Time) bool { return t.Compare(other) == 0 }

// String renders the canonical "YYYY-MM-DD[ hh:mm:ss[.frac]]" form.
func (t Time) String() string {
	if t.Type() == TypeDate {
		return fmt.Sprintf("%04d-%02d-%02d", t.Year(), t.Month(), t.Day())
	}
	s := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	if fsp := t.Fsp(); fsp > 0 {
		frac := t.Micro() / pow10u32(6-uint32(fsp))
		s += fmt.Sprintf(".%0*d", fsp, frac)
	}
	return s
}

func pow10u32(n uint32) uint32 {
	r := uint32(1)
	for i := uint32(0); i < n; i++ {
		r *= 10
	}
	return r
}

func pow10u64(n uint32) uint64 {
	r := uint64(1)
	for i := uint32(0); i < n; i++ {
		r *= 10
	}
	return r
}

// isLeapYear reports the Gregorian leap rule.
func isLeapYear(y uint32) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

var daysInMonth = [13]uint32{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// lastDayOfMonth returns 0 for month out of [1,12].
func lastDayOfMonth(year, month uint32) uint32 {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && isLeapYear(year) {
		return 29
	}
	return daysInMonth[month]
}

// Validate applies the SQL-mode rules from spec.md §4.2. On success
// it returns t unchanged (or a truncated-to-zero value if a flag
// downgraded a would-be error to a warning); callers must use the
// returned Time, not t.
func Validate(ctx *evalctx.Context, t Time) (Time, error) {
	tp := t.Type()
	year, month, day := t.Year(), t.Month(), t.Day()

	if year > 9999 {
		return t, errors.Trace(ErrOverflow)
	}

	if t.IsZero() {
		if ctx.SQLMode.Has(evalModeNoZeroDate()) {
			if err := ctx.HandleTruncate(newTruncated("zero date")); err != nil {
				return t, err
			}
			return Zero(tp, t.Fsp()), nil
		}
		return t, nil
	}

	if month == 0 || day == 0 {
		if ctx.SQLMode.Has(evalModeNoZeroInDate()) {
			if err := ctx.HandleTruncate(newTruncated("zero month or day")); err != nil {
				return t, err
			}
			return Zero(tp, t.Fsp()), nil
		}
		// Zero month/day with no NO_ZERO_IN_DATE flag is tolerated as-is.
		return t, nil
	}

	if month > 12 {
		if err := ctx.HandleTruncate(newTruncated("month out of range")); err != nil {
			return t, err
		}
		return Zero(tp, t.Fsp()), nil
	}

	if !ctx.SQLMode.Has(evalModeInvalidDates()) {
		if last := lastDayOfMonth(year, month); day > last {
			if err := ctx.HandleTruncate(newTruncated("day out of range for month")); err != nil {
				return t, err
			}
			return Zero(tp, t.Fsp()), nil
		}
	}

	if tp == TypeDate {
		return t, nil
	}

	if t.Hour() > 23 || t.Minute() > 59 || t.Second() > 59 {
		if err := ctx.HandleTruncate(newTruncated("time component out of range")); err != nil {
			return t, err
		}
		return Zero(tp, t.Fsp()), nil
	}

	if tp == TypeTimestamp {
		secs, ok := ToUTCUnixSeconds(ctx, t)
		if !ok || secs < MinTimestamp || secs > MaxTimestamp {
			if err := ctx.HandleTruncate(newTruncated("timestamp out of range")); err != nil {
				return t, err
			}
			return Zero(tp, t.Fsp()), nil
		}
	}

	return t, nil
}

// MinTimestamp / MaxTimestamp bound the legal Timestamp range
// (spec.md §3.2: "fit [0, 2^31-1] seconds").
const (
	MinTimestamp int64 = 0
	MaxTimestamp int64 = (1 << 31) - 1
)

// evalModeNoZeroDate and friends exist only to keep this file free of
// a direct numeric-literal dependency on evalctx's bit layout; they
// are thin forwards to the evalctx constants.
func evalModeNoZeroDate() evalctx.SQLMode   { return evalctx.ModeNoZeroDate }
func evalModeNoZeroInDate() evalctx.SQLMode { return evalctx.ModeNoZeroInDate }
func evalModeInvalidDates() evalctx.SQLMode { return evalctx.ModeInvalidDates }
