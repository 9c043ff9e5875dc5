package sqltime

import (
	stdtime "time"

	"github.com/zhukovaskychina/tidb-codec-core/codec/evalctx"
)

// maxAddSecNanosSeconds bounds add_sec_nanos per spec.md §4.2:
// "rejects |s| > 10000*365*86400".
const maxAddSecNanosSeconds = int64(10000) * 365 * 86400

// roundComponents carries seconds/micro-level rounding up through the
// calendar, per spec.md §4.2's round_frac/round_components. A carry
// that would push a zero year/month/day past its bound forces the
// whole value to the zero value — mirrored from the original's
// behavior described in spec.md §4.2 and §9.
func roundComponents(year, month, day, hour, minute, second, micro int64) (int64, int64, int64, int64, int64, int64, int64, bool) {
	carry := int64(0)
	if micro >= 1000000 {
		carry = micro / 1000000
		micro %= 1000000
	}
	if carry == 0 {
		return year, month, day, hour, minute, second, micro, true
	}
	second += carry
	carry = 0
	if second >= 60 {
		carry = second / 60
		second %= 60
	}
	if carry == 0 {
		return year, month, day, hour, minute, second, micro, true
	}
	minute += carry
	carry = 0
	if minute >= 60 {
		carry = minute / 60
		minute %= 60
	}
	if carry == 0 {
		return year, month, day, hour, minute, second, micro, true
	}
	hour += carry
	carry = 0
	if hour >= 24 {
		carry = hour / 24
		hour %= 24
	}
	if carry == 0 {
		return year, month, day, hour, minute, second, micro, true
	}
	if year == 0 && month == 0 {
		// Cannot carry a day into a zero year/month; spec.md §4.2:
		// "forced to the zero value".
		return 0, 0, 0, 0, 0, 0, 0, false
	}
	day += carry
	last := lastDayOfMonth(uint32(year), uint32(month))
	if last == 0 {
		last = 31
	}
	if day > int64(last) {
		day -= int64(last)
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	if year > 9999 {
		return 0, 0, 0, 0, 0, 0, 0, false
	}
	return year, month, day, hour, minute, second, micro, true
}

// RoundFrac rounds t's microseconds to fsp digits (half-up), applying
// roundComponents for any resulting carry.
func RoundFrac(ctx *evalctx.Context, t Time, fsp int8) (Time, error) {
	if fsp >= 6 {
		return t.WithFsp(fsp), nil
	}
	factor := int64(pow10u64(uint32(6 - fsp)))
	micro := int64(t.Micro()) + factor/2
	year, month, day, hour, minute, second, rmicro, ok := roundComponents(
		int64(t.Year()), int64(t.Month()), int64(t.Day()),
		int64(t.Hour()), int64(t.Minute()), int64(t.Second()), micro)
	rmicro = (rmicro / factor) * factor
	if !ok {
		if err := ctx.HandleTruncate(newTruncated("round_frac carry overflow")); err != nil {
			return Time{}, err
		}
		return Zero(t.Type(), fsp), nil
	}
	return New(uint32(year), uint32(month), uint32(day), uint32(hour), uint32(minute), uint32(second), uint32(rmicro), t.Type(), fsp), nil
}

// AddSecNanos implements spec.md §4.2's add_sec_nanos: adds s whole
// seconds and n nanoseconds (n may carry additional seconds); the
// post-condition forces month/day to 0 if the result's year is 0.
func AddSecNanos(ctx *evalctx.Context, t Time, s int64, n int64) (Time, error) {
	if s > maxAddSecNanosSeconds || s < -maxAddSecNanosSeconds {
		return Time{}, ErrOverflow
	}
	totalMicro := int64(t.Micro()) + n/1000
	loc := stdtime.UTC
	if t.Type() == TypeTimestamp && ctx.Location != nil {
		loc = ctx.Location
	}
	base := stdtime.Date(int(t.Year()), stdtime.Month(t.Month()), int(t.Day()),
		int(t.Hour()), int(t.Minute()), int(t.Second()), 0, loc)
	shifted := base.Add(stdtime.Duration(s) * stdtime.Second)
	for totalMicro < 0 {
		shifted = shifted.Add(-stdtime.Second)
		totalMicro += 1000000
	}
	for totalMicro >= 1000000 {
		shifted = shifted.Add(stdtime.Second)
		totalMicro -= 1000000
	}
	if shifted.Year() < 0 || shifted.Year() > 9999 {
		if err := ctx.HandleTruncate(newTruncated("add_sec_nanos overflow")); err != nil {
			return Time{}, err
		}
		return Zero(t.Type(), t.Fsp()), nil
	}
	year, month, day := uint32(shifted.Year()), uint32(shifted.Month()), uint32(shifted.Day())
	if year == 0 {
		month, day = 0, 0
	}
	return New(year, month, day, uint32(shifted.Hour()), uint32(shifted.Minute()), uint32(shifted.Second()), uint32(totalMicro), t.Type(), t.Fsp()), nil
}

// CheckedAdd adds a Duration to t. DateTime values are shifted with
// naive (no-timezone) arithmetic; Timestamp values go through
// ctx.Location so DST transitions are respected, per spec.md §4.2.
func CheckedAdd(ctx *evalctx.Context, t Time, d Duration) (Time, error) {
	return shiftByDuration(ctx, t, d, 1)
}

// CheckedSub is CheckedAdd with the duration negated.
func CheckedSub(ctx *evalctx.Context, t Time, d Duration) (Time, error) {
	return shiftByDuration(ctx, t, d, -1)
}

func shiftByDuration(ctx *evalctx.Context, t Time, d Duration, sign int64) (Time, error) {
	nanos := d.Nanos * sign
	s := nanos / int64(stdtime.Second)
	n := nanos % int64(stdtime.Second)
	return AddSecNanos(ctx, t, s, n)
}

// AddMonths implements spec.md §4.2's add_months: clamps the day to
// the target month's last day, fails on a year outside [0,9999], and
// forces month=day=0 if the resulting year is 0.
func AddMonths(t Time, months int64) (Time, error) {
	total := int64(t.Year())*12 + int64(t.Month()) - 1 + months
	year := total / 12
	month := total%12 + 1
	if month <= 0 {
		month += 12
		year--
	}
	if year < 0 || year > 9999 {
		return Time{}, ErrOverflow
	}
	day := t.Day()
	if last := lastDayOfMonth(uint32(year), uint32(month)); day > last {
		day = last
	}
	if year == 0 {
		month, day = 0, 0
	}
	return New(uint32(year), uint32(month), day, t.Hour(), t.Minute(), t.Second(), t.Micro(), t.Type(), t.Fsp()), nil
}

// DateDiff returns the whole-day difference t - other (spec.md §4.2);
// ok is false for zero inputs.
func DateDiff(t, other Time) (int64, bool) {
	if t.IsZero() || other.IsZero() {
		return 0, false
	}
	a := civilToDays(t.Year(), t.Month(), t.Day())
	b := civilToDays(other.Year(), other.Month(), other.Day())
	return a - b, true
}

// DiffUnit enumerates timestamp_diff's unit argument (spec.md §4.2).
type DiffUnit int

const (
	UnitYear DiffUnit = iota
	UnitQuarter
	UnitMonth
	UnitWeek
	UnitDay
	UnitHour
	UnitMinute
	UnitSecond
	UnitMicrosecond
)

func toUnixNanos(t Time) int64 {
	days := civilToDays(t.Year(), t.Month(), t.Day())
	secs := days*86400 + int64(t.Hour())*3600 + int64(t.Minute())*60 + int64(t.Second())
	return secs*1e9 + int64(t.Micro())*1000
}

// TimestampDiff implements spec.md §4.2: Year/Quarter/Month use
// whole-calendar differences with a day/time tiebreaker; the other
// units are plain duration division.
func TimestampDiff(t, other Time, unit DiffUnit) int64 {
	switch unit {
	case UnitYear, UnitQuarter, UnitMonth:
		months := (int64(other.Year())-int64(t.Year()))*12 + (int64(other.Month()) - int64(t.Month()))
		laterDayTime := [4]uint32{other.Day(), other.Hour(), other.Minute(), other.Second()}
		earlierDayTime := [4]uint32{t.Day(), t.Hour(), t.Minute(), t.Second()}
		if months > 0 && lessTuple(laterDayTime, earlierDayTime) {
			months--
		} else if months < 0 && lessTuple(earlierDayTime, laterDayTime) {
			months++
		}
		switch unit {
		case UnitYear:
			return months / 12
		case UnitQuarter:
			return months / 3
		default:
			return months
		}
	default:
		diffNanos := toUnixNanos(other) - toUnixNanos(t)
		switch unit {
		case UnitWeek:
			return diffNanos / (7 * 86400 * 1e9)
		case UnitDay:
			return diffNanos / (86400 * 1e9)
		case UnitHour:
			return diffNanos / (3600 * 1e9)
		case UnitMinute:
			return diffNanos / (60 * 1e9)
		case UnitSecond:
			return diffNanos / 1e9
		case UnitMicrosecond:
			return diffNanos / 1e3
		default:
			return 0
		}
	}
}

func lessTuple(a, b [4]uint32) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
