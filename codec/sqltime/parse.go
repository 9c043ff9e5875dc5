package sqltime

import (
	"math"
	"strconv"
	"strings"
	stdtime "time"

	"github.com/shopspring/decimal"

	"github.com/zhukovaskychina/tidb-codec-core/codec/evalctx"
)

// adjustYear applies the two-digit-year normalization from spec.md
// §4.2: y<=69 -> +2000, 70<=y<=99 -> +1900, else unchanged (already a
// literal 4-digit year).
func adjustYear(y int) int {
	switch {
	case y <= 69:
		return y + 2000
	case y <= 99:
		return y + 1900
	default:
		return y
	}
}

// alignI64 validates n against the legal ranges from spec.md §4.2 and
// splits it into calendar components. hasTime distinguishes the
// date-only ranges from the date+time ranges.
func alignI64(n int64) (y, mo, d, h, mi, s int, hasTime bool, ok bool) {
	switch {
	case n == 0:
		return 0, 0, 0, 0, 0, 0, false, true
	case n >= 101 && n <= 691231:
		y, mo, d = splitDateDigits(n)
		return y, mo, d, 0, 0, 0, false, true
	case n >= 700101 && n <= 991231:
		y, mo, d = splitDateDigits(n)
		return y, mo, d, 0, 0, 0, false, true
	case n >= 991232 && n <= 99991231:
		y, mo, d = splitDateDigits(n)
		return y, mo, d, 0, 0, 0, false, true
	case n >= 101000000 && n <= 691231235959:
		y, mo, d, h, mi, s = splitDateTimeDigits(n)
		return y, mo, d, h, mi, s, true, true
	case n >= 700101000000 && n <= 991231235959:
		y, mo, d, h, mi, s = splitDateTimeDigits(n)
		return y, mo, d, h, mi, s, true, true
	case n >= 1000000000000 && n <= 99991231235959:
		y, mo, d, h, mi, s = splitDateTimeDigits(n)
		return y, mo, d, h, mi, s, true, true
	default:
		return 0, 0, 0, 0, 0, 0, false, false
	}
}

func splitDateDigits(n int64) (y, mo, d int) {
	y = adjustYear(int(n / 10000))
	mo = int((n / 100) % 100)
	d = int(n % 100)
	return
}

func splitDateTimeDigits(n int64) (y, mo, d, h, mi, s int) {
	y = adjustYear(int(n / 1e10))
	rest := n % 1e10
	mo = int(rest / 1e8)
	rest %= 1e8
	d = int(rest / 1e6)
	rest %= 1e6
	h = int(rest / 1e4)
	rest %= 1e4
	mi = int(rest / 100)
	s = int(rest % 100)
	return
}

// ParseFromInt64 parses an i64-encoded date/time per spec.md §4.2's
// range table.
func ParseFromInt64(ctx *evalctx.Context, n int64, tp Type, fsp int8) (Time, error) {
	y, mo, d, h, mi, s, _, ok := alignI64(n)
	if !ok {
		if err := ctx.HandleTruncate(newIncorrectValue(strconv.FormatInt(n, 10))); err != nil {
			return Time{}, err
		}
		return Zero(tp, fsp), nil
	}
	t := New(uint32(y), uint32(mo), uint32(d), uint32(h), uint32(mi), uint32(s), 0, tp, fsp)
	return Validate(ctx, t)
}

// ParseFromFloatString parses a textual real/decimal: the integer
// part goes through ParseFromInt64's alignment, the fractional part
// is rounded to fsp (spec.md §4.2 "Real/Decimal").
func ParseFromFloatString(ctx *evalctx.Context, s string, tp Type, fsp int8) (Time, error) {
	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart = s[:idx]
		fracPart = s[idx+1:]
	}
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		if herr := ctx.HandleTruncate(newIncorrectValue(s)); herr != nil {
			return Time{}, herr
		}
		return Zero(tp, fsp), nil
	}
	t, err := ParseFromInt64(ctx, n, tp, fsp)
	if err != nil {
		return t, err
	}
	if fracPart == "" {
		return t, nil
	}
	micro := fracToMicro(fracPart)
	t = New(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), micro, tp, fsp)
	return RoundFrac(ctx, t, fsp)
}

// ParseFromFloat64 splits a float64 into its integer and fractional
// seconds per spec.md §4.2.
func ParseFromFloat64(ctx *evalctx.Context, f float64, tp Type, fsp int8) (Time, error) {
	intPart := int64(math.Trunc(f))
	frac := math.Abs(f - math.Trunc(f))
	t, err := ParseFromInt64(ctx, intPart, tp, fsp)
	if err != nil {
		return t, err
	}
	micro := uint32(math.Round(frac * 1e6))
	t = New(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), micro, tp, fsp)
	return RoundFrac(ctx, t, fsp)
}

// ParseFromDecimal splits a fixed-point decimal into its integer part
// (aligned per ParseFromInt64's range table) and fractional part
// (rounded to fsp), per spec.md §4.2's "Real/Decimal: split into
// integer (used as i64) and fractional (rounded to fsp)".
func ParseFromDecimal(ctx *evalctx.Context, d decimal.Decimal, tp Type, fsp int8) (Time, error) {
	intPart := d.Truncate(0)
	n := intPart.IntPart()
	t, err := ParseFromInt64(ctx, n, tp, fsp)
	if err != nil {
		return t, err
	}
	frac := d.Sub(intPart).Abs()
	if frac.IsZero() {
		return t, nil
	}
	micro := uint32(frac.Shift(6).Round(0).IntPart())
	t = New(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), micro, tp, fsp)
	return RoundFrac(ctx, t, fsp)
}

// fracToMicro right-pads or truncates a fractional-second digit
// string to 6 digits (microseconds).
func fracToMicro(frac string) uint32 {
	for len(frac) < 6 {
		frac += "0"
	}
	if len(frac) > 6 {
		frac = frac[:6]
	}
	v, _ := strconv.ParseUint(frac, 10, 32)
	return uint32(v)
}

// ParseFromString parses separator-tolerant and compact string forms
// (spec.md §4.2). Timezone suffixes, when present, are converted to
// ctx.Location.
func ParseFromString(ctx *evalctx.Context, raw string, tp Type, fsp int8) (Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		if err := ctx.HandleTruncate(newIncorrectValue(raw)); err != nil {
			return Time{}, err
		}
		return Zero(tp, fsp), nil
	}

	main, tz := splitTimezone(s)
	main, fracDigits := splitFraction(main)

	var y, mo, d, h, mi, sec int
	var ok bool
	if isAllDigits(main) {
		n, err := strconv.ParseInt(main, 10, 64)
		if err == nil {
			var hasTime bool
			y, mo, d, h, mi, sec, hasTime, ok = alignI64(n)
			_ = hasTime
		}
	} else {
		y, mo, d, h, mi, sec, ok = parseSeparated(main)
	}
	if !ok {
		if err := ctx.HandleTruncate(newIncorrectValue(raw)); err != nil {
			return Time{}, err
		}
		return Zero(tp, fsp), nil
	}

	micro := uint32(0)
	if fracDigits != "" {
		micro = fracToMicro(fracDigits)
	}

	t := New(uint32(y), uint32(mo), uint32(d), uint32(h), uint32(mi), uint32(sec), micro, tp, fsp)

	if tz != "" {
		t = applyTimezone(ctx, t, tz)
	}

	t, err := Validate(ctx, t)
	if err != nil {
		return t, err
	}
	return RoundFrac(ctx, t, fsp)
}

// splitTimezone strips a trailing "Z" or "+HH[:MM]"/"-HH[:MM]" suffix.
// The sign must be followed only by digits and colons, and the body
// before it must hold a time part (a space, "T" or ":"), so a date
// separator like "2019-09-16" is never mistaken for an offset.
func splitTimezone(s string) (main, tz string) {
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		return s[:len(s)-1], "Z"
	}
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c == '+' || c == '-' {
			rest := s[i+1:]
			if i > 0 && isValidTZSuffix(rest) && strings.ContainsAny(s[:i], " T:") {
				return s[:i], s[i:]
			}
			return s, ""
		}
		if (c < '0' || c > '9') && c != ':' {
			return s, ""
		}
	}
	return s, ""
}

func isValidTZSuffix(rest string) bool {
	rest = strings.ReplaceAll(rest, ":", "")
	if len(rest) != 2 && len(rest) != 4 {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// splitFraction strips a trailing ".digits" fractional-seconds part.
func splitFraction(s string) (main, frac string) {
	idx := strings.LastIndexByte(s, '.')
	if idx < 0 {
		return s, ""
	}
	rest := s[idx+1:]
	for _, r := range rest {
		if r < '0' || r > '9' {
			return s, ""
		}
	}
	return s[:idx], rest
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseSeparated tokenizes a punctuation/whitespace-separated string
// into digit runs and classifies by component count, per spec.md
// §4.2's "After splitting on punctuation/whitespace, the parser
// classifies by component count (1-7 components...)".
func parseSeparated(s string) (y, mo, d, h, mi, sec int, ok bool) {
	var parts []string
	var cur strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			cur.WriteRune(r)
		} else if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	if len(parts) < 3 {
		return 0, 0, 0, 0, 0, 0, false
	}
	atoi := func(s string) int {
		v, _ := strconv.Atoi(s)
		return v
	}
	yRaw := atoi(parts[0])
	if len(parts[0]) <= 2 {
		yRaw = adjustYear(yRaw)
	}
	y = yRaw
	mo = atoi(parts[1])
	d = atoi(parts[2])
	if len(parts) > 3 {
		h = atoi(parts[3])
	}
	if len(parts) > 4 {
		mi = atoi(parts[4])
	}
	if len(parts) > 5 {
		sec = atoi(parts[5])
	}
	return y, mo, d, h, mi, sec, true
}

// applyTimezone reinterprets t's wall-clock components as being in
// the given offset (or UTC for "Z") and converts to ctx.Location.
func applyTimezone(ctx *evalctx.Context, t Time, tz string) Time {
	var srcLoc *stdtime.Location
	if tz == "Z" {
		srcLoc = stdtime.UTC
	} else {
		sign := 1
		body := tz
		if strings.HasPrefix(body, "-") {
			sign = -1
		}
		body = strings.TrimPrefix(strings.TrimPrefix(body, "+"), "-")
		body = strings.ReplaceAll(body, ":", "")
		hh, _ := strconv.Atoi(body[:2])
		mm := 0
		if len(body) >= 4 {
			mm, _ = strconv.Atoi(body[2:4])
		}
		offset := sign * (hh*3600 + mm*60)
		srcLoc = stdtime.FixedZone("", offset)
	}
	loc := ctx.Location
	if loc == nil {
		loc = stdtime.UTC
	}
	tm := stdtime.Date(int(t.Year()), stdtime.Month(t.Month()), int(t.Day()),
		int(t.Hour()), int(t.Minute()), int(t.Second()), int(t.Micro())*1000, srcLoc).In(loc)
	return New(uint32(tm.Year()), uint32(tm.Month()), uint32(tm.Day()),
		uint32(tm.Hour()), uint32(tm.Minute()), uint32(tm.Second()), uint32(tm.Nanosecond()/1000), t.Type(), t.Fsp())
}
