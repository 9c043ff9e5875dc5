package sqltime

import (
	"testing"
	stdtime "time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovaskychina/tidb-codec-core/codec/evalctx"
)

func TestParseFromStringWithFraction(t *testing.T) {
	ctx := evalctx.New()
	got, err := ParseFromString(ctx, "2019-09-16T10:11:12.66", TypeDateTime, 1)
	require.NoError(t, err)
	assert.Equal(t, "2019-09-16 10:11:12.7", got.String())
}

func TestParseFromStringWithTimezone(t *testing.T) {
	ctx := evalctx.New()
	ctx.Location = stdtime.FixedZone("+08:00", 8*3600)
	got, err := ParseFromString(ctx, "2022-06-02T10:10:10.123Z", TypeDateTime, 6)
	require.NoError(t, err)
	assert.Equal(t, "2022-06-02 18:10:10.123000", got.String())
}

func TestAddMonthsClampsToLastDayOfMonth(t *testing.T) {
	ctx := evalctx.New()
	t1, err := ParseFromString(ctx, "2023-01-31", TypeDate, 0)
	require.NoError(t, err)
	got, err := AddMonths(t1, 1)
	require.NoError(t, err)
	assert.Equal(t, "2023-02-28", got.String())

	t2, err := ParseFromString(ctx, "2024-01-31", TypeDate, 0)
	require.NoError(t, err)
	got, err = AddMonths(t2, 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got.String())
}

func TestPackedRoundTripTimestamp(t *testing.T) {
	ctx := evalctx.New()
	loc, err := stdtime.LoadLocation("Etc/GMT+5")
	require.NoError(t, err)
	ctx.Location = loc
	got, err := ParseFromString(ctx, "2019-07-01 12:13:14.999", TypeTimestamp, 6)
	require.NoError(t, err)

	packed := got.ToChunkUint64()
	back := FromChunkUint64(packed)
	back = back.WithType(TypeTimestamp).WithFsp(6)
	assert.Equal(t, got.String(), back.String())
}

func TestSortableUint64RoundTripTimestampAcrossTimezone(t *testing.T) {
	ctx := evalctx.New()
	loc, err := stdtime.LoadLocation("Etc/GMT-5")
	require.NoError(t, err)
	ctx.Location = loc
	got, err := ParseFromString(ctx, "2019-07-01 12:13:14.999", TypeTimestamp, 6)
	require.NoError(t, err)

	key := ToSortableUint64(ctx, got)
	back := FromSortableUint64(ctx, key, TypeTimestamp, 6)
	assert.Equal(t, got.String(), back.String())
}

func TestSortableUint64OrdersChronologically(t *testing.T) {
	ctx := evalctx.New()
	earlier, err := ParseFromString(ctx, "2019-07-01 12:13:14", TypeDateTime, 0)
	require.NoError(t, err)
	later, err := ParseFromString(ctx, "2019-07-01 12:13:15", TypeDateTime, 0)
	require.NoError(t, err)
	assert.Less(t, ToSortableUint64(ctx, earlier), ToSortableUint64(ctx, later))
}

func TestZeroDateRoundTrip(t *testing.T) {
	z := Zero(TypeDate, 0)
	assert.True(t, z.IsZero())
	assert.Equal(t, "0000-00-00", z.String())
}

func TestLeapYearFeb29(t *testing.T) {
	ctx := evalctx.New()
	got, err := ParseFromString(ctx, "2020-02-29", TypeDate, 0)
	require.NoError(t, err)
	assert.Equal(t, "2020-02-29", got.String())

	ctx.SQLMode |= evalctx.ModeStrictAllTables
	_, err = ParseFromString(ctx, "2019-02-29", TypeDate, 0)
	assert.Error(t, err, "2019 is not a leap year under strict validation")
}

func TestLastDayOfMonthForAllMonths(t *testing.T) {
	days := []uint32{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	for i, want := range days {
		got := lastDayOfMonth(2021, uint32(i+1))
		assert.Equal(t, want, got, "month %d", i+1)
	}
}

func TestTimestampBoundary2038(t *testing.T) {
	ctx := evalctx.New()
	t1, err := ParseFromString(ctx, "2038-01-19 03:14:07", TypeTimestamp, 0)
	require.NoError(t, err)
	_, ok := ToUTCUnixSeconds(ctx, t1)
	assert.True(t, ok)

	ctx.SQLMode |= evalctx.ModeStrictAllTables
	_, err = ParseFromString(ctx, "2038-01-19 03:14:08", TypeTimestamp, 0)
	assert.Error(t, err, "one second past the signed-32-bit boundary must overflow under strict mode")
}

func TestNoZeroDateSQLMode(t *testing.T) {
	ctx := evalctx.New()
	got, err := ParseFromString(ctx, "0000-00-00", TypeDate, 0)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	ctx.SQLMode |= evalctx.ModeNoZeroDate | evalctx.ModeStrictAllTables
	_, err = ParseFromString(ctx, "0000-00-00", TypeDate, 0)
	assert.Error(t, err)
}

func TestInvalidDatesSQLMode(t *testing.T) {
	ctx := evalctx.New()
	ctx.SQLMode |= evalctx.ModeInvalidDates
	got, err := ParseFromString(ctx, "2019-02-30", TypeDate, 0)
	require.NoError(t, err)
	assert.Equal(t, "2019-02-30", got.String())

	ctx2 := evalctx.New()
	ctx2.SQLMode |= evalctx.ModeStrictAllTables
	_, err = ParseFromString(ctx2, "2019-02-30", TypeDate, 0)
	assert.Error(t, err)
}

func TestParseFromDecimal(t *testing.T) {
	ctx := evalctx.New()
	d := decimal.RequireFromString("20190916101112.5")
	got, err := ParseFromDecimal(ctx, d, TypeDateTime, 1)
	require.NoError(t, err)
	assert.Equal(t, "2019-09-16 10:11:12.5", got.String())
}

func TestParseFromInt64Ranges(t *testing.T) {
	ctx := evalctx.New()
	cases := []struct {
		n    int64
		want string
	}{
		{691231, "2069-12-31"},
		{700101, "1970-01-01"},
		{19991231, "1999-12-31"},
		{691231235959, "2069-12-31 23:59:59"},
		{700101000000, "1970-01-01 00:00:00"},
	}
	for _, c := range cases {
		tp := TypeDate
		if c.n > 99999999 {
			tp = TypeDateTime
		}
		got, err := ParseFromInt64(ctx, c.n, tp, 0)
		require.NoError(t, err, c.n)
		assert.Equal(t, c.want, got.String(), c.n)
	}
}

func TestCompareIgnoresFspTT(t *testing.T) {
	a := New(2020, 1, 1, 0, 0, 0, 0, TypeDateTime, 0)
	b := New(2020, 1, 1, 0, 0, 0, 0, TypeDate, 6)
	assert.Equal(t, 0, a.Compare(b), "comparable() must mask out type/fsp bits")
}

func TestWeekModeBoundaries(t *testing.T) {
	year, week := YearWeek(2000, 1, 1, 0)
	assert.Equal(t, 1999, year)
	assert.Equal(t, 52, week)
}

func TestDateFormatAndStrToDateRoundTrip(t *testing.T) {
	ctx := evalctx.New()
	t1, err := ParseFromString(ctx, "2019-09-16 10:11:12", TypeDateTime, 0)
	require.NoError(t, err)
	formatted := DateFormat(t1, "%Y-%m-%d %H:%i:%s")
	assert.Equal(t, "2019-09-16 10:11:12", formatted)

	parsed, ok := StrToDate("2019-09-16 10:11:12", "%Y-%m-%d %H:%i:%s", TypeDateTime, 0)
	require.True(t, ok)
	assert.Equal(t, t1.String(), parsed.String())
}

func TestStrToDateFractionalSeconds(t *testing.T) {
	parsed, ok := StrToDate("2019-09-16 10:11:12.0700", "%Y-%m-%d %H:%i:%s.%f", TypeDateTime, 4)
	require.True(t, ok)
	assert.Equal(t, uint32(70000), parsed.Micro(), "leading zero in %%f must not be dropped")
}
