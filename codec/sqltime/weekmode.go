package sqltime

// WeekMode mirrors MySQL's week() mode argument: bit 0 selects
// Monday- vs Sunday-first weeks, bit 2 selects whether week 1 is the
// first full 7-day week starting on the first weekday (bit set) or the
// first week with at least four days in the new year (bit clear)
// (spec.md §4.2, "week modes 0/1/2/3").
type WeekMode uint8

const (
	weekModeMondayFirst    WeekMode = 1
	weekModeFirstWeekdayIs WeekMode = 4
)

func (m WeekMode) mondayFirst() bool    { return m&weekModeMondayFirst != 0 }
func (m WeekMode) firstWeekdayIs() bool { return m&weekModeFirstWeekdayIs != 0 }

// weekday returns 0=Monday..6=Sunday for the given calendar date,
// computed from the day count civilToDays returns.
func weekday(year, month, day uint32) int {
	t := civilToDays(year, month, day)
	// civilToDays is epoch-day-aligned to 1970-01-01, a Thursday (wd=3
	// in the 0=Monday scheme).
	wd := (int(t)%7 + 3 + 7*1000) % 7
	return wd
}

// civilToDays converts a proleptic-Gregorian calendar date to a signed
// day count since 1970-01-01, using Howard Hinnant's well-known
// civil_from_days algorithm in reverse.
func civilToDays(y, m, d uint32) int64 {
	yy := int64(y)
	if m <= 2 {
		yy--
	}
	era := yy
	if era < 0 {
		era -= 399
	}
	era /= 400
	yoe := yy - era*400
	var mp int64
	if int64(m) > 2 {
		mp = int64(m) - 3
	} else {
		mp = int64(m) + 9
	}
	doy := (153*mp+2)/5 + int64(d) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// calcWeekday returns the day-of-week used by calc_week, 0=Sunday
// when mondayFirst is false, else 0=Monday.
func calcWeekday(year, month, day uint32, mondayFirstWeek bool) int {
	wd := weekday(year, month, day) // 0=Monday..6=Sunday
	if mondayFirstWeek {
		return wd
	}
	return (wd + 1) % 7
}

// calcWeek implements MySQL's calc_week: returns (year, week) where
// year may differ from the calendar year in every mode: days before
// week 1 count in the previous year's last week, and late-December
// days can count as week 1 of the next year.
func calcWeek(year, month, day uint32, mode WeekMode) (int, int) {
	dayOfYear := dayOfYear(year, month, day)
	firstDaysOfWeek := calcWeekday(year, 1, 1, mode.mondayFirst())

	var week int
	y := int(year)
	if month == 1 && day <= uint32(7-firstDaysOfWeek) && !weekStartsFromFirstDay(firstDaysOfWeek, mode) {
		y--
		prevYearDays := int(daysInYear(uint32(y)))
		week = weekOfYearInner(prevYearDays, calcWeekday(uint32(y), 1, 1, mode.mondayFirst()), mode)
		return y, week
	}

	week = weekOfYearInner(dayOfYear, firstDaysOfWeek, mode)
	if week > 52 {
		daysInThisYear := int(daysInYear(year))
		weekOfNext := dayOfYear - daysInThisYear
		if weekOfNext >= 0 {
			nextFirstDaysOfWeek := calcWeekday(year+1, 1, 1, mode.mondayFirst())
			if weekStartsFromFirstDay(nextFirstDaysOfWeek, mode) || (7-nextFirstDaysOfWeek) <= weekOfNext {
				return int(year) + 1, 1
			}
		}
	}
	return y, week
}

func weekStartsFromFirstDay(firstDaysOfWeek int, mode WeekMode) bool {
	if mode.firstWeekdayIs() {
		return firstDaysOfWeek == 0
	}
	return firstDaysOfWeek <= 3
}

func weekOfYearInner(dayOfYear, firstDaysOfWeek int, mode WeekMode) int {
	var daysBeforeFirstWeek int
	if weekStartsFromFirstDay(firstDaysOfWeek, mode) {
		daysBeforeFirstWeek = 0
	} else {
		daysBeforeFirstWeek = 7 - firstDaysOfWeek
	}
	if dayOfYear <= daysBeforeFirstWeek {
		return 0
	}
	return (dayOfYear-daysBeforeFirstWeek-1)/7 + 1
}

func dayOfYear(year, month, day uint32) int {
	return int(civilToDays(year, month, day) - civilToDays(year, 1, 1) + 1)
}

func daysInYear(year uint32) uint32 {
	if isLeapYear(year) {
		return 366
	}
	return 365
}

// YearWeek implements YEARWEEK(date, mode): it returns the (year, week)
// pair that YEARWEEK combines as year*100+week.
func YearWeek(year, month, day uint32, mode WeekMode) (int, int) {
	return calcWeek(year, month, day, mode)
}
