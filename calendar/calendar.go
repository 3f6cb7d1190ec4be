// Package calendar implements proleptic Gregorian calendar arithmetic:
// leap and long-year tests, weekday and day-number computations, the
// month lookup tables, and conversion of epoch timestamps into calendar
// fields.
//
// Every function is pure. The tables are package-level arrays that are
// never written after initialization, so all of them are safe for
// concurrent use.
package calendar

//go:generate go run isocal/internal/cmd/gentables -o tables.go

const (
	SecsPerMinute = 60
	SecsPerHour   = 3600
	SecsPerDay    = 86400

	// DaysPer400Years is the length of a full Gregorian cycle.
	DaysPer400Years = 146097

	// daysFrom1970To2000 is the distance between the Unix epoch and the
	// 400-year aligned anchor used by LocalTime.
	daysFrom1970To2000 = 10957
)

var (
	secsPer400Years = int64(DaysPer400Years) * SecsPerDay

	// Indexed by whether the chunk starts with a leap year.
	secsPer100Years = [2]int64{
		(76*365 + 24*366) * SecsPerDay,
		(75*365 + 25*366) * SecsPerDay,
	}
	secsPer4Years = [2]int64{
		4 * 365 * SecsPerDay,
		(3*365 + 366) * SecsPerDay,
	}
	secsPerYear = [2]int64{
		365 * SecsPerDay,
		366 * SecsPerDay,
	}
)

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func leapIndex(year int) int {
	if IsLeap(year) {
		return 1
	}
	return 0
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// floorMod returns a modulo b with the sign of b.
func floorMod(a, b int) int {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

// p is the weekday correction polynomial. Floor division keeps it
// consistent for years before 1.
func p(year int) int {
	return year + floorDiv(year, 4) - floorDiv(year, 100) + floorDiv(year, 400)
}

// IsLongYear reports whether the ISO week-numbering year has 53 weeks.
func IsLongYear(year int) bool {
	return floorMod(p(year), 7) == 4 || floorMod(p(year-1), 7) == 3
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeap(year) {
		return 366
	}
	return 365
}

// DaysInMonth returns the length of month in year. It returns 0 when month
// is outside 1..12.
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	return DaysPerMonth[leapIndex(year)][month]
}

// WeekDay returns the ISO weekday of the given date, 1 for Monday through
// 7 for Sunday.
func WeekDay(year, month, day int) int {
	y := year
	if month < 3 {
		y--
	}
	w := floorMod(p(y)+dayOfWeekTable[month-1]+day, 7)
	if w == 0 {
		return 7
	}
	return w
}

// DayNumber returns a proleptic day count for the date. Only differences
// between two day numbers are meaningful.
func DayNumber(year, month, day int) int {
	m := (month + 9) % 12
	y := year - m/10
	return 365*y + floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) + (m*306+5)/10 + (day - 1)
}

// DayOfYear returns the 1-based ordinal of the date within its year.
func DayOfYear(year, month, day int) int {
	return MonthOffsets[leapIndex(year)][month] + day
}

// FromDayOfYear resolves a 1-based ordinal day within year to a month and
// day. The ordinal must be within 1..DaysInYear(year).
func FromDayOfYear(year, ordinal int) (month, day int) {
	offsets := &MonthOffsets[leapIndex(year)]
	for m := 12; m >= 1; m-- {
		if ordinal > offsets[m] {
			return m, ordinal - offsets[m]
		}
	}
	return 1, ordinal
}

// ISOWeekDate converts an ISO week date to a calendar date. The result may
// fall in the year before or after isoYear. Callers validate week and
// weekday ranges.
func ISOWeekDate(isoYear, week, weekday int) (year, month, day int) {
	year = isoYear
	ordinal := week*7 + weekday - (WeekDay(isoYear, 1, 4) + 3)
	if ordinal < 1 {
		year--
		ordinal += DaysInYear(year)
	} else if ordinal > DaysInYear(year) {
		ordinal -= DaysInYear(year)
		year++
	}
	month, day = FromDayOfYear(year, ordinal)
	return year, month, day
}
