package calendar

import (
	"errors"
	"fmt"
	"math"
)

// Input bounds of LocalTime.
const (
	// MaxOffset is the largest UTC offset magnitude in seconds.
	MaxOffset = SecsPerDay

	// MaxUnix is the largest timestamp magnitude in seconds. It keeps the
	// epoch re-basing and the offset within int64.
	MaxUnix = 1 << 62
)

// ErrRange is returned by CheckLocalTime for inputs outside the bounds.
var ErrRange = errors.New("calendar: value out of range")

// CheckLocalTime reports whether LocalTime is defined for the inputs: a
// finite timestamp within MaxUnix, an offset within MaxOffset and a
// microsecond in [0, 999999].
func CheckLocalTime(unix float64, offset, microsecond int) error {
	if !(unix >= -MaxUnix && unix <= MaxUnix) {
		return fmt.Errorf("%w: timestamp %v", ErrRange, unix)
	}
	if offset < -MaxOffset || offset > MaxOffset {
		return fmt.Errorf("%w: offset %d not in [-%d, %d]", ErrRange, offset, MaxOffset, MaxOffset)
	}
	if microsecond < 0 || microsecond > 999999 {
		return fmt.Errorf("%w: microsecond %d not in [0, 999999]", ErrRange, microsecond)
	}
	return nil
}

// Fields are the broken-down calendar fields of an instant.
type Fields struct {
	Year        int `json:"year"`
	Month       int `json:"month"`
	Day         int `json:"day"`
	Hour        int `json:"hour"`
	Minute      int `json:"minute"`
	Second      int `json:"second"`
	Microsecond int `json:"microsecond"`
}

// LocalTime converts a Unix timestamp shifted by offset seconds into
// calendar fields. The fractional part of unix is discarded and
// microsecond is passed through unchanged. Inputs rejected by
// CheckLocalTime give meaningless fields.
//
// The arithmetic is anchored on a 400-year cycle so that timestamps before
// the epoch and offsets crossing a year boundary resolve exactly.
func LocalTime(unix float64, offset int, microsecond int) Fields {
	year := 1970
	seconds := int64(math.Floor(unix))

	if seconds >= 0 {
		seconds -= daysFrom1970To2000 * SecsPerDay
		year += 30
	} else {
		seconds += (DaysPer400Years - daysFrom1970To2000) * SecsPerDay
		year -= 370
	}
	seconds += int64(offset)

	year += 400 * int(seconds/secsPer400Years)
	seconds %= secsPer400Years
	if seconds < 0 {
		seconds += secsPer400Years
		year -= 400
	}

	// The anchor year is divisible by 400, so the first century and the
	// first quad of every later chunk start on a leap year.
	leap := 1
	for seconds >= secsPer100Years[leap] {
		seconds -= secsPer100Years[leap]
		year += 100
		leap = 0
	}
	for seconds >= secsPer4Years[leap] {
		seconds -= secsPer4Years[leap]
		year += 4
		leap = 1
	}
	for seconds >= secsPerYear[leap] {
		seconds -= secsPerYear[leap]
		year++
		leap = 0
	}

	day := int(seconds/SecsPerDay) + 1
	seconds %= SecsPerDay

	month := 1
	for m := 12; m > 1; m-- {
		if day > MonthOffsets[leap][m] {
			day -= MonthOffsets[leap][m]
			month = m
			break
		}
	}

	hour := int(seconds / SecsPerHour)
	seconds %= SecsPerHour
	minute := int(seconds / SecsPerMinute)
	second := int(seconds % SecsPerMinute)

	return Fields{
		Year:        year,
		Month:       month,
		Day:         day,
		Hour:        hour,
		Minute:      minute,
		Second:      second,
		Microsecond: microsecond,
	}
}

// EpochSeconds encodes a UTC calendar date and time as seconds since the
// Unix epoch. It is the inverse of LocalTime with a zero offset.
func EpochSeconds(year, month, day, hour, minute, second int) int64 {
	days := int64(DayNumber(year, month, day) - DayNumber(1970, 1, 1))
	return days*SecsPerDay + int64(hour*SecsPerHour+minute*SecsPerMinute+second)
}
