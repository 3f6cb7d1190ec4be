// Package diff computes the calendar-aware difference between two dates
// or date-times, expressed in years, months, days and clock units the way
// a person would count them.
package diff

import (
	"fmt"
	"strings"
	"time"

	"isocal/calendar"
)

// Value is a date or date-time that can take part in a difference.
type Value interface {
	CalendarDate() (year, month, day int)
	// TimeOfDay reports ok == false for a plain date.
	TimeOfDay() (hour, minute, second, microsecond int, ok bool)
	// UTCOffset reports ok == false for a local (naive) time.
	UTCOffset() (seconds int, ok bool)
	// ZoneName identifies a named zone. Two values in the same named zone
	// are compared on their wall clocks.
	ZoneName() string
}

// PreciseDiff is the signed difference between two values. All non-zero
// fields share one sign. TotalDays is the plain count of calendar days
// between the two dates and ignores the time of day.
type PreciseDiff struct {
	Years        int `json:"years"`
	Months       int `json:"months"`
	Days         int `json:"days"`
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	Seconds      int `json:"seconds"`
	Microseconds int `json:"microseconds"`
	TotalDays    int `json:"total_days"`
}

type info struct {
	year, month, day          int
	hour, minute, second, usc int
	offset                    int
	zone                      string
	hasTime                   bool
}

func load(v Value) info {
	var in info
	in.year, in.month, in.day = v.CalendarDate()
	in.hour, in.minute, in.second, in.usc, in.hasTime = v.TimeOfDay()
	if !in.hasTime {
		in.hour, in.minute, in.second, in.usc = 0, 0, 0, 0
	}
	in.offset, _ = v.UTCOffset()
	in.zone = v.ZoneName()
	return in
}

// toUTC shifts the clock by the UTC offset. Only one carry step is taken
// per unit and the day may leave its month; the month arithmetic later
// absorbs it.
func (in *info) toUTC() {
	off := in.offset
	in.hour -= off / calendar.SecsPerHour
	off %= calendar.SecsPerHour
	in.minute -= off / calendar.SecsPerMinute
	off %= calendar.SecsPerMinute
	in.second -= off

	if in.second < 0 {
		in.second += 60
		in.minute--
	} else if in.second > 60 {
		in.second -= 60
		in.minute++
	}
	if in.minute < 0 {
		in.minute += 60
		in.hour--
	} else if in.minute > 60 {
		in.minute -= 60
		in.hour++
	}
	if in.hour < 0 {
		in.hour += 24
		in.day--
	} else if in.hour > 24 {
		in.hour -= 24
		in.day++
	}
}

func (in info) after(o info) bool {
	a := [...]int{in.year, in.month, in.day, in.hour, in.minute, in.second, in.usc}
	b := [...]int{o.year, o.month, o.day, o.hour, o.minute, o.second, o.usc}
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

// Precise returns the difference b - a.
//
// Values in the same named zone are compared on their wall clocks. Any
// other value carrying a non-zero offset is first moved to UTC, as are
// both values when they fall on the same calendar day.
func Precise(a, b Value) PreciseDiff {
	d1, d2 := load(a), load(b)
	sameZone := d1.zone == d2.zone && d1.zone != ""
	totalDays := calendar.DayNumber(d2.year, d2.month, d2.day) - calendar.DayNumber(d1.year, d1.month, d1.day)

	for _, d := range []*info{&d1, &d2} {
		if d.hasTime && (!sameZone && d.offset != 0 || totalDays == 0) {
			d.toUTC()
		}
	}

	sign := 1
	if d1.after(d2) {
		sign = -1
		d1, d2 = d2, d1
		totalDays = -totalDays
	}

	years := d2.year - d1.year
	months := d2.month - d1.month
	days := d2.day - d1.day
	hours := d2.hour - d1.hour
	minutes := d2.minute - d1.minute
	seconds := d2.second - d1.second
	micros := d2.usc - d1.usc

	if micros < 0 {
		micros += 1000000
		seconds--
	}
	if seconds < 0 {
		seconds += 60
		minutes--
	}
	if minutes < 0 {
		minutes += 60
		hours--
	}
	if hours < 0 {
		hours += 24
		days--
	}

	if days < 0 {
		prevYear, prevMonth := d2.year, d2.month-1
		if prevMonth == 0 {
			prevYear, prevMonth = prevYear-1, 12
		}
		lastMonthLen := calendar.DaysInMonth(prevYear, prevMonth)
		monthLen := calendar.DaysInMonth(d2.year, d2.month)

		switch gap := monthLen - lastMonthLen; {
		case days < gap:
			if lastMonthLen < d1.day {
				days += d1.day
			} else {
				days += lastMonthLen
			}
		case days == gap:
			days = 0
			months++
		default:
			days += lastMonthLen
		}
		months--
	}
	if months < 0 {
		months += 12
		years--
	}

	return PreciseDiff{
		Years:        years * sign,
		Months:       months * sign,
		Days:         days * sign,
		Hours:        hours * sign,
		Minutes:      minutes * sign,
		Seconds:      seconds * sign,
		Microseconds: micros * sign,
		TotalDays:    totalDays,
	}
}

// InWeeks returns the whole weeks in TotalDays.
func (d PreciseDiff) InWeeks() int {
	return d.TotalDays / 7
}

// InMonths returns the whole months between the two values.
func (d PreciseDiff) InMonths() int {
	return d.Years*12 + d.Months
}

func (d PreciseDiff) negative() bool {
	for _, v := range []int{d.Years, d.Months, d.Days, d.Hours, d.Minutes, d.Seconds, d.Microseconds} {
		if v != 0 {
			return v < 0
		}
	}
	return false
}

// String formats d as an ISO-8601 duration, prefixed with "-" when the
// difference is negative.
func (d PreciseDiff) String() string {
	neg := d.negative()
	if (d == PreciseDiff{TotalDays: d.TotalDays}) {
		return "PT0S"
	}
	abs := func(v int) int {
		if v < 0 {
			return -v
		}
		return v
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	unit := func(v int, u byte) {
		if v != 0 {
			fmt.Fprintf(&b, "%d%c", abs(v), u)
		}
	}
	unit(d.Years, 'Y')
	unit(d.Months, 'M')
	unit(d.Days, 'D')
	if d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0 || d.Microseconds != 0 {
		b.WriteByte('T')
		unit(d.Hours, 'H')
		unit(d.Minutes, 'M')
		if d.Microseconds != 0 {
			frac := strings.TrimRight(fmt.Sprintf("%06d", abs(d.Microseconds)), "0")
			fmt.Fprintf(&b, "%d.%sS", abs(d.Seconds), frac)
		} else {
			unit(d.Seconds, 'S')
		}
	}
	return b.String()
}

type timeValue struct {
	t time.Time
}

// Time adapts a time.Time to a Value. The local zone is treated as
// unnamed so that only its offset takes part.
func Time(t time.Time) Value {
	return timeValue{t: t}
}

func (v timeValue) CalendarDate() (int, int, int) {
	y, m, d := v.t.Date()
	return y, int(m), d
}

func (v timeValue) TimeOfDay() (int, int, int, int, bool) {
	return v.t.Hour(), v.t.Minute(), v.t.Second(), v.t.Nanosecond() / 1000, true
}

func (v timeValue) UTCOffset() (int, bool) {
	_, off := v.t.Zone()
	return off, true
}

func (v timeValue) ZoneName() string {
	switch name := v.t.Location().String(); name {
	case "Local", "":
		return ""
	default:
		return name
	}
}
