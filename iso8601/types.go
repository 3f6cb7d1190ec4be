package iso8601

import (
	"fmt"
	"strconv"
	"strings"

	"isocal/calendar"
)

// Date is a proleptic Gregorian calendar date.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Clock is a time of day. Hour is 24 only for an end-of-day midnight,
// see DateTime.MidnightRollover.
type Clock struct {
	Hour        int `json:"hour"`
	Minute      int `json:"minute"`
	Second      int `json:"second"`
	Microsecond int `json:"microsecond"`
}

// Zone is a fixed offset from UTC in seconds with an optional label.
type Zone struct {
	Offset int    `json:"offset"`
	Name   string `json:"name,omitempty"`
}

// UTC is the zone produced by a "Z" designator.
var UTC = Zone{Name: "UTC"}

// String returns the label if set and the signed offset otherwise.
func (z Zone) String() string {
	if z.Name != "" {
		return z.Name
	}
	return formatOffset(z.Offset)
}

func formatOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if s != 0 {
		return fmt.Sprintf("%c%02d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%c%02d:%02d", sign, h, m)
}

// DateTime is a parsed date, time or combined date and time.
type DateTime struct {
	Date
	Clock
	Zone *Zone `json:"zone,omitempty"`

	HasDate bool `json:"has_date"`
	HasTime bool `json:"has_time"`

	// Extended is set when separators were used in the date or time.
	Extended bool `json:"extended"`

	// MidnightRollover marks an hour-24 time. The date is left as written.
	MidnightRollover bool `json:"midnight_rollover,omitempty"`
}

// Rolled returns dt with a pending midnight rollover applied, moving the
// clock to 00:00:00 of the following day.
func (dt DateTime) Rolled() DateTime {
	if !dt.MidnightRollover {
		return dt
	}
	dt.MidnightRollover = false
	dt.Hour = 0
	if !dt.HasDate {
		return dt
	}
	dt.Day++
	if dt.Day > calendar.DaysInMonth(dt.Year, dt.Month) {
		dt.Day = 1
		dt.Month++
		if dt.Month > 12 {
			dt.Month = 1
			dt.Year++
		}
	}
	return dt
}

// CalendarDate returns the date with any midnight rollover applied.
func (dt DateTime) CalendarDate() (year, month, day int) {
	r := dt.Rolled()
	return r.Year, r.Month, r.Day
}

// TimeOfDay returns the clock with any midnight rollover applied. ok is
// false for a date without a time.
func (dt DateTime) TimeOfDay() (hour, minute, second, microsecond int, ok bool) {
	r := dt.Rolled()
	return r.Hour, r.Minute, r.Second, r.Microsecond, dt.HasTime
}

// UTCOffset returns the zone offset in seconds. ok is false for local time.
func (dt DateTime) UTCOffset() (seconds int, ok bool) {
	if dt.Zone == nil {
		return 0, false
	}
	return dt.Zone.Offset, true
}

// ZoneName returns the zone label or "".
func (dt DateTime) ZoneName() string {
	if dt.Zone == nil {
		return ""
	}
	return dt.Zone.Name
}

// String formats dt in the ISO-8601 extended format.
func (dt DateTime) String() string {
	var b strings.Builder
	if dt.HasDate {
		fmt.Fprintf(&b, "%04d-%02d-%02d", dt.Year, dt.Month, dt.Day)
		if dt.HasTime {
			b.WriteByte('T')
		}
	}
	if dt.HasTime {
		fmt.Fprintf(&b, "%02d:%02d:%02d", dt.Hour, dt.Minute, dt.Second)
		if dt.Microsecond != 0 {
			fmt.Fprintf(&b, ".%06d", dt.Microsecond)
		}
		if dt.Zone != nil {
			if *dt.Zone == UTC {
				b.WriteByte('Z')
			} else {
				b.WriteString(formatOffset(dt.Zone.Offset))
			}
		}
	}
	return b.String()
}

// Duration is a non-negative ISO-8601 duration. Fields are kept as
// written and are not normalized into one another, except where a
// fractional component spilled into finer units.
type Duration struct {
	Years        int `json:"years"`
	Months       int `json:"months"`
	Weeks        int `json:"weeks"`
	Days         int `json:"days"`
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	Seconds      int `json:"seconds"`
	Microseconds int `json:"microseconds"`
}

// TotalDays returns the days including whole weeks.
func (d Duration) TotalDays() int {
	return d.Weeks*7 + d.Days
}

// TotalSeconds returns the length of the day and time components in
// seconds. Years and months have no fixed length and are ignored.
func (d Duration) TotalSeconds() float64 {
	secs := d.TotalDays()*calendar.SecsPerDay + d.Hours*calendar.SecsPerHour + d.Minutes*calendar.SecsPerMinute + d.Seconds
	return float64(secs) + float64(d.Microseconds)/1e6
}

// IsZero reports whether every component is zero.
func (d Duration) IsZero() bool {
	return d == Duration{}
}

// String formats d in ISO-8601 designator form, e.g. "P1Y2M10DT2H30M".
func (d Duration) String() string {
	if d.IsZero() {
		return "PT0S"
	}
	var b strings.Builder
	b.WriteByte('P')
	unit := func(v int, u byte) {
		if v != 0 {
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(u)
		}
	}
	unit(d.Years, 'Y')
	unit(d.Months, 'M')
	unit(d.Weeks, 'W')
	unit(d.Days, 'D')
	if d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0 || d.Microseconds != 0 {
		b.WriteByte('T')
		unit(d.Hours, 'H')
		unit(d.Minutes, 'M')
		if d.Microseconds != 0 {
			frac := strings.TrimRight(fmt.Sprintf("%06d", d.Microseconds), "0")
			fmt.Fprintf(&b, "%d.%sS", d.Seconds, frac)
		} else {
			unit(d.Seconds, 'S')
		}
	}
	return b.String()
}

// Kind tags the variant held by a Result.
type Kind int

const (
	KindDateTime Kind = iota + 1
	KindDuration
	KindInterval
)

func (k Kind) String() string {
	switch k {
	case KindDateTime:
		return "datetime"
	case KindDuration:
		return "duration"
	case KindInterval:
		return "interval"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Side is one end of an interval. Exactly one field is set.
type Side struct {
	DateTime *DateTime `json:"datetime,omitempty"`
	Duration *Duration `json:"duration,omitempty"`
}

// Result is the outcome of Parse.
type Result struct {
	Kind Kind `json:"kind"`

	// Set for KindDateTime.
	DateTime *DateTime `json:"datetime,omitempty"`
	// Set for KindDuration.
	Duration *Duration `json:"duration,omitempty"`

	// Set for KindInterval.
	Start *Side `json:"start,omitempty"`
	End   *Side `json:"end,omitempty"`
}
