// Package starlarkiso exposes the ISO-8601 parser and the calendar
// arithmetic to Starlark programs as the "iso" module.
//
// Parsed values are returned as structs whose fields mirror the Go
// types: iso.datetime, iso.duration, iso.interval, iso.fields and
// iso.diff. Every struct carries an "iso" field with the canonical
// string form where one exists.
package starlarkiso

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"isocal/calendar"
	"isocal/diff"
	"isocal/iso8601"
)

// ModuleName defines the expected name for this Module when used
// in starlark's load() function, eg: load('iso', 'parse')
const ModuleName = "iso"

// Module is the iso module, safe to share between threads.
var Module = &starlarkstruct.Module{
	Name: ModuleName,
	Members: starlark.StringDict{
		"parse":          starlark.NewBuiltin("parse", parse),
		"parse_duration": starlark.NewBuiltin("parse_duration", parseDuration),
		"local_time":     starlark.NewBuiltin("local_time", localTime),
		"epoch_seconds":  starlark.NewBuiltin("epoch_seconds", epochSeconds),
		"precise_diff":   starlark.NewBuiltin("precise_diff", preciseDiff),
		"is_leap":        starlark.NewBuiltin("is_leap", isLeap),
		"is_long_year":   starlark.NewBuiltin("is_long_year", isLongYear),
		"days_in_year":   starlark.NewBuiltin("days_in_year", daysInYear),
		"week_day":       starlark.NewBuiltin("week_day", weekDay),
		"day_number":     starlark.NewBuiltin("day_number", dayNumber),
	},
}

// LoadModule loads the iso module.
// It is concurrency-safe and idempotent.
func LoadModule() (starlark.StringDict, error) {
	return starlark.StringDict{ModuleName: Module}, nil
}

var (
	dateTimeCtor = starlark.String("iso.datetime")
	durationCtor = starlark.String("iso.duration")
	intervalCtor = starlark.String("iso.interval")
	fieldsCtor   = starlark.String("iso.fields")
	diffCtor     = starlark.String("iso.diff")
)

func parse(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}
	res, err := iso8601.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	switch res.Kind {
	case iso8601.KindDateTime:
		return dateTimeValue(*res.DateTime), nil
	case iso8601.KindDuration:
		return durationValue(*res.Duration), nil
	default:
		return starlarkstruct.FromStringDict(intervalCtor, starlark.StringDict{
			"start": sideValue(res.Start),
			"end":   sideValue(res.End),
		}), nil
	}
}

func parseDuration(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}
	d, err := iso8601.ParseDuration(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return durationValue(d), nil
}

func localTime(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		ts     starlark.Value
		offset int
		us     int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "ts", &ts, "offset?", &offset, "us?", &us); err != nil {
		return nil, err
	}
	unix, ok := starlark.AsFloat(ts)
	if !ok {
		return nil, fmt.Errorf("%s: ts must be a number, got %s", b.Name(), ts.Type())
	}
	if err := calendar.CheckLocalTime(unix, offset, us); err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	f := calendar.LocalTime(unix, offset, us)
	return starlarkstruct.FromStringDict(fieldsCtor, starlark.StringDict{
		"year":        starlark.MakeInt(f.Year),
		"month":       starlark.MakeInt(f.Month),
		"day":         starlark.MakeInt(f.Day),
		"hour":        starlark.MakeInt(f.Hour),
		"minute":      starlark.MakeInt(f.Minute),
		"second":      starlark.MakeInt(f.Second),
		"microsecond": starlark.MakeInt(f.Microsecond),
	}), nil
}

func epochSeconds(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var year, month, day, hour, minute, second int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"year", &year, "month", &month, "day", &day,
		"hour?", &hour, "minute?", &minute, "second?", &second); err != nil {
		return nil, err
	}
	if err := checkDate(b.Name(), year, month, day); err != nil {
		return nil, err
	}
	return starlark.MakeInt64(calendar.EpochSeconds(year, month, day, hour, minute, second)), nil
}

func preciseDiff(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var from, to string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "a", &from, "b", &to); err != nil {
		return nil, err
	}
	var values [2]iso8601.DateTime
	for i, text := range []string{from, to} {
		dt, err := iso8601.ParseDateTime(text)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		if !dt.HasDate {
			return nil, fmt.Errorf("%s: %q has no date", b.Name(), text)
		}
		values[i] = dt
	}
	d := diff.Precise(values[0], values[1])
	return starlarkstruct.FromStringDict(diffCtor, starlark.StringDict{
		"years":        starlark.MakeInt(d.Years),
		"months":       starlark.MakeInt(d.Months),
		"days":         starlark.MakeInt(d.Days),
		"hours":        starlark.MakeInt(d.Hours),
		"minutes":      starlark.MakeInt(d.Minutes),
		"seconds":      starlark.MakeInt(d.Seconds),
		"microseconds": starlark.MakeInt(d.Microseconds),
		"total_days":   starlark.MakeInt(d.TotalDays),
		"in_weeks":     starlark.MakeInt(d.InWeeks()),
		"in_months":    starlark.MakeInt(d.InMonths()),
		"iso":          starlark.String(d.String()),
	}), nil
}

func isLeap(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var year int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &year); err != nil {
		return nil, err
	}
	return starlark.Bool(calendar.IsLeap(year)), nil
}

func isLongYear(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var year int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &year); err != nil {
		return nil, err
	}
	return starlark.Bool(calendar.IsLongYear(year)), nil
}

func daysInYear(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var year int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &year); err != nil {
		return nil, err
	}
	return starlark.MakeInt(calendar.DaysInYear(year)), nil
}

func weekDay(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var year, month, day int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 3, &year, &month, &day); err != nil {
		return nil, err
	}
	if err := checkDate(b.Name(), year, month, day); err != nil {
		return nil, err
	}
	return starlark.MakeInt(calendar.WeekDay(year, month, day)), nil
}

func dayNumber(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var year, month, day int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 3, &year, &month, &day); err != nil {
		return nil, err
	}
	if err := checkDate(b.Name(), year, month, day); err != nil {
		return nil, err
	}
	return starlark.MakeInt(calendar.DayNumber(year, month, day)), nil
}

// checkDate guards the table lookups in the calendar package.
func checkDate(fn string, year, month, day int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%s: month out of range [1, 12]: %d", fn, month)
	}
	if n := calendar.DaysInMonth(year, month); day < 1 || day > n {
		return fmt.Errorf("%s: day out of range [1, %d]: %d", fn, n, day)
	}
	return nil
}

func dateTimeValue(dt iso8601.DateTime) starlark.Value {
	offset := starlark.Value(starlark.None)
	if secs, ok := dt.UTCOffset(); ok {
		offset = starlark.MakeInt(secs)
	}
	return starlarkstruct.FromStringDict(dateTimeCtor, starlark.StringDict{
		"year":              starlark.MakeInt(dt.Year),
		"month":             starlark.MakeInt(dt.Month),
		"day":               starlark.MakeInt(dt.Day),
		"hour":              starlark.MakeInt(dt.Hour),
		"minute":            starlark.MakeInt(dt.Minute),
		"second":            starlark.MakeInt(dt.Second),
		"microsecond":       starlark.MakeInt(dt.Microsecond),
		"offset":            offset,
		"zone":              starlark.String(dt.ZoneName()),
		"has_date":          starlark.Bool(dt.HasDate),
		"has_time":          starlark.Bool(dt.HasTime),
		"extended":          starlark.Bool(dt.Extended),
		"midnight_rollover": starlark.Bool(dt.MidnightRollover),
		"iso":               starlark.String(dt.String()),
	})
}

func durationValue(d iso8601.Duration) starlark.Value {
	return starlarkstruct.FromStringDict(durationCtor, starlark.StringDict{
		"years":         starlark.MakeInt(d.Years),
		"months":        starlark.MakeInt(d.Months),
		"weeks":         starlark.MakeInt(d.Weeks),
		"days":          starlark.MakeInt(d.Days),
		"hours":         starlark.MakeInt(d.Hours),
		"minutes":       starlark.MakeInt(d.Minutes),
		"seconds":       starlark.MakeInt(d.Seconds),
		"microseconds":  starlark.MakeInt(d.Microseconds),
		"total_seconds": starlark.Float(d.TotalSeconds()),
		"iso":           starlark.String(d.String()),
	})
}

func sideValue(s *iso8601.Side) starlark.Value {
	switch {
	case s == nil:
		return starlark.None
	case s.DateTime != nil:
		return dateTimeValue(*s.DateTime)
	default:
		return durationValue(*s.Duration)
	}
}
