package starlarkiso

import (
	"math"
	"strings"
	"testing"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

const script = `
def check(got, want, what):
    if got != want:
        fail("%s: got %r, want %r" % (what, got, want))

dt = iso.parse("2023-06-15T13:30:00.25+02:00")
check(dt.year, 2023, "year")
check(dt.day, 15, "day")
check(dt.microsecond, 250000, "microsecond")
check(dt.offset, 7200, "offset")
check(dt.has_time, True, "has_time")
check(dt.iso, "2023-06-15T13:30:00.250000+02:00", "datetime iso")

local = iso.parse("12:00")
check(local.has_date, False, "time-only has_date")
check(local.offset, None, "local offset")

z = iso.parse("2012-W12-3T10Z")
check((z.month, z.day, z.zone), (3, 21, "UTC"), "week date")

d = iso.parse_duration("P1Y2M10DT2H30M")
check((d.years, d.months, d.days, d.hours, d.minutes), (1, 2, 10, 2, 30), "duration")
check(d.iso, "P1Y2M10DT2H30M", "duration iso")

iv = iso.parse("2023-01-01/P1D")
check(iv.start.day, 1, "interval start")
check(iv.end.days, 1, "interval end")

f = iso.local_time(1234567890, offset = 3600, us = 42)
check((f.year, f.month, f.day, f.hour, f.minute, f.second, f.microsecond), (2009, 2, 14, 0, 31, 30, 42), "local_time")
check(iso.local_time(-0.5).second, 59, "local_time floor")
check(iso.epoch_seconds(2009, 2, 13, 23, 31, 30), 1234567890, "epoch_seconds")

pd = iso.precise_diff("2023-01-31", "2023-03-01")
check((pd.months, pd.days, pd.total_days), (1, 1, 29), "precise_diff")
check(pd.iso, "P1M1D", "precise_diff iso")
check(iso.precise_diff("2023-03-01", "2023-01-31").iso, "-P1M1D", "negative diff")

check(iso.is_leap(2000), True, "is_leap 2000")
check(iso.is_leap(1900), False, "is_leap 1900")
check(iso.is_long_year(2020), True, "is_long_year 2020")
check(iso.is_long_year(2021), False, "is_long_year 2021")
check(iso.days_in_year(2024), 366, "days_in_year")
check(iso.week_day(2023, 6, 15), 4, "week_day")
check(iso.day_number(2024, 3, 1) - iso.day_number(2024, 2, 1), 29, "day_number")
`

func TestModule(t *testing.T) {
	thread := &starlark.Thread{Name: "test"}
	if _, err := starlark.ExecFile(thread, "iso_test.star", script, starlark.StringDict{ModuleName: Module}); err != nil {
		if evalErr, ok := err.(*starlark.EvalError); ok {
			t.Fatal(evalErr.Backtrace())
		}
		t.Fatal(err)
	}
}

func TestLoadModule(t *testing.T) {
	globals, err := LoadModule()
	if err != nil {
		t.Fatal(err)
	}
	if globals[ModuleName] != Module {
		t.Errorf("LoadModule()[%q] = %v", ModuleName, globals[ModuleName])
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		fn   string
		args starlark.Tuple
		want string
	}{
		{"parse", starlark.Tuple{starlark.String("2023-13-01")}, "parse: iso8601: "},
		{"parse_duration", starlark.Tuple{starlark.String("P1S")}, "parse_duration: iso8601: "},
		{"local_time", starlark.Tuple{starlark.String("0")}, "ts must be a number"},
		{"local_time", starlark.Tuple{starlark.MakeInt(0), starlark.MakeInt(0), starlark.MakeInt(1000000)}, "microsecond 1000000"},
		{"local_time", starlark.Tuple{starlark.MakeInt(0), starlark.MakeInt(86401)}, "offset 86401"},
		{"local_time", starlark.Tuple{starlark.MakeInt(0), starlark.MakeInt(-864000000)}, "offset -864000000"},
		{"local_time", starlark.Tuple{starlark.MakeInt(0), starlark.MakeUint64(math.MaxUint64)}, "out of range"},
		{"local_time", starlark.Tuple{starlark.Float(math.NaN())}, "timestamp NaN"},
		{"local_time", starlark.Tuple{starlark.Float(math.Inf(1))}, "timestamp +Inf"},
		{"local_time", starlark.Tuple{starlark.Float(math.Inf(-1))}, "timestamp -Inf"},
		{"local_time", starlark.Tuple{starlark.Float(1e30)}, "timestamp 1e+30"},
		{"local_time", starlark.Tuple{starlark.MakeUint64(math.MaxUint64)}, "timestamp"},
		{"precise_diff", starlark.Tuple{starlark.String("2023-01-01"), starlark.String("12:00")}, "has no date"},
		{"week_day", starlark.Tuple{starlark.MakeInt(2023), starlark.MakeInt(13), starlark.MakeInt(1)}, "month out of range"},
		{"day_number", starlark.Tuple{starlark.MakeInt(2023), starlark.MakeInt(2), starlark.MakeInt(29)}, "day out of range [1, 28]"},
		{"is_leap", nil, "got 0 arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			thread := &starlark.Thread{Name: "test"}
			_, err := starlark.Call(thread, Module.Members[tt.fn], tt.args, nil)
			if err == nil {
				t.Fatalf("%s%v succeeded", tt.fn, tt.args)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("%s%v error = %q, want substring %q", tt.fn, tt.args, err, tt.want)
			}
		})
	}
}

func TestParseResultIsStruct(t *testing.T) {
	thread := &starlark.Thread{Name: "test"}
	v, err := starlark.Call(thread, Module.Members["parse"], starlark.Tuple{starlark.String("P2W")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := v.(*starlarkstruct.Struct)
	if !ok {
		t.Fatalf("parse returned %s, want struct", v.Type())
	}
	if s.Constructor() != durationCtor {
		t.Errorf("constructor = %v, want %v", s.Constructor(), durationCtor)
	}
	weeks, err := s.Attr("weeks")
	if err != nil {
		t.Fatal(err)
	}
	if eq, err := starlark.Equal(weeks, starlark.MakeInt(2)); err != nil || !eq {
		t.Errorf("weeks = %v, want 2", weeks)
	}
}
