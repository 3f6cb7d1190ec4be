package iso8601

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want Duration
	}{
		{"P1Y2M10DT2H30M", Duration{Years: 1, Months: 2, Days: 10, Hours: 2, Minutes: 30}},
		{"P2Y30M4DT5H6M7S", Duration{Years: 2, Months: 30, Days: 4, Hours: 5, Minutes: 6, Seconds: 7}},
		{"P3W", Duration{Weeks: 3}},
		{"P0W", Duration{}},
		{"P1WT2H", Duration{Weeks: 1, Hours: 2}},
		{"PT36H", Duration{Hours: 36}},
		{"P1.5W", Duration{Weeks: 1, Days: 3, Hours: 12}},
		{"P1,5D", Duration{Days: 1, Hours: 12}},
		{"P0.5D", Duration{Hours: 12}},
		{"PT1.5H", Duration{Hours: 1, Minutes: 30}},
		{"P1DT0.1H", Duration{Days: 1, Minutes: 6}},
		{"PT1.25M", Duration{Minutes: 1, Seconds: 15}},
		{"PT6.5S", Duration{Seconds: 6, Microseconds: 500000}},
		{"PT0.000001S", Duration{Microseconds: 1}},
		{"PT1.9999999S", Duration{Seconds: 2}},
		{"P1Y2M3DT4H5M6.5S", Duration{Years: 1, Months: 2, Days: 3, Hours: 4, Minutes: 5, Seconds: 6, Microseconds: 500000}},
		{"PT2147483647S", Duration{Seconds: 2147483647}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if err != nil {
				t.Fatalf("ParseDuration(%q) error: %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseDuration(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseDurationErrors(t *testing.T) {
	tests := []struct {
		in   string
		kind error
	}{
		{"", ErrTruncated},
		{"1D", ErrInvalidCharacter},
		{"P1D/P2D", ErrTrailing},
		{"PT2147483648S", ErrDuration},
		{"P1.5DT1H", ErrDuration},
		{"P1.D", ErrInvalidCharacter},
		{"PT1.", ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseDuration(tt.in)
			if !errors.Is(err, tt.kind) {
				t.Errorf("ParseDuration(%q) error = %v, want %v", tt.in, err, tt.kind)
			}
		})
	}
}

func TestDurationString(t *testing.T) {
	tests := []struct {
		d    Duration
		want string
	}{
		{Duration{}, "PT0S"},
		{Duration{Years: 1, Months: 2, Days: 10, Hours: 2, Minutes: 30}, "P1Y2M10DT2H30M"},
		{Duration{Weeks: 3}, "P3W"},
		{Duration{Seconds: 6, Microseconds: 500000}, "PT6.5S"},
		{Duration{Microseconds: 1}, "PT0.000001S"},
		{Duration{Days: 1, Seconds: 1}, "P1DT1S"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestDurationTotals(t *testing.T) {
	d := Duration{Weeks: 2, Days: 3, Hours: 1, Microseconds: 500000}
	if got := d.TotalDays(); got != 17 {
		t.Errorf("TotalDays() = %d, want 17", got)
	}
	if got, want := d.TotalSeconds(), 17*86400+3600+0.5; got != want {
		t.Errorf("TotalSeconds() = %v, want %v", got, want)
	}
	if d.IsZero() || !(Duration{}).IsZero() {
		t.Error("IsZero mismatch")
	}
}
