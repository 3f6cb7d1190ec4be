package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"isocal/calendar"
	appLog "isocal/internal/log"
)

func TestMain(m *testing.M) {
	appLog.SetOutput(&bytes.Buffer{})
	os.Exit(m.Run())
}

func TestRunUsage(t *testing.T) {
	tests := [][]string{
		nil,
		{"nope"},
		{"parse"},
		{"diff", "2023-01-01"},
		{"localtime"},
	}
	for _, args := range tests {
		var stdout, stderr bytes.Buffer
		if code := run(args, &stdout, &stderr); code != 2 {
			t.Errorf("run(%q) = %d, want 2", args, code)
		}
		if !strings.Contains(stderr.String(), "usage: isocal") {
			t.Errorf("run(%q) stderr = %q", args, stderr.String())
		}
	}
}

func TestRunParse(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"parse", "2023-06-15", "PT36H"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d, stderr %q", code, stderr.String())
	}
	dec := json.NewDecoder(&stdout)
	var kinds []string
	for dec.More() {
		var v struct {
			Kind string `json:"kind"`
		}
		if err := dec.Decode(&v); err != nil {
			t.Fatal(err)
		}
		kinds = append(kinds, v.Kind)
	}
	if d := cmp.Diff([]string{"datetime", "duration"}, kinds); d != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", d)
	}

	stdout.Reset()
	if code := run([]string{"parse", "2023-02-30", "2023"}, &stdout, &stderr); code != 1 {
		t.Errorf("invalid input exit = %d, want 1", code)
	}
	if !strings.Contains(stdout.String(), `"year": 2023`) {
		t.Errorf("valid argument after an invalid one not printed: %q", stdout.String())
	}
}

func TestRunLocalTime(t *testing.T) {
	tests := []struct {
		args []string
		want calendar.Fields
	}{
		{[]string{"localtime", "1234567890"}, calendar.Fields{Year: 2009, Month: 2, Day: 13, Hour: 23, Minute: 31, Second: 30}},
		{[]string{"localtime", "-offset", "+09:00", "-us", "7", "0"}, calendar.Fields{Year: 1970, Month: 1, Day: 1, Hour: 9, Microsecond: 7}},
		{[]string{"localtime", "-offset", "-3600", "0"}, calendar.Fields{Year: 1969, Month: 12, Day: 31, Hour: 23}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[1:], " "), func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != 0 {
				t.Fatalf("exit %d", code)
			}
			var got calendar.Fields
			if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("mismatch (-want +got):\n%s", d)
			}
		})
	}

	rejected := [][]string{
		{"-offset", "+24:30", "0"},
		{"-offset", "86401", "0"},
		{"-offset", "9223372036854775807", "0"},
		{"-offset", "99999999999999999999", "0"},
		{"-us", "1000000", "0"},
		{"NaN"},
		{"Inf"},
		{"--", "-Inf"},
		{"1e30"},
		{"abc"},
	}
	for _, args := range rejected {
		var stdout, stderr bytes.Buffer
		if code := run(append([]string{"localtime"}, args...), &stdout, &stderr); code != 1 {
			t.Errorf("localtime %q exit = %d, want 1", args, code)
		}
		if stdout.Len() != 0 {
			t.Errorf("localtime %q printed %q", args, stdout.String())
		}
	}
}

func TestRunDiff(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"diff", "2023-01-31", "2023-03-01"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d", code)
	}
	var got struct {
		Duration  string `json:"duration"`
		TotalDays int    `json:"total_days"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Duration != "P1M1D" || got.TotalDays != 29 {
		t.Errorf("got %+v", got)
	}

	if code := run([]string{"diff", "2023-01-31", "T12"}, &stdout, &stderr); code != 1 {
		t.Errorf("time-only argument exit = %d, want 1", code)
	}
}

func TestRunEventsWithoutFeeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	conf := "cache_dir: " + dir + "\nics: []\n"
	if err := os.WriteFile(path, []byte(conf), 0o600); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"events", "-config", path, "-days", "2"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d", code)
	}
	var got struct {
		Occurrences []json.RawMessage `json:"occurrences"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Occurrences == nil || len(got.Occurrences) != 0 {
		t.Errorf("occurrences = %v, want empty list", got.Occurrences)
	}
}
