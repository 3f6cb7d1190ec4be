package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "isocal/internal/log"
	"isocal/iso8601"
)

// ParsedEvent is the normalized representation of a VEVENT. Recurrence
// expansion operates on this type.
type ParsedEvent struct {
	Source Source

	UID string
	Seq int

	Summary     string
	Description string
	Location    string

	Start   time.Time
	End     time.Time
	AllDay  bool
	StartTZ string
	EndTZ   string

	// Duration is set when the event gave DURATION instead of DTEND.
	Duration *iso8601.Duration

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID in the event's own zone
	IsOverride bool       // the VEVENT overrides one instance of a recurring event
}

// ParseICS parses a single ICS payload into a list of ParsedEvent.
//
// DATE and DATE-TIME values are ISO-8601 basic format and are decoded with
// package iso8601. A TZID parameter selects the IANA zone. Floating times
// and unknown zones are placed in floating.
//
// Invalid VEVENTs are logged and skipped.
func ParseICS(src Source, body []byte, floating *time.Location) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if floating == nil {
		floating = time.UTC
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(src, comp, floating)
		if perr != nil {
			appLog.Warn("ics vevent skipped", "err", perr, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "url", redactURL(src.URL), "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent, floating *time.Location) (ParsedEvent, error) {
	out := ParsedEvent{Source: src}

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if seqProp := ve.GetProperty(ical.ComponentPropertySequence); seqProp != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(seqProp.Value)); err == nil {
			out.Seq = n
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return out, fmt.Errorf("event %s: missing DTSTART", out.UID)
	}
	start, dateOnly, err := propTime(startProp, floating)
	if err != nil {
		return out, fmt.Errorf("event %s: DTSTART: %w", out.UID, err)
	}
	out.Start = start
	out.StartTZ = param(startProp, "TZID")
	out.AllDay = dateOnly || strings.EqualFold(param(startProp, "VALUE"), "DATE")

	switch {
	case ve.GetProperty(ical.ComponentPropertyDtEnd) != nil:
		endProp := ve.GetProperty(ical.ComponentPropertyDtEnd)
		end, _, err := propTime(endProp, floating)
		if err != nil {
			return out, fmt.Errorf("event %s: DTEND: %w", out.UID, err)
		}
		out.End = end
		out.EndTZ = param(endProp, "TZID")

	case ve.GetProperty("DURATION") != nil:
		d, err := parseICSDuration(ve.GetProperty("DURATION").Value)
		if err != nil {
			return out, fmt.Errorf("event %s: DURATION: %w", out.UID, err)
		}
		out.Duration = &d
		out.End = addDuration(start, d)

	case out.AllDay:
		out.End = start.AddDate(0, 0, 1)

	default:
		out.End = start
	}
	if out.End.Before(out.Start) {
		return out, fmt.Errorf("event %s: ends before it starts", out.UID)
	}

	if rruleProp := ve.GetProperty(ical.ComponentPropertyRrule); rruleProp != nil {
		out.RawRRule = rruleProp.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		loc := propLocation(p, floating)
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			t, _, err := decodeTime(part, loc)
			if err != nil {
				appLog.Warn("ics exdate skipped", "uid", out.UID, "value", part, "err", err)
				continue
			}
			out.ExDates = append(out.ExDates, t)
		}
	}

	if ridProp := ve.GetProperty("RECURRENCE-ID"); ridProp != nil {
		t, _, err := propTime(ridProp, floating)
		if err != nil {
			return out, fmt.Errorf("event %s: RECURRENCE-ID: %w", out.UID, err)
		}
		out.Recurrence = &t
		out.IsOverride = true
	}

	return out, nil
}

func param(p *ical.IANAProperty, name string) string {
	if p == nil || p.ICalParameters == nil {
		return ""
	}
	if vs := p.ICalParameters[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func propLocation(p *ical.IANAProperty, floating *time.Location) *time.Location {
	tzid := param(p, "TZID")
	if tzid == "" {
		return floating
	}
	loc, err := time.LoadLocation(tzid)
	if err != nil {
		appLog.Warn("unknown TZID, using floating time", "tzid", tzid, "err", err)
		return floating
	}
	return loc
}

func propTime(p *ical.IANAProperty, floating *time.Location) (time.Time, bool, error) {
	return decodeTime(strings.TrimSpace(p.Value), propLocation(p, floating))
}

// decodeTime parses an iCalendar DATE ("20250101") or DATE-TIME
// ("20250101T090000", "20250101T090000Z"). dateOnly is set for a DATE.
func decodeTime(v string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	dt, err := iso8601.ParseDateTime(v)
	if err != nil {
		return time.Time{}, false, err
	}
	if !dt.HasDate {
		return time.Time{}, false, fmt.Errorf("%q has no date", v)
	}
	return toTime(dt, loc), !dt.HasTime, nil
}

// toTime converts a parsed date-time to a time.Time. A UTC designator or
// offset in the value wins over loc.
func toTime(dt iso8601.DateTime, loc *time.Location) time.Time {
	dt = dt.Rolled()
	if dt.Zone != nil {
		loc = zoneLocation(*dt.Zone)
	}
	return time.Date(dt.Year, time.Month(dt.Month), dt.Day,
		dt.Hour, dt.Minute, dt.Second, dt.Microsecond*1000, loc)
}

func zoneLocation(z iso8601.Zone) *time.Location {
	if z == iso8601.UTC || z.Offset == 0 {
		return time.UTC
	}
	return time.FixedZone(z.String(), z.Offset)
}

// parseICSDuration accepts the RFC 5545 form, which allows a leading "+".
// Negative durations are only meaningful for alarms and are rejected.
func parseICSDuration(v string) (iso8601.Duration, error) {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "-") {
		return iso8601.Duration{}, fmt.Errorf("negative duration %q", v)
	}
	return iso8601.ParseDuration(strings.TrimPrefix(v, "+"))
}

// addDuration adds the nominal (Y, M, W, D) components on the calendar
// and the clock components as elapsed time.
func addDuration(t time.Time, d iso8601.Duration) time.Time {
	t = t.AddDate(d.Years, d.Months, d.TotalDays())
	return t.Add(time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second +
		time.Duration(d.Microseconds)*time.Microsecond)
}
