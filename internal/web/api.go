package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"isocal/calendar"
	"isocal/diff"
	"isocal/iso8601"
)

var errorKinds = []struct {
	err  error
	name string
}{
	{iso8601.ErrTruncated, "truncated"},
	{iso8601.ErrInvalidCharacter, "invalid_character"},
	{iso8601.ErrInvalidValue, "invalid_value"},
	{iso8601.ErrFormat, "format"},
	{iso8601.ErrZoneRange, "zone_range"},
	{iso8601.ErrDuration, "duration"},
	{iso8601.ErrTrailing, "trailing"},
}

// writeParseError reports a failed parse of the named query parameter as
// 400 with the error position and kind.
func writeParseError(w http.ResponseWriter, param string, err error) {
	resp := errorResponse{Error: fmt.Sprintf("%s: %v", param, err)}
	var pe *iso8601.ParseError
	if errors.As(err, &pe) {
		pos := pe.Pos
		resp.Pos = &pos
		for _, k := range errorKinds {
			if errors.Is(pe, k.err) {
				resp.Kind = k.name
				break
			}
		}
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

// handleParse parses any ISO-8601 value.
//
// GET /api/parse?q=2023-06-15T13:30:00%2B02:00
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("q") {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	res, err := iso8601.Parse(q.Get("q"))
	if err != nil {
		writeParseError(w, "q", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleLocalTime converts a Unix timestamp to calendar fields.
//
// GET /api/localtime?ts=1234567890&offset=3600&us=0
//   - offset: seconds east of UTC, or a designator such as "+09:00"
//     (default: the configured timezone)
//   - us:     microsecond to carry into the result (default 0)
func (s *Server) handleLocalTime(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ts, err := strconv.ParseFloat(q.Get("ts"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ts must be a number")
		return
	}

	offset := 0
	switch raw := q.Get("offset"); {
	case raw == "":
		z, err := s.cfg.Zone()
		if err == nil {
			offset = z.Offset
		}
	default:
		n, err := strconv.Atoi(raw)
		switch {
		case err == nil:
			offset = n
		case errors.Is(err, strconv.ErrRange):
			writeError(w, http.StatusBadRequest, "offset out of range")
			return
		default:
			z, err := iso8601.ParseZone(raw)
			if err != nil {
				writeParseError(w, "offset", err)
				return
			}
			offset = z.Offset
		}
	}

	us := 0
	if raw := q.Get("us"); raw != "" {
		if us, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, "us must be an integer")
			return
		}
	}
	if err := calendar.CheckLocalTime(ts, offset, us); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, calendar.LocalTime(ts, offset, us))
}

type diffResponse struct {
	diff.PreciseDiff
	Duration string `json:"duration"`
	InWeeks  int    `json:"in_weeks"`
	InMonths int    `json:"in_months"`
}

// handleDiff returns the precise difference to - from.
//
// GET /api/diff?from=2023-01-31&to=2023-03-01
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var values [2]iso8601.DateTime
	for i, name := range []string{"from", "to"} {
		if !q.Has(name) {
			writeError(w, http.StatusBadRequest, "missing query parameter "+name)
			return
		}
		dt, err := iso8601.ParseDateTime(q.Get(name))
		if err != nil {
			writeParseError(w, name, err)
			return
		}
		if !dt.HasDate {
			writeError(w, http.StatusBadRequest, name+" must include a date")
			return
		}
		values[i] = dt
	}

	d := diff.Precise(values[0], values[1])
	writeJSON(w, http.StatusOK, diffResponse{
		PreciseDiff: d,
		Duration:    d.String(),
		InWeeks:     d.InWeeks(),
		InMonths:    d.InMonths(),
	})
}
