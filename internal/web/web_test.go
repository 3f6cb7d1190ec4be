package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"isocal/calendar"
	"isocal/internal/config"
	"isocal/internal/ics"
)

const feed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//isocal//web test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:daily@test\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART:20250101T090000Z\r\n" +
	"DURATION:PT1H30M\r\n" +
	"RRULE:FREQ=DAILY\r\n" +
	"SUMMARY:Daily\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(feed))
	}))
	t.Cleanup(feedSrv.Close)

	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	cfg.ICS = []config.ICSConfig{{ID: "test", URL: feedSrv.URL + "/feed.ics"}}
	if mutate != nil {
		mutate(cfg)
	}

	s, err := NewServer(cfg, ics.NewFetcher(cfg.CacheDir, feedSrv.Client()))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	s.now = func() time.Time { return time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC) }
	return s, &hits
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := get(t, s.Handler(), "/health")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("GET /health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestBasicAuth(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "u", Password: "p"}
	})
	h := s.Handler()

	if rec := get(t, h, "/health"); rec.Code != http.StatusOK {
		t.Errorf("/health behind auth: %d", rec.Code)
	}
	if rec := get(t, h, "/api/parse?q=2023"); rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated request: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/parse?q=2023", nil)
	req.SetBasicAuth("u", "p")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated request: %d %s", rec.Code, rec.Body.String())
	}
}

func TestParseEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	rec := get(t, h, "/api/parse?"+url.Values{"q": {"2023-06-15T13:30:00+02:00"}}.Encode())
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	type zone struct {
		Offset int `json:"offset"`
	}
	type dateTime struct {
		Year, Month, Day, Hour, Minute int
		Zone                           zone `json:"zone"`
	}
	got := decode[struct {
		Kind     string   `json:"kind"`
		DateTime dateTime `json:"datetime"`
	}](t, rec)
	if got.Kind != "datetime" || got.DateTime.Year != 2023 || got.DateTime.Day != 15 || got.DateTime.Zone.Offset != 7200 {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}

	rec = get(t, h, "/api/parse?q=P1Y2M10DT2H30M")
	if !strings.Contains(rec.Body.String(), `"kind":"duration"`) {
		t.Errorf("duration body: %s", rec.Body.String())
	}
}

func TestParseEndpointErrors(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	rec := get(t, h, "/api/parse?q=2023-13-01")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	got := decode[errorResponse](t, rec)
	if got.Pos == nil || *got.Pos != 5 || got.Kind != "invalid_value" {
		t.Errorf("error body: %s", rec.Body.String())
	}

	if rec := get(t, h, "/api/parse"); rec.Code != http.StatusBadRequest {
		t.Errorf("missing q: %d", rec.Code)
	}
}

func TestLocalTimeEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	tests := []struct {
		query string
		want  calendar.Fields
	}{
		{"ts=1234567890&offset=0", calendar.Fields{Year: 2009, Month: 2, Day: 13, Hour: 23, Minute: 31, Second: 30}},
		{"ts=1234567890&offset=%2B01:00&us=42", calendar.Fields{Year: 2009, Month: 2, Day: 14, Hour: 0, Minute: 31, Second: 30, Microsecond: 42}},
		{"ts=0", calendar.Fields{Year: 1970, Month: 1, Day: 1}},
		{"ts=0&offset=-86400", calendar.Fields{Year: 1969, Month: 12, Day: 31}},
	}
	for _, tt := range tests {
		rec := get(t, h, "/api/localtime?"+tt.query)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d %s", tt.query, rec.Code, rec.Body.String())
			continue
		}
		if d := cmp.Diff(tt.want, decode[calendar.Fields](t, rec)); d != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", tt.query, d)
		}
	}

	for _, q := range []string{
		"ts=abc",
		"ts=0&us=1000000",
		"ts=0&us=x",
		"ts=0&offset=%2B25:00",
		"ts=0&offset=86401",
		"ts=0&offset=-864000000",
		"ts=0&offset=9223372036854775807",
		"ts=0&offset=99999999999999999999",
		"ts=NaN",
		"ts=Inf",
		"ts=-Inf",
		"ts=1e30",
		"ts=1e400",
	} {
		if rec := get(t, h, "/api/localtime?"+q); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", q, rec.Code)
		}
	}
}

func TestDiffEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := get(t, s.Handler(), "/api/diff?from=2023-01-31&to=2023-03-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[map[string]any](t, rec)
	want := map[string]any{
		"years": 0.0, "months": 1.0, "days": 1.0,
		"hours": 0.0, "minutes": 0.0, "seconds": 0.0, "microseconds": 0.0,
		"total_days": 29.0, "duration": "P1M1D", "in_weeks": 4.0, "in_months": 1.0,
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("diff body mismatch (-want +got):\n%s", d)
	}

	rec = get(t, s.Handler(), "/api/diff?from=2023-01-31&to=12:00")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("time-only to: status %d", rec.Code)
	}
}

func TestEventsEndpoint(t *testing.T) {
	s, hits := newTestServer(t, func(c *config.Config) { c.HorizonDays = 3 })
	h := s.Handler()

	rec := get(t, h, "/api/events?days=3&backfill=0")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	type occurrence struct {
		UID      string    `json:"uid"`
		Start    time.Time `json:"start"`
		Duration string    `json:"duration"`
	}
	got := decode[struct {
		Occurrences []occurrence `json:"occurrences"`
	}](t, rec)

	// Window is 2025-01-10T00:00Z to 2025-01-13T00:00Z.
	if len(got.Occurrences) != 3 {
		t.Fatalf("got %d occurrences, want 3: %s", len(got.Occurrences), rec.Body.String())
	}
	first := got.Occurrences[0]
	if !first.Start.Equal(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)) || first.Duration != "PT1H30M" {
		t.Errorf("first occurrence = %+v", first)
	}

	get(t, h, "/api/events?days=3&backfill=0")
	if n := hits.Load(); n != 1 {
		t.Errorf("feed fetched %d times, want 1 (cached)", n)
	}
}

func TestRefresh(t *testing.T) {
	s, hits := newTestServer(t, nil)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("feed not fetched")
	}
	if s.eventsCache == nil {
		t.Fatal("refresh did not populate the default window")
	}

	get(t, s.Handler(), "/api/events")
	if n := hits.Load(); n != 1 {
		t.Errorf("default window refetched: %d hits", n)
	}
}

func TestEventsCacheOnlyDefaultWindow(t *testing.T) {
	s, hits := newTestServer(t, nil)
	h := s.Handler()

	requests := 0
	for days := 1; days <= 40; days++ {
		if days == s.cfg.HorizonDays {
			continue
		}
		if rec := get(t, h, fmt.Sprintf("/api/events?days=%d", days)); rec.Code != http.StatusOK {
			t.Fatalf("days=%d: status %d", days, rec.Code)
		}
		requests++
	}
	if s.eventsCache != nil {
		t.Error("non-default window was cached")
	}
	if n := int(hits.Load()); n != requests {
		t.Errorf("feed fetched %d times for %d uncached requests", n, requests)
	}

	get(t, h, "/api/events")
	get(t, h, "/api/events?days=7&backfill=0")
	if s.eventsCache == nil {
		t.Fatal("default window not cached")
	}
	if n := int(hits.Load()); n != requests+1 {
		t.Errorf("default window fetched %d times, want 1", n-requests)
	}
}

func TestEventsWindowClamped(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := get(t, s.Handler(), "/api/events?days=100000&backfill=100000")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[struct {
		RangeStart time.Time `json:"range_start"`
		RangeEnd   time.Time `json:"range_end"`
	}](t, rec)
	now := s.now()
	if want := now.AddDate(0, 0, maxWindowDays); !got.RangeEnd.Equal(want) {
		t.Errorf("range_end = %v, want %v", got.RangeEnd, want)
	}
	if want := now.AddDate(0, 0, -maxWindowDays); !got.RangeStart.Equal(want) {
		t.Errorf("range_start = %v, want %v", got.RangeStart, want)
	}
}
