package web

import (
	"context"
	"net/http"
	"time"

	"isocal/internal/config"
	"isocal/internal/ics"
	appLog "isocal/internal/log"
	"isocal/internal/model"
)

const (
	eventsCacheTTL = 30 * time.Second

	// maxWindowDays bounds days and backfill of a single request.
	maxWindowDays = 366
)

type eventsKey struct {
	days, backfill int
}

// EventsResponse is the JSON response shape for /api/events.
type EventsResponse struct {
	Occurrences     []occurrenceDTO `json:"occurrences"`
	TruncatedUIDs   []string        `json:"truncated_uids,omitempty"`
	RangeStart      time.Time       `json:"range_start"`
	RangeEnd        time.Time       `json:"range_end"`
	DisplayTimeZone string          `json:"display_timezone"`
}

type eventsCache struct {
	resp      EventsResponse
	updatedAt time.Time
}

// occurrenceDTO adds the ISO-8601 rendering of the length.
type occurrenceDTO struct {
	model.Occurrence
	LengthISO string `json:"duration"`
}

// handleEvents returns expanded occurrences of the configured ICS feeds.
// Only the configured default window is cached; other windows are built
// per request.
//
// GET /api/events?days=7&backfill=1
//   - days:     future days to include, 1..366 (default horizon_days)
//   - backfill: past days to include, 0..366 (default backfill_days)
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := parseIntDefault(q.Get("days"), s.cfg.HorizonDays)
	if days <= 0 {
		days = s.cfg.HorizonDays
	}
	backfill := max(parseIntDefault(q.Get("backfill"), s.cfg.BackfillDays), 0)
	key := eventsKey{days: min(days, maxWindowDays), backfill: min(backfill, maxWindowDays)}

	if key == s.defaultWindow() {
		s.eventsMu.RLock()
		ec := s.eventsCache
		s.eventsMu.RUnlock()
		if ec != nil && s.now().Sub(ec.updatedAt) < eventsCacheTTL {
			writeJSON(w, http.StatusOK, ec.resp)
			return
		}
	}

	resp, err := s.buildEvents(r.Context(), key)
	if err != nil {
		appLog.Error("api events: expand failed", err)
		writeError(w, http.StatusInternalServerError, "failed to expand events")
		return
	}
	if key == s.defaultWindow() {
		s.storeEvents(resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Refresh rebuilds the cached response for the configured default window.
// It is called by the refresh schedule.
func (s *Server) Refresh(ctx context.Context) error {
	resp, err := s.buildEvents(ctx, s.defaultWindow())
	if err != nil {
		return err
	}
	s.storeEvents(resp)
	return nil
}

func (s *Server) defaultWindow() eventsKey {
	return eventsKey{days: min(s.cfg.HorizonDays, maxWindowDays), backfill: min(s.cfg.BackfillDays, maxWindowDays)}
}

func (s *Server) storeEvents(resp EventsResponse) {
	s.eventsMu.Lock()
	s.eventsCache = &eventsCache{resp: resp, updatedAt: s.now()}
	s.eventsMu.Unlock()
}

// Events builds the occurrences for days ahead and backfill days behind
// without touching the cache.
func (s *Server) Events(ctx context.Context, days, backfill int) (EventsResponse, error) {
	return s.buildEvents(ctx, eventsKey{days: days, backfill: backfill})
}

// buildEvents fetches, parses and expands every feed for the window.
func (s *Server) buildEvents(ctx context.Context, key eventsKey) (EventsResponse, error) {
	now := s.now().In(s.loc)
	resp := EventsResponse{
		Occurrences:     []occurrenceDTO{},
		RangeStart:      now.AddDate(0, 0, -key.backfill),
		RangeEnd:        now.AddDate(0, 0, key.days),
		DisplayTimeZone: s.cfg.Timezone,
	}

	appLog.Debug("building events",
		"days", key.days,
		"backfill", key.backfill,
		"range_start", resp.RangeStart.Format(time.RFC3339),
		"range_end", resp.RangeEnd.Format(time.RFC3339),
	)

	sources := configuredSources(s.cfg.ICS)
	if len(sources) > 0 {
		// FetchAll logs each failed source.
		results, _ := s.fetcher.FetchAll(ctx, sources)

		var parsed []ics.ParsedEvent
		for _, res := range results {
			events, err := ics.ParseICS(res.Source, res.Body, s.loc)
			if err != nil {
				continue
			}
			parsed = append(parsed, events...)
		}

		expanded, err := ics.ExpandOccurrences(parsed, ics.ExpandConfig{
			DisplayLocation:        s.loc,
			RangeStart:             resp.RangeStart,
			RangeEnd:               resp.RangeEnd,
			MaxOccurrencesPerEvent: s.cfg.MaxOccurrences,
		})
		if err != nil {
			return EventsResponse{}, err
		}
		for _, occ := range expanded.Occurrences {
			resp.Occurrences = append(resp.Occurrences, occurrenceDTO{Occurrence: occ, LengthISO: occ.Duration()})
		}
		resp.TruncatedUIDs = expanded.TruncatedEvents
	}

	appLog.Info("events refreshed", "occurrences", len(resp.Occurrences), "sources", len(sources))
	return resp, nil
}

// configuredSources builds fetch sources from config, falling back to the
// name and then the URL when an ID is missing.
func configuredSources(cfgs []config.ICSConfig) []ics.Source {
	sources := make([]ics.Source, 0, len(cfgs))
	for _, c := range cfgs {
		if c.URL == "" {
			continue
		}
		id := c.ID
		if id == "" {
			id = c.Name
		}
		if id == "" {
			id = c.URL
		}
		sources = append(sources, ics.Source{ID: id, URL: c.URL})
	}
	return sources
}
