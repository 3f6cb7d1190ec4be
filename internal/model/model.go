package model

import (
	"time"

	"isocal/diff"
)

// Occurrence is a single concrete instance of a calendar event after
// recurrence expansion, normalized into the display offset.
type Occurrence struct {
	SourceID string `json:"source_id"`
	UID      string `json:"uid"`

	// InstanceKey uniquely identifies one occurrence of a recurring event.
	InstanceKey string `json:"instance_key"`

	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`

	AllDay bool `json:"all_day"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Length is the calendar difference from Start to End.
	Length diff.PreciseDiff `json:"length"`
}

// Duration renders Length in ISO-8601 form, e.g. "PT1H30M".
func (o Occurrence) Duration() string {
	return o.Length.String()
}
