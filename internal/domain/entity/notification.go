package entity

import "time"

// ObjectChangeEvent is the payload sent by the export storage when an object changes.
type ObjectChangeEvent struct {
	Name   string `json:"name"`
	Bucket string `json:"bucket,omitempty"`
}

// Notification is the combined message sent for one project and day.
type Notification struct {
	Project          string           `json:"project"`
	Date             time.Time        `json:"date"`
	TriggeredRules   []AlertRule      `json:"triggered_rules"`
	CurrentAggregate *TimeSeriesTable `json:"current_aggregate"`
	Recipients       []string         `json:"recipients"`
}

// DedupState records which projects were notified on Day.
type DedupState struct {
	Day       string   `json:"day"`
	Processed []string `json:"processed"`
}

// Has reports whether project was already notified on the stored day.
func (s DedupState) Has(project string) bool {
	for _, p := range s.Processed {
		if p == project {
			return true
		}
	}
	return false
}
