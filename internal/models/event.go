package models

import "time"

const maxEventNameLen = 40

// Event names a kind of occurrence, e.g. "woke up" or "took medicine".
type Event struct {
	Record `yaml:",inline"`

	Name string `json:"name" yaml:"name"`
}

func (e *Event) Validate() error {
	v := ValidationErrors{}
	v.requireText("name", e.Name, maxEventNameLen)
	return v.Err()
}

// Timestamp records when an event happened.
type Timestamp struct {
	Record `yaml:",inline"`

	EventID string    `json:"event_id" yaml:"event_id"`
	At      time.Time `json:"at" yaml:"at"`

	// EventName is filled in by list queries for display.
	EventName string `json:"event_name,omitempty" yaml:"event_name,omitempty"`
}

// Validate checks the timestamp. A zero At is allowed; the store fills it
// with the creation time.
func (t *Timestamp) Validate() error {
	v := ValidationErrors{}
	v.requireID("event_id", t.EventID)
	return v.Err()
}

// EventStamp pairs an event with its most recent timestamp, if any.
type EventStamp struct {
	Event  Event      `json:"event"`
	LastAt *time.Time `json:"last_at,omitempty"`
}
