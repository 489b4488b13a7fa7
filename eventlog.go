package jobscope

import "time"

// AppMeta is the static metadata an event log was registered under.
type AppMeta struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	User        string    `json:"user,omitempty"`
	StartedAt   time.Time `json:"startedAt,omitempty"`
	EndedAt     time.Time `json:"endedAt,omitempty"`
	Source      string    `json:"source,omitempty"`
	Fingerprint uint64    `json:"-"`
}

// EventLog is an immutable, index-ordered sequence of events for one
// application. An event's index is its position in the log.
type EventLog struct {
	events []Event
}

// NewEventLog copies evs into a new log. The log never changes afterwards.
func NewEventLog(evs []Event) *EventLog {
	cp := make([]Event, len(evs))
	copy(cp, evs)
	return &EventLog{events: cp}
}

// Len returns the number of events in the log.
func (l *EventLog) Len() int { return len(l.events) }

// At returns the event at index i. i must be in [0, Len).
func (l *EventLog) At(i int) Event { return l.events[i] }
