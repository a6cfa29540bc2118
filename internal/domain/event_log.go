package domain

import "time"

type EventSeverity string

const (
	SeverityInfo  EventSeverity = "INFO"
	SeverityWarn  EventSeverity = "WARN"
	SeverityError EventSeverity = "ERROR"
)

// EventLog is an append-only audit entry. Every state transition writes one;
// nothing ever updates or deletes individual rows (trimming old rows is an
// ops remedy, not a mutation surface).
type EventLog struct {
	ID        uint
	Type      string
	Severity  EventSeverity
	Message   string
	Detail    string
	CreatedAt time.Time
}

type EventLogRepository interface {
	Append(entry *EventLog) error
	// CountSince counts entries at the given severity created after since.
	CountSince(severity EventSeverity, since time.Time) (int64, error)
	// TrimBefore deletes operational rows older than cutoff, returning the
	// number removed.
	TrimBefore(cutoff time.Time) (int64, error)
}
