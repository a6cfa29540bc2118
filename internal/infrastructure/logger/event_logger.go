package logger

import (
	"log/slog"

	"github.com/begintolern/linkmint-core/internal/domain"
)

// EventLogger is the write-only audit sink. Every transition and rejection
// goes through it. Implementations must never block business flow: an audit
// write failure is reported, not propagated.
type EventLogger interface {
	Log(entry *domain.EventLog)
}

// PGEventLogger appends audit entries to the event_logs table.
type PGEventLogger struct {
	repo domain.EventLogRepository
}

func NewPGEventLogger(repo domain.EventLogRepository) *PGEventLogger {
	return &PGEventLogger{repo: repo}
}

func (l *PGEventLogger) Log(entry *domain.EventLog) {
	if err := l.repo.Append(entry); err != nil {
		slog.Error("failed to append event log",
			"type", entry.Type,
			"message", entry.Message,
			"error", err.Error())
	}
}

// MemoryEventLogger buffers entries in memory. Used by tests and dry runs.
type MemoryEventLogger struct {
	Entries []*domain.EventLog
}

func (l *MemoryEventLogger) Log(entry *domain.EventLog) {
	l.Entries = append(l.Entries, entry)
}
