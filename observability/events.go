package observability

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Nikhileshpal145/creator-os-collector/idgen"
)

// SyncEvent records the outcome of one delivery attempt: which page,
// which endpoint, and how it ended.
type SyncEvent struct {
	URL      string
	Endpoint string
	Status   string
	Error    string
}

// EventLogger writes sync events to the agent database.
type EventLogger struct {
	db    *sql.DB
	newID idgen.Generator
}

// NewEventLogger creates a logger backed by the agent database.
func NewEventLogger(db *sql.DB) *EventLogger {
	return &EventLogger{
		db:    db,
		newID: idgen.Prefixed("evt_", idgen.Default),
	}
}

// LogSync records a sync event. Errors are logged via slog but do not
// propagate, so a failing event store never blocks a delivery.
func (l *EventLogger) LogSync(ctx context.Context, event SyncEvent) {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO sync_events (event_id, url, endpoint, status, error, created_at)
		VALUES (?,?,?,?,?,?)`,
		l.newID(), event.URL, event.Endpoint, event.Status, event.Error,
		time.Now().Unix())
	if err != nil {
		slog.Error("sync event log failed", "error", err, "url", event.URL)
	}
}

// CleanupSyncEvents deletes events older than retentionDays.
func CleanupSyncEvents(ctx context.Context, db *sql.DB, retentionDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -retentionDays).Unix()
	result, err := db.ExecContext(ctx,
		"DELETE FROM sync_events WHERE created_at < ?", threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup sync events: %w", err)
	}
	return result.RowsAffected()
}
