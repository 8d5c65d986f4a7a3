// Package history records which pages the agent has synced, so UI
// surfaces can show recent activity without calling the backend.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/Nikhileshpal145/creator-os-collector/classify"
	"github.com/Nikhileshpal145/creator-os-collector/dbopen"
	"github.com/Nikhileshpal145/creator-os-collector/extract"
	"github.com/Nikhileshpal145/creator-os-collector/idgen"
)

const schema = `
CREATE TABLE IF NOT EXISTS scraped_pages (
	id        TEXT PRIMARY KEY,
	url       TEXT NOT NULL,
	domain    TEXT NOT NULL,
	title     TEXT NOT NULL DEFAULT '',
	platform  TEXT NOT NULL,
	page_type TEXT NOT NULL,
	synced_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scraped_pages_synced_at ON scraped_pages(synced_at DESC);`

// Entry is one recorded sync.
type Entry struct {
	ID       string            `json:"id"`
	URL      string            `json:"url"`
	Domain   string            `json:"domain"`
	Title    string            `json:"title"`
	Platform classify.Platform `json:"platform"`
	PageType classify.PageType `json:"page_type"`
	SyncedAt time.Time         `json:"synced_at"`
}

// Store persists sync history in the agent database.
type Store struct {
	db  *sql.DB
	ids idgen.Generator
	now func() time.Time
}

// New creates the scraped_pages table if needed. IDs are "pg_"-prefixed
// UUIDv7, so primary-key order matches insertion order.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &Store{
		db:  db,
		ids: idgen.Prefixed("pg_", idgen.UUIDv7()),
		now: time.Now,
	}, nil
}

// Record stores one delivered snapshot.
func (s *Store) Record(ctx context.Context, snap *extract.Snapshot) error {
	_, err := dbopen.Exec(ctx, s.db, `
		INSERT INTO scraped_pages (id, url, domain, title, platform, page_type, synced_at)
		VALUES (?,?,?,?,?,?,?)`,
		s.ids(), snap.URL, domainOf(snap.URL), snap.Title,
		string(snap.Platform), string(snap.PageType), s.now().Unix())
	if err != nil {
		return fmt.Errorf("history: record %s: %w", snap.URL, err)
	}
	return nil
}

// Recent returns the newest entries first, at most limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, domain, title, platform, page_type, synced_at
		FROM scraped_pages ORDER BY synced_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var platform, pageType string
		var syncedAt int64
		if err := rows.Scan(&e.ID, &e.URL, &e.Domain, &e.Title,
			&platform, &pageType, &syncedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.Platform = classify.Platform(platform)
		e.PageType = classify.PageType(pageType)
		e.SyncedAt = time.Unix(syncedAt, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func domainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
