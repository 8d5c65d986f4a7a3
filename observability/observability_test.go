package observability

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Nikhileshpal145/creator-os-collector/dbopen"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db := dbopen.OpenMemory(t)
	if err := Init(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func TestHeartbeatWriteAndLatest(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	hw := NewHeartbeatWriter(db, "collector", time.Minute)
	if err := hw.WriteHeartbeat(); err != nil {
		t.Fatalf("write heartbeat: %v", err)
	}

	hs, err := LatestHeartbeat(ctx, db, "collector", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if hs == nil {
		t.Fatal("no heartbeat found")
	}
	if !hs.Alive {
		t.Error("fresh heartbeat reported stale")
	}
	if hs.GoroutinesCount <= 0 {
		t.Errorf("goroutines = %d", hs.GoroutinesCount)
	}
}

func TestLatestHeartbeat_NoneRecorded(t *testing.T) {
	db := setupDB(t)
	hs, err := LatestHeartbeat(context.Background(), db, "collector", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if hs != nil {
		t.Fatalf("expected nil status, got %+v", hs)
	}
}

func TestHeartbeatLoop(t *testing.T) {
	db := setupDB(t)

	hw := NewHeartbeatWriter(db, "collector", 50*time.Millisecond)
	hw.Start(context.Background())
	time.Sleep(120 * time.Millisecond)
	hw.Stop()

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM worker_heartbeats`).Scan(&count)
	if count < 2 {
		t.Fatalf("heartbeats = %d, want >= 2", count)
	}
}

func TestEventLogger(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	l := NewEventLogger(db)
	l.LogSync(ctx, SyncEvent{
		URL:      "https://www.instagram.com/creator/",
		Endpoint: "/scrape/page",
		Status:   "delivered",
	})
	l.LogSync(ctx, SyncEvent{
		URL:      "https://www.instagram.com/creator/",
		Endpoint: "/scrape/page",
		Status:   "transport_failure",
		Error:    "connection refused",
	})

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM sync_events WHERE status = 'delivered'`).Scan(&count)
	if count != 1 {
		t.Fatalf("delivered events = %d, want 1", count)
	}
	var errMsg string
	db.QueryRow(`SELECT error FROM sync_events WHERE status = 'transport_failure'`).Scan(&errMsg)
	if errMsg != "connection refused" {
		t.Fatalf("error = %q", errMsg)
	}
}

func TestMetricsManager(t *testing.T) {
	db := setupDB(t)

	mm := NewMetricsManager(db, 100, time.Hour)
	mm.RecordPageMetrics("https://www.instagram.com/creator/", "instagram",
		map[string]float64{"followers": 3847, "views": 1200})
	mm.Close() // flushes

	got, err := mm.Query("followers", nil, nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("followers datapoints = %d, want 1", len(got))
	}
	if got[0].Value != 3847 {
		t.Errorf("value = %v", got[0].Value)
	}
	if got[0].Labels["platform"] != "instagram" {
		t.Errorf("labels = %v", got[0].Labels)
	}
}

func TestMetricsCleanup(t *testing.T) {
	db := setupDB(t)

	old := time.Now().AddDate(0, 0, -30).Unix()
	if _, err := db.Exec(`
		INSERT INTO metrics_timeseries (metric_name, timestamp, value, unit)
		VALUES ('views', ?, 100, 'count')`, old); err != nil {
		t.Fatal(err)
	}

	mm := NewMetricsManager(db, 100, time.Hour)
	defer mm.Close()

	n, err := mm.Cleanup(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("cleaned = %d, want 1", n)
	}
}
