package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"ecosort/internal/classify"
	"ecosort/internal/db"
	"ecosort/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return store.New(database)
}

func TestNewInvalidCron(t *testing.T) {
	st := testStore(t)

	tests := []struct {
		name    string
		cron    string
		wantErr bool
	}{
		{"daily at 3am", "0 3 * * *", false},
		{"every hour", "0 * * * *", false},
		{"every minute", "* * * * *", false},
		{"invalid", "invalid", true},
		{"too few fields", "* * *", true},
		{"too many fields", "* * * * * *", true}, // 6 fields (with seconds) not supported by our parser
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(st, tt.cron, 30)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	st := testStore(t)
	s, err := New(st, "0 3 * * *", 30)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s.Start()

	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		t.Error("scheduler should be running after Start")
	}

	// Double start should be idempotent
	s.Start()

	s.Stop()

	s.mu.Lock()
	running = s.running
	s.mu.Unlock()
	if running {
		t.Error("scheduler should not be running after Stop")
	}

	// Double stop should be safe
	s.Stop()
}

func TestMaintenanceKeepsRecentHistory(t *testing.T) {
	st := testStore(t)
	s, err := New(st, "0 3 * * *", 30)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	profile, err := st.Register("Amy", "5A")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := st.AddEvent(profile.ID, classify.Organic, 0.8); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}

	s.runMaintenance(time.Now())

	history, err := st.History(profile.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("fresh event should survive the retention pass, history has %d events", len(history))
	}
}

func TestMaintenanceDisabledRetention(t *testing.T) {
	st := testStore(t)
	s, err := New(st, "0 3 * * *", 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	profile, err := st.Register("Amy", "5A")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := st.AddEvent(profile.ID, classify.Inorganic, 0.8); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}

	// With retention disabled the pass never prunes, regardless of age
	s.runMaintenance(time.Now().Add(10 * 365 * 24 * time.Hour))

	history, err := st.History(profile.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("disabled retention must not prune, history has %d events", len(history))
	}
}
