package db

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestPutGet(t *testing.T) {
	database := testDB(t)

	if err := database.Put("currentUser", "abc"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	value, ok, err := database.Get("currentUser")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if value != "abc" {
		t.Errorf("Get = %q, want %q", value, "abc")
	}
}

func TestGetMissingYieldsDefault(t *testing.T) {
	database := testDB(t)

	value, ok, err := database.Get("missing")
	if err != nil {
		t.Fatalf("Get of missing key should not fail: %v", err)
	}
	if ok {
		t.Error("missing key should report ok=false")
	}
	if value != "" {
		t.Errorf("missing key should yield empty value, got %q", value)
	}
}

func TestPutOverwrites(t *testing.T) {
	database := testDB(t)

	database.Put("k", "old")
	database.Put("k", "new")

	value, _, err := database.Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "new" {
		t.Errorf("Get = %q, want %q", value, "new")
	}
}

func TestDelete(t *testing.T) {
	database := testDB(t)

	database.Put("k", "v")
	if err := database.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, ok, _ := database.Get("k")
	if ok {
		t.Error("key should be gone after Delete")
	}

	// Deleting a missing key is a no-op
	if err := database.Delete("k"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

func TestListPrefix(t *testing.T) {
	database := testDB(t)

	database.Put(UserKey("a"), "1")
	database.Put(UserKey("b"), "2")
	database.Put(KeyCurrentUser, "a")

	values, err := database.List(UserKeyPrefix)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(values))
	}
	if values[UserKey("a")] != "1" || values[UserKey("b")] != "2" {
		t.Errorf("List = %v", values)
	}
}

func TestPutAll(t *testing.T) {
	database := testDB(t)

	err := database.PutAll(map[string]string{
		UserKey("a"):   "1",
		KeyCurrentUser: "a",
	})
	if err != nil {
		t.Fatalf("PutAll failed: %v", err)
	}

	for key, want := range map[string]string{UserKey("a"): "1", KeyCurrentUser: "a"} {
		value, ok, _ := database.Get(key)
		if !ok || value != want {
			t.Errorf("Get(%q) = %q, %v; want %q", key, value, ok, want)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	database.Put("k", "v")
	database.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get("k")
	if err != nil || !ok || value != "v" {
		t.Errorf("Get after reopen = %q, %v, %v; want %q", value, ok, err, "v")
	}
}
