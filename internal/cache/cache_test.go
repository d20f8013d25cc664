package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/trieu2004160/studytrack-server/internal/models"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	return New(t.TempDir(), "test-cache-key")
}

func TestCache_SaveLoadRoundTrip(t *testing.T) {
	c := testCache(t)

	sessions := []models.Session{{ID: "s1", CourseID: "c1", Duration: 30, Date: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)}}
	courses := []models.Course{{ID: "c1", Name: "Go Basics", TotalLessons: 10, CompletedLessons: 3}}

	if err := c.Save(7, sessions, courses); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap := c.Load(7)
	if snap == nil {
		t.Fatal("Load returned nil after Save")
	}
	if len(snap.Sessions) != 1 || snap.Sessions[0].ID != "s1" {
		t.Errorf("sessions = %v", snap.Sessions)
	}
	if len(snap.Courses) != 1 || snap.Courses[0].Name != "Go Basics" {
		t.Errorf("courses = %v", snap.Courses)
	}
	if snap.UserID != 7 {
		t.Errorf("user id = %d, want 7", snap.UserID)
	}
}

func TestCache_MissingSnapshotIsNil(t *testing.T) {
	c := testCache(t)

	if snap := c.Load(42); snap != nil {
		t.Errorf("Load of absent snapshot = %v, want nil", snap)
	}
}

func TestCache_CorruptFileDiscarded(t *testing.T) {
	c := testCache(t)

	if err := os.WriteFile(filepath.Join(c.Dir, "snapshot-7.bin"), []byte("not a snapshot"), 0o600); err != nil {
		t.Fatal(err)
	}

	if snap := c.Load(7); snap != nil {
		t.Errorf("corrupt cache must be discarded, got %v", snap)
	}
}

func TestCache_WrongKeyDiscarded(t *testing.T) {
	c := testCache(t)
	if err := c.Save(7, nil, []models.Course{{ID: "c1", Name: "Go"}}); err != nil {
		t.Fatal(err)
	}

	other := New(c.Dir, "different-key")
	if snap := other.Load(7); snap != nil {
		t.Error("snapshot encrypted under another key must be discarded")
	}
}

func TestCache_NamelessCourseFailsValidity(t *testing.T) {
	// the old incompatible schema stored courses without a name field; a
	// snapshot that decodes but trips the heuristic is thrown away
	c := testCache(t)
	if err := c.Save(7, nil, []models.Course{{ID: "c1", Name: ""}}); err != nil {
		t.Fatal(err)
	}

	if snap := c.Load(7); snap != nil {
		t.Error("nameless first course must invalidate the snapshot")
	}
}

func TestCache_Reset(t *testing.T) {
	c := testCache(t)
	if err := c.Save(7, nil, []models.Course{{ID: "c1", Name: "Go"}}); err != nil {
		t.Fatal(err)
	}

	if err := c.Reset(7); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if snap := c.Load(7); snap != nil {
		t.Error("snapshot should be gone after Reset")
	}

	// resetting again is fine
	if err := c.Reset(7); err != nil {
		t.Errorf("Reset of absent snapshot: %v", err)
	}
}

func TestCache_PlaintextWhenNoKey(t *testing.T) {
	c := New(t.TempDir(), "")
	if err := c.Save(1, nil, []models.Course{{ID: "c1", Name: "Go"}}); err != nil {
		t.Fatal(err)
	}
	if snap := c.Load(1); snap == nil {
		t.Error("unencrypted round trip failed")
	}
}
