package store

import (
	"testing"
	"time"

	"github.com/trieu2004160/studytrack-server/internal/models"
)

var (
	older = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	newer = time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
)

func TestMergeSessions_LocalFieldsSurvive(t *testing.T) {
	local := []models.Session{{
		ID:              "s1",
		Duration:        30,
		Notes:           "my notes",
		Completed:       true,
		ReminderEnabled: true,
		ReminderTime:    "08:30",
		NotificationID:  "n-1",
		UpdatedAt:       newer,
	}}
	remote := []models.Session{{
		ID:        "s1",
		Duration:  45, // remote edit of a shared field
		Notes:     "",
		Completed: false,
		UpdatedAt: older,
	}}

	merged := MergeSessions(local, remote)

	if len(merged) != 1 {
		t.Fatalf("len = %d, want 1", len(merged))
	}
	m := merged[0]
	if m.Duration != 45 {
		t.Errorf("duration = %d, want remote 45", m.Duration)
	}
	if m.Notes != "my notes" || !m.Completed {
		t.Error("locally-owned notes/completed must survive an older remote")
	}
	if !m.ReminderEnabled || m.ReminderTime != "08:30" || m.NotificationID != "n-1" {
		t.Error("reminder fields must survive an older remote")
	}
}

func TestMergeSessions_CreatedAtSurvivesRefresh(t *testing.T) {
	created := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

	local := []models.Session{{ID: "s1", CreatedAt: created, UserID: 7, UpdatedAt: newer}}
	remote := []models.Session{{ID: "s1", UpdatedAt: older}} // catalog records carry no created_at

	merged := MergeSessions(local, remote)
	if !merged[0].CreatedAt.Equal(created) {
		t.Errorf("older remote: CreatedAt = %v, want local %v", merged[0].CreatedAt, created)
	}
	if merged[0].UserID != 7 {
		t.Errorf("older remote: UserID = %d, want local 7", merged[0].UserID)
	}

	// the newer-remote branch must keep it too, or every refresh would
	// zero the timestamp and churn created_at ordering
	local[0].UpdatedAt = older
	remote[0].UpdatedAt = newer

	merged = MergeSessions(local, remote)
	if !merged[0].CreatedAt.Equal(created) {
		t.Errorf("newer remote: CreatedAt = %v, want local %v", merged[0].CreatedAt, created)
	}
}

func TestMergeSessions_NewerRemoteWins(t *testing.T) {
	local := []models.Session{{ID: "s1", Notes: "stale", Completed: true, UpdatedAt: older}}
	remote := []models.Session{{ID: "s1", Notes: "fresh", Completed: false, UpdatedAt: newer}}

	merged := MergeSessions(local, remote)

	if merged[0].Notes != "fresh" || merged[0].Completed {
		t.Errorf("strictly newer remote must win: got notes=%q completed=%v", merged[0].Notes, merged[0].Completed)
	}
}

func TestMergeSessions_DisjointSets(t *testing.T) {
	local := []models.Session{{ID: "l1"}, {ID: "l2"}}
	remote := []models.Session{{ID: "r1"}}

	merged := MergeSessions(local, remote)

	if len(merged) != 3 {
		t.Fatalf("len = %d, want 3", len(merged))
	}
	// local order first, then remote additions
	if merged[0].ID != "l1" || merged[1].ID != "l2" || merged[2].ID != "r1" {
		t.Errorf("order = %s,%s,%s", merged[0].ID, merged[1].ID, merged[2].ID)
	}
}

func TestMergeSessions_InputsNotMutated(t *testing.T) {
	local := []models.Session{{ID: "s1", Notes: "keep", UpdatedAt: newer}}
	remote := []models.Session{{ID: "s1", Notes: "drop", UpdatedAt: older}}

	_ = MergeSessions(local, remote)

	if local[0].Notes != "keep" || remote[0].Notes != "drop" {
		t.Error("merge must not mutate its inputs")
	}
}

func TestMergeCourses_RemoteOverwritesButZeroCountersDoNot(t *testing.T) {
	local := []models.Course{{
		ID: "c1", UserID: 7, Name: "Old Name", TotalLessons: 12, CompletedLessons: 4,
	}}
	remote := []models.Course{{
		ID: "c1", Name: "New Name", Icon: "📘", TotalLessons: 0, CompletedLessons: 0,
	}}

	merged := MergeCourses(local, remote)

	m := merged[0]
	if m.Name != "New Name" || m.Icon != "📘" {
		t.Errorf("remote display fields must win: got %q %q", m.Name, m.Icon)
	}
	if m.TotalLessons != 12 || m.CompletedLessons != 4 {
		t.Errorf("zero remote counters must not clobber: got %d/%d, want 4/12", m.CompletedLessons, m.TotalLessons)
	}
	if m.UserID != 7 {
		t.Errorf("user id = %d, want local 7", m.UserID)
	}
}

func TestMergeCourses_NonzeroRemoteCountersWin(t *testing.T) {
	local := []models.Course{{ID: "c1", TotalLessons: 12, CompletedLessons: 4}}
	remote := []models.Course{{ID: "c1", TotalLessons: 15, CompletedLessons: 6}}

	merged := MergeCourses(local, remote)

	if merged[0].TotalLessons != 15 || merged[0].CompletedLessons != 6 {
		t.Errorf("got %d/%d, want 6/15", merged[0].CompletedLessons, merged[0].TotalLessons)
	}
}

func TestMergeCourses_LocalOnlyPreserved(t *testing.T) {
	local := []models.Course{{ID: "user-made", Name: "My Course"}}

	merged := MergeCourses(local, nil)

	if len(merged) != 1 || merged[0].ID != "user-made" {
		t.Errorf("user-created course must always survive a refresh: %v", merged)
	}
}
