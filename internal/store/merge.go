// Package store merges remote-origin collections into the locally held ones.
// Merging is pure: inputs are not mutated and the result is a fresh slice,
// local records first in their original order, then new remote records.
package store

import (
	"github.com/trieu2004160/studytrack-server/internal/models"
)

// MergeSessions combines local and remote sessions by id.
//
// On an id match the locally-owned fields (reminder settings, notification
// handle, notes, completed flag) win unless the remote record is strictly
// newer by UpdatedAt. Sessions only present locally are kept; sessions only
// present remotely are appended.
func MergeSessions(local, remote []models.Session) []models.Session {
	remoteByID := make(map[string]*models.Session, len(remote))
	for i := range remote {
		remoteByID[remote[i].ID] = &remote[i]
	}

	merged := make([]models.Session, 0, len(local)+len(remote))
	seen := make(map[string]bool, len(local))

	for i := range local {
		l := local[i]
		seen[l.ID] = true

		r, ok := remoteByID[l.ID]
		if !ok {
			merged = append(merged, l)
			continue
		}

		if r.UpdatedAt.After(l.UpdatedAt) {
			// remote is strictly newer; take it wholesale, except the
			// creation timestamp, which the catalog does not carry
			m := *r
			m.UserID = l.UserID
			m.CreatedAt = l.CreatedAt
			merged = append(merged, m)
			continue
		}

		// remote provides the shared fields, local keeps what it owns
		m := *r
		m.UserID = l.UserID
		m.CreatedAt = l.CreatedAt
		m.ReminderEnabled = l.ReminderEnabled
		m.ReminderTime = l.ReminderTime
		m.NotificationID = l.NotificationID
		m.Notes = l.Notes
		m.Completed = l.Completed
		m.UpdatedAt = l.UpdatedAt
		merged = append(merged, m)
	}

	for i := range remote {
		if !seen[remote[i].ID] {
			merged = append(merged, remote[i])
		}
	}
	return merged
}

// MergeCourses combines local and remote courses by id. Remote values
// overwrite matched fields, except that a zero remote lesson counter never
// clobbers a nonzero local one. Courses only present locally (user-created)
// are always preserved; new remote courses are appended.
func MergeCourses(local, remote []models.Course) []models.Course {
	remoteByID := make(map[string]*models.Course, len(remote))
	for i := range remote {
		remoteByID[remote[i].ID] = &remote[i]
	}

	merged := make([]models.Course, 0, len(local)+len(remote))
	seen := make(map[string]bool, len(local))

	for i := range local {
		l := local[i]
		seen[l.ID] = true

		r, ok := remoteByID[l.ID]
		if !ok {
			merged = append(merged, l)
			continue
		}

		m := *r
		m.UserID = l.UserID
		m.CreatedAt = l.CreatedAt
		if m.TotalLessons == 0 && l.TotalLessons != 0 {
			m.TotalLessons = l.TotalLessons
		}
		if m.CompletedLessons == 0 && l.CompletedLessons != 0 {
			m.CompletedLessons = l.CompletedLessons
		}
		merged = append(merged, m)
	}

	for i := range remote {
		if !seen[remote[i].ID] {
			merged = append(merged, remote[i])
		}
	}
	return merged
}
