package models

import "time"

// Session is one logged (or planned) unit of study against a course.
// Duration is whole minutes and must be positive. Date carries the calendar
// day only; it is normalized to midnight on write and compared day-by-day,
// never as an instant.
type Session struct {
	ID       string `gorm:"primaryKey;size:64"` // uuid
	UserID   uint   `gorm:"index;not null"`
	CourseID string `gorm:"index;size:64"`

	// Denormalized display copy taken from the course at creation time.
	// May drift if the course is later renamed; analytics output always
	// resolves names through the Course record instead.
	CourseName string `gorm:"size:128"`
	CourseIcon string `gorm:"size:32"`

	Duration  int       `gorm:"not null"` // minutes, > 0
	Date      time.Time `gorm:"index;not null"`
	Notes     string    `gorm:"size:2048"` // ciphertext (AES+base64) when an encryption key is configured
	Completed bool

	ReminderEnabled bool
	ReminderTime    string `gorm:"size:8"`  // "HH:mm", local time on Date
	NotificationID  string `gorm:"size:64"` // scheduler handle, owned by the notify package

	CreatedAt time.Time
	UpdatedAt time.Time // merge conflict resolution, see store.MergeSessions
}
