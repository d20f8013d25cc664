package models

import "time"

// Course is a subject of study with a lesson-completion counter.
// A course with TotalLessons == 0 has no meaningful completion ratio and is
// excluded from completion analytics and recommendations.
type Course struct {
	ID     string `gorm:"primaryKey;size:64"` // uuid or catalog id
	UserID uint   `gorm:"index;not null"`
	Name   string `gorm:"size:128;not null"`
	Icon   string `gorm:"size:32"`

	TotalLessons     int `gorm:"default:0"`
	CompletedLessons int `gorm:"default:0"` // may transiently exceed TotalLessons upstream; readers clamp

	CreatedAt time.Time
	UpdatedAt time.Time
}
