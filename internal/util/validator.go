package util

import (
	"fmt"
	"time"
)

// ValidateDuration checks a session duration in minutes (positive, sane cap).
func ValidateDuration(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("duration must be positive, got %d", minutes)
	}
	if minutes > 24*60 {
		return fmt.Errorf("duration too long, got %d minutes", minutes)
	}
	return nil
}

// ValidateDate checks a calendar date string (must be YYYY-MM-DD).
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateReminderTime checks a reminder clock time (must be HH:mm, 24h).
func ValidateReminderTime(timeStr string) error {
	if timeStr == "" {
		return fmt.Errorf("reminder time is empty")
	}
	if _, err := time.Parse("15:04", timeStr); err != nil {
		return fmt.Errorf("invalid reminder time: %w", err)
	}
	return nil
}

// ValidateLessonCounts checks a course's lesson counters.
func ValidateLessonCounts(completed, total int) error {
	if total < 0 {
		return fmt.Errorf("total lessons must not be negative, got %d", total)
	}
	if completed < 0 {
		return fmt.Errorf("completed lessons must not be negative, got %d", completed)
	}
	if completed > total {
		return fmt.Errorf("completed lessons (%d) exceed total (%d)", completed, total)
	}
	return nil
}
